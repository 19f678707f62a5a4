package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/stock-ledger/pkg/logger"
)

const (
	reportKeyPrefix  = "ledger:report:"
	generationKey    = "ledger:report-generation"
	requestKeyPrefix = "ledger:request:"
	requestKeyTTL    = 24 * time.Hour
)

// RedisCache stores computed reports and claimed request ids in Redis
type RedisCache struct {
	client    *redis.Client
	reportTTL time.Duration
}

// NewRedisCache creates a Redis backed report cache and request guard
func NewRedisCache(client *redis.Client, reportTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, reportTTL: reportTTL}
}

// NewRedisClient connects to addr and verifies it answers
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}

// Generation returns the current report generation, zero before the first invalidation
func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// GetReport decodes the cached report stored under key into dst
func (c *RedisCache) GetReport(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := c.client.Get(ctx, reportKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Debug(ctx).Str("report", key).Msg("Cache miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("failed to decode cached report %s: %w", key, err)
	}

	logger.Debug(ctx).Str("report", key).Msg("Cache hit")
	return true, nil
}

// SetReport caches value under key for the configured TTL
func (c *RedisCache) SetReport(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode report %s: %w", key, err)
	}
	return c.client.Set(ctx, reportKeyPrefix+key, raw, c.reportTTL).Err()
}

// InvalidateReports advances the generation, then drops every cached report.
// Reports written later under an older generation are never read and expire with their TTL.
func (c *RedisCache) InvalidateReports(ctx context.Context) error {
	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return err
	}

	iter := c.client.Scan(ctx, 0, reportKeyPrefix+"*", 0).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}

	logger.Debug(ctx).Int("count", len(keys)).Msg("Report cache invalidated")
	return nil
}

// Claim marks key as processed. Returns false if it was claimed before.
func (c *RedisCache) Claim(ctx context.Context, key string) (bool, error) {
	return c.client.SetNX(ctx, requestKeyPrefix+key, 1, requestKeyTTL).Result()
}

// Release drops the claim on key
func (c *RedisCache) Release(ctx context.Context, key string) error {
	return c.client.Del(ctx, requestKeyPrefix+key).Err()
}
