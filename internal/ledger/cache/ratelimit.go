package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateKeyPrefix = "ledger:ratelimit:"

// RateDecision is the outcome of one rate limit check
type RateDecision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RedisRateLimiter implements a sliding window request limit on a Redis sorted set
type RedisRateLimiter struct {
	client      *redis.Client
	maxRequests int
	window      time.Duration
}

// NewRedisRateLimiter allows maxRequests per identifier within window
func NewRedisRateLimiter(client *redis.Client, maxRequests int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, maxRequests: maxRequests, window: window}
}

// Allow records one request for identifier and reports whether it fits the window
func (l *RedisRateLimiter) Allow(ctx context.Context, identifier string) (RateDecision, error) {
	key := rateKeyPrefix + identifier
	now := time.Now()
	windowStart := now.Add(-l.window)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString()),
	})
	pipe.Expire(ctx, key, l.window+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return RateDecision{}, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := int(countCmd.Val())
	remaining := l.maxRequests - count - 1
	if remaining < 0 {
		remaining = 0
	}

	return RateDecision{
		Allowed:   count < l.maxRequests,
		Limit:     l.maxRequests,
		Remaining: remaining,
		ResetAt:   now.Add(l.window),
	}, nil
}
