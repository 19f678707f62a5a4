package cache

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client, err := NewRedisClient(context.Background(), addr, "", 0)
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

type usageRow struct {
	ItemName  string `json:"item_name"`
	TotalUsed int    `json:"total_used"`
}

func TestReportRoundTripAndInvalidate(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	c := NewRedisCache(client, time.Minute)
	require.NoError(t, c.InvalidateReports(ctx))

	var rows []usageRow
	hit, err := c.GetReport(ctx, "most_used:5", &rows)
	require.NoError(t, err)
	assert.False(t, hit)

	want := []usageRow{{ItemName: "Mop", TotalUsed: 30}}
	require.NoError(t, c.SetReport(ctx, "most_used:5", want))

	hit, err = c.GetReport(ctx, "most_used:5", &rows)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, rows)

	before, err := c.Generation(ctx)
	require.NoError(t, err)

	require.NoError(t, c.InvalidateReports(ctx))
	hit, err = c.GetReport(ctx, "most_used:5", &rows)
	require.NoError(t, err)
	assert.False(t, hit)

	after, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestClaim_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	c := NewRedisCache(client, time.Minute)
	key := "test-" + uuid.NewString()

	var successCount atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := c.Claim(ctx, key)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load())

	require.NoError(t, c.Release(ctx, key))
	ok, err := c.Claim(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryGuard(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	ok, err := g.Claim(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = g.Claim(ctx, "req-1")
	assert.False(t, ok)

	ok, _ = g.Claim(ctx, "req-2")
	assert.True(t, ok)

	require.NoError(t, g.Release(ctx, "req-1"))
	ok, _ = g.Claim(ctx, "req-1")
	assert.True(t, ok)
}

func TestNopCache(t *testing.T) {
	var c NopCache
	var dst map[string]int
	hit, err := c.GetReport(context.Background(), "contributions", &dst)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.SetReport(context.Background(), "contributions", map[string]int{"a": 1}))
}

func TestRedisRateLimiter(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	limiter := NewRedisRateLimiter(client, 3, time.Minute)

	id := "test-" + uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, rateKeyPrefix+id) })

	for i := 0; i < 3; i++ {
		decision, err := limiter.Allow(ctx, id)
		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, 2-i, decision.Remaining)
	}

	decision, err := limiter.Allow(ctx, id)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)
	assert.Equal(t, 0, decision.Remaining)
	assert.Equal(t, 3, decision.Limit)
}
