package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedis backs a RedisCache with an in-process miniredis that is
// torn down with the test.
func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		logger: zerolog.Nop(),
	}
	t.Cleanup(func() { _ = rc.client.Close() })
	return mr, rc
}

func TestRedisCache_RoundTrip(t *testing.T) {
	_, rc := newTestRedis(t)

	res := sampleResult("deadbeef")
	rc.Set("deadbeef", res, 5*time.Minute)

	got, found := rc.Get("deadbeef")
	require.True(t, found)

	// Issues must survive the JSON round trip with their typed kinds.
	assert.Equal(t, res.DeckHash, got.DeckHash)
	assert.Equal(t, res.Clean, got.Clean)
	assert.Equal(t, res.Issues, got.Issues)
	assert.True(t, res.CheckedAt.Equal(got.CheckedAt), "CheckedAt mismatch: %v vs %v", res.CheckedAt, got.CheckedAt)

	stats := rc.Stats()
	assert.Equal(t, int64(1), stats.Sets)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestRedisCache_MissPaths(t *testing.T) {
	mr, rc := newTestRedis(t)

	t.Run("absent key", func(t *testing.T) {
		_, found := rc.Get("nonexistent")
		assert.False(t, found)
	})

	t.Run("corrupt payload", func(t *testing.T) {
		// A payload that is not a Result degrades to a miss, not an error.
		require.NoError(t, mr.Set("broken", "not json{"))

		_, found := rc.Get("broken")
		assert.False(t, found)
	})

	assert.Equal(t, int64(2), rc.Stats().Misses)
}

func TestRedisCache_TTL(t *testing.T) {
	mr, rc := newTestRedis(t)

	rc.Set("ttl-key", sampleResult("ttl-key"), 100*time.Millisecond)

	_, found := rc.Get("ttl-key")
	require.True(t, found)

	mr.FastForward(200 * time.Millisecond)

	_, found = rc.Get("ttl-key")
	assert.False(t, found, "entry should expire once its TTL passes")
}

func TestRedisCache_DeleteAndClear(t *testing.T) {
	_, rc := newTestRedis(t)

	for _, key := range []string{"k1", "k2", "k3"} {
		rc.Set(key, sampleResult(key), 5*time.Minute)
	}
	require.Equal(t, 3, rc.Stats().CurrentSize)

	rc.Delete("k1")
	_, found := rc.Get("k1")
	assert.False(t, found)
	assert.Equal(t, 2, rc.Stats().CurrentSize)

	rc.Clear()
	assert.Equal(t, 0, rc.Stats().CurrentSize)
	_, found = rc.Get("k2")
	assert.False(t, found)
}

func TestRedisCache_StatsCounting(t *testing.T) {
	_, rc := newTestRedis(t)

	rc.Set("k1", sampleResult("k1"), 5*time.Minute)
	rc.Set("k2", sampleResult("k2"), 5*time.Minute)
	for range 2 {
		rc.Get("k1")
		rc.Get("nonexist")
	}

	stats := rc.Stats()
	assert.Equal(t, int64(2), stats.Sets)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 2, stats.CurrentSize)
}

func TestRedisCache_HealthCheck(t *testing.T) {
	mr, rc := newTestRedis(t)

	require.NoError(t, rc.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, rc.HealthCheck(context.Background()), "health must fail once redis is gone")
}
