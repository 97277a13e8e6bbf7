package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/windtools/fstdeck/internal/metrics"
)

// Per-operation deadlines. Reads and writes are small JSON blobs; anything
// slower than this means Redis is in trouble and the caller should fall
// through to a fresh validation.
const (
	redisOpTimeout    = 2 * time.Second
	redisIOTimeout    = 3 * time.Second
	redisConnTimeout  = 5 * time.Second
	redisFlushTimeout = 5 * time.Second
)

// RedisCache shares one validation cache between several daemons. Failures
// degrade to cache misses; a broken Redis never breaks validation.
type RedisCache struct {
	client *redis.Client
	logger zerolog.Logger

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// RedisConfig carries the connection settings for NewRedisCache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisCache connects to Redis and verifies the connection with a ping
// before returning, so a bad address fails at startup rather than on the
// first request.
func NewRedisCache(cfg RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,

		DialTimeout:  redisConnTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
		PoolSize:     12,
		MinIdleConns: 4,
	})

	ctx, cancel := opCtx(redisConnTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.Info().
		Str("event", "cache.redis_connected").
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("redis result cache online")

	return &RedisCache{client: client, logger: logger}, nil
}

func opCtx(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// Get retrieves a result. Connection errors and corrupt payloads count as
// misses.
func (c *RedisCache) Get(key string) (Result, bool) {
	ctx, cancel := opCtx(redisOpTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.misses.Add(1)
		metrics.IncCacheRequest("redis", "miss")
		return Result{}, false
	case err != nil:
		c.logger.Warn().Err(err).Str("event", "cache.redis_get_failed").Str("key", key).Msg("redis get failed")
		c.misses.Add(1)
		metrics.IncCacheRequest("redis", "error")
		return Result{}, false
	}

	var res Result
	if err := json.Unmarshal(val, &res); err != nil {
		c.logger.Warn().Err(err).Str("event", "cache.redis_decode_failed").Str("key", key).Msg("cached payload is not a result")
		c.misses.Add(1)
		metrics.IncCacheRequest("redis", "error")
		return Result{}, false
	}

	c.hits.Add(1)
	metrics.IncCacheRequest("redis", "hit")
	return res, true
}

// Set stores a result with the given TTL. Errors are logged and dropped.
func (c *RedisCache) Set(key string, res Result, ttl time.Duration) {
	data, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn().Err(err).Str("event", "cache.redis_encode_failed").Str("key", key).Msg("result not serializable")
		return
	}

	ctx, cancel := opCtx(redisOpTimeout)
	defer cancel()
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("event", "cache.redis_set_failed").Str("key", key).Msg("redis set failed")
		return
	}

	c.sets.Add(1)
}

// Delete removes one result.
func (c *RedisCache) Delete(key string) {
	ctx, cancel := opCtx(redisOpTimeout)
	defer cancel()

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Warn().Err(err).Str("event", "cache.redis_delete_failed").Str("key", key).Msg("redis delete failed")
	}
}

// Clear flushes the current Redis DB.
func (c *RedisCache) Clear() {
	ctx, cancel := opCtx(redisFlushTimeout)
	defer cancel()

	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.logger.Warn().Err(err).Str("event", "cache.redis_flush_failed").Msg("redis flush failed")
	}
}

// Stats reports counters since process start plus the live DB size.
func (c *RedisCache) Stats() Stats {
	ctx, cancel := opCtx(redisOpTimeout)
	defer cancel()

	size, err := c.client.DBSize(ctx).Result()
	if err != nil {
		c.logger.Warn().Err(err).Str("event", "cache.redis_size_failed").Msg("redis dbsize failed")
		size = 0
	}

	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		CurrentSize: int(size),
	}
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// HealthCheck pings Redis; wired into readiness by the daemon.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
