package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a Redis-backed cache.
type RedisConfig struct {
	// Addr is host:port of the Redis server.
	Addr string
	// Password is optional.
	Password string
	// DB selects the logical database.
	DB int
	// DialTimeout bounds connection setup. Zero uses the client default.
	DialTimeout time.Duration
	// Backoff retries transient failures. Zero uses DefaultBackoff.
	Backoff Backoff
}

// RedisCache implements Cache on top of Redis.
// Entries expire through native Redis TTLs.
type RedisCache struct {
	client  redis.UniversalClient
	backoff Backoff
}

// NewRedisCache connects to Redis and verifies the connection with PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		MaxRetries:  -1,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	b := cfg.Backoff
	if b.Attempts == 0 {
		b = DefaultBackoff
	}
	return &RedisCache{client: client, backoff: b}, nil
}

// NewRedisCacheFromClient wraps an existing client.
// Closing the cache closes the client.
func NewRedisCacheFromClient(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client, backoff: DefaultBackoff}
}

// Get retrieves a value from Redis. Transient network errors are retried.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := c.backoff.Retry(ctx, func() error {
		b, err := c.client.Get(ctx, key).Bytes()
		if err != nil {
			return classify(err)
		}
		data = b
		return nil
	})
	if errors.Is(err, ErrCacheMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value. A zero ttl keeps the entry until evicted.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.backoff.Retry(ctx, func() error {
		return classify(c.client.Set(ctx, key, data, ttl).Err())
	})
}

// Delete removes a value.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return classify(c.client.Del(ctx, key).Err())
}

// Close closes the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// classify maps redis.Nil to ErrCacheMiss and marks network failures retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	return err
}

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
