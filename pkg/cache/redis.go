package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/mindlayout/pkg/observability"
)

// RedisCache stores entries in Redis under a key prefix.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the server described by a redis:// URL.
func NewRedisCache(ctx context.Context, url, prefix string) (Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &RedisCache{client: client, prefix: prefix}, nil
}

// Get retrieves a value from the cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = c.client.Get(ctx, c.prefix+key).Bytes()
		if err != nil && err != redis.Nil {
			return Retryable(err)
		}
		return err
	})
	if err == redis.Nil {
		observability.Cache().OnCacheMiss(ctx, "redis")
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	observability.Cache().OnCacheHit(ctx, "redis")
	return data, true, nil
}

// Set stores a value in the cache.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := RetryWithBackoff(ctx, func() error {
		return Retryable(c.client.Set(ctx, c.prefix+key, data, ttl).Err())
	})
	if err == nil {
		observability.Cache().OnCacheSet(ctx, "redis", len(data))
	}
	return err
}

// Delete removes a value from the cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

// Close closes the client.
func (c *RedisCache) Close() error { return c.client.Close() }

// Ensure RedisCache implements Cache.
var _ Cache = (*RedisCache)(nil)
