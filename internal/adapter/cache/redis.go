// Package cache provides domain.Cache backends.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/interview-engine/internal/domain"
)

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("op=cache.NewRedisClient: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("op=cache.NewRedisClient: ping: %w", err)
	}
	return rdb, nil
}

// RedisCache implements domain.Cache on plain string keys.
type RedisCache struct {
	rdb redis.Cmdable
}

func NewRedisCache(rdb redis.Cmdable) *RedisCache { return &RedisCache{rdb: rdb} }

func (c *RedisCache) Get(ctx domain.Context, key string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("op=cache.RedisCache.Get: %w", err)
	}
	return v, true, nil
}

// Set stores value; a ttl <= 0 keeps the key until evicted.
func (c *RedisCache) Set(ctx domain.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("op=cache.RedisCache.Set: %w", err)
	}
	return nil
}

// NoopCache never stores anything. Used when Redis is not configured.
type NoopCache struct{}

func (NoopCache) Get(domain.Context, string) (string, bool, error) { return "", false, nil }
func (NoopCache) Set(domain.Context, string, string, time.Duration) error { return nil }
