// Package cache keeps recently shared tokens in Redis so short-link lookups
// can skip board storage.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the token is not cached.
var ErrMiss = errors.New("cache miss")

// TokenCache caches tokens by board ID.
type TokenCache interface {
	Get(ctx context.Context, id string) (string, error)
	Set(ctx context.Context, id, token string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// RedisCache is a TokenCache backed by Redis. It is safe for concurrent use.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache creates a cache. Every key is namespaced with prefix.
func NewRedisCache(redisOpts *redis.Options, prefix string) (*RedisCache, error) {
	if prefix == "" {
		return nil, fmt.Errorf("cache prefix cannot be empty")
	}
	return &RedisCache{
		rdb:    redis.NewClient(redisOpts),
		prefix: prefix,
	}, nil
}

// Key returns the Redis key holding the token of a board.
func (c *RedisCache) Key(id string) string {
	return c.prefix + ":token:" + id
}

// Ping verifies Redis connectivity.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the cached token, or ErrMiss.
func (c *RedisCache) Get(ctx context.Context, id string) (string, error) {
	token, err := c.rdb.Get(ctx, c.Key(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token from Redis: %w", err)
	}
	return token, nil
}

// Set caches a token. A zero ttl keeps it until evicted.
func (c *RedisCache) Set(ctx context.Context, id, token string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.Key(id), token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write token to Redis: %w", err)
	}
	return nil
}

// Delete drops a cached token. Dropping a missing token is not an error.
func (c *RedisCache) Delete(ctx context.Context, id string) error {
	if err := c.rdb.Del(ctx, c.Key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete token from Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
