// internal/adapters/redis_adapter/cache.go
package redis_a

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avolio/stockbook-be/internal/core/ports"
)

// ErrCacheMiss is returned when a key is not found in cache.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores derived valuation data in Redis. Values are JSON-encoded;
// the database stays the source of truth and every entry carries a TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Statically assert that *Cache implements the CacheRepository interface.
var _ ports.CacheRepository = (*Cache)(nil)

// NewCache creates a new cache instance with a default TTL.
func NewCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "cache")),
	}
}

// Set stores a value in cache with the default TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	return c.SetWithTTL(ctx, key, value, c.ttl)
}

// SetWithTTL stores a value in cache with a custom TTL.
func (c *Cache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to marshal cache value",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to set cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("redis set error: %w", err)
	}

	c.logger.DebugContext(ctx, "cache set",
		slog.String("key", key),
		slog.Duration("ttl", ttl))

	return nil
}

// Get retrieves a value from cache into dest.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.logger.DebugContext(ctx, "cache miss", slog.String("key", key))
			return ErrCacheMiss
		}
		c.logger.ErrorContext(ctx, "failed to get cache",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("redis get error: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.ErrorContext(ctx, "failed to unmarshal cache value",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return fmt.Errorf("unmarshal error: %w", err)
	}

	c.logger.DebugContext(ctx, "cache hit", slog.String("key", key))
	return nil
}

// Delete removes keys from cache.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to delete cache",
			slog.Any("keys", keys),
			slog.String("error", err.Error()))
		return fmt.Errorf("redis del error: %w", err)
	}

	c.logger.DebugContext(ctx, "cache deleted", slog.Any("keys", keys))
	return nil
}

// DeletePattern removes all keys matching a glob pattern.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to scan keys",
			slog.String("pattern", pattern),
			slog.String("error", err.Error()))
		return fmt.Errorf("redis scan error: %w", err)
	}

	if len(keys) > 0 {
		return c.Delete(ctx, keys...)
	}

	return nil
}

// Exists reports whether all of the given keys exist.
func (c *Cache) Exists(ctx context.Context, keys ...string) (bool, error) {
	n, err := c.client.Exists(ctx, keys...).Result()
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to check cache existence",
			slog.Any("keys", keys),
			slog.String("error", err.Error()))
		return false, fmt.Errorf("redis exists error: %w", err)
	}

	return n == int64(len(keys)), nil
}

// GetOrSet retrieves from cache, or fetches, stores and returns on a miss.
// A failed cache write after a successful fetch is logged, not surfaced.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{},
	fetch func() (interface{}, error), ttl time.Duration) error {

	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		return err
	}

	value, err := fetch()
	if err != nil {
		return fmt.Errorf("fetch error: %w", err)
	}

	if err := c.SetWithTTL(ctx, key, value, ttl); err != nil {
		c.logger.WarnContext(ctx, "failed to cache value after fetch",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	// Copy the fetched value into dest through the same codec a cache
	// hit would have used.
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal error: %w", err)
	}

	return nil
}

// TTL returns the remaining time to live for a key.
func (c *Cache) TTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := c.client.TTL(ctx, key).Result()
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to get TTL",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("redis ttl error: %w", err)
	}

	return ttl, nil
}

// Ping checks if Redis is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.logger.ErrorContext(ctx, "redis ping failed", slog.String("error", err.Error()))
		return fmt.Errorf("redis ping error: %w", err)
	}

	return nil
}
