// internal/core/ports/cache.go
package ports

import (
	"context"
	"time"
)

// CacheRepository is the port for the derived-data cache (valuation
// summaries, reorder reports). Cached values are per-process derivations;
// the store remains the source of truth.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
	Exists(ctx context.Context, keys ...string) (bool, error)

	// GetOrSet returns the cached value or computes, stores and returns it.
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error

	TTL(ctx context.Context, key string) (time.Duration, error)
	Ping(ctx context.Context) error
}
