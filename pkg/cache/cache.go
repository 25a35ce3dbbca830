package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the cache backend is unreachable. Data-path
// operations never return it (they fail soft); admin operations surface it
// so callers can report a connectivity error.
var ErrUnavailable = errors.New("cache unavailable")

// Cache is the read-through caching contract used by the HTTP layer. It is
// implemented by Service (Redis only) and Tiered (memory + Redis).
type Cache interface {
	// Get retrieves a value by key. The boolean indicates a cache hit;
	// a miss or an unreachable backend both report false.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value under key with the given TTL. Writes are discarded
	// when the backend is unreachable.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)

	// Delete removes a single key. Returns ErrUnavailable when the backend
	// is unreachable.
	Delete(ctx context.Context, key string) error

	// GetOrCompute returns the cached value for key, or runs loader on a
	// miss, stores the result, and returns it. The boolean reports whether
	// the value came from cache.
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, loader func(context.Context) ([]byte, error)) ([]byte, bool, error)
}
