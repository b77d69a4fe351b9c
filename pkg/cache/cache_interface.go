package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer. Implementations are expected
// to be safe for concurrent use; the repository layer treats every cache
// failure as a miss, never as a request failure.
type Cache interface {
	// Get loads the value stored under key and unmarshals it into dest.
	// Returns (false, nil) on a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}
