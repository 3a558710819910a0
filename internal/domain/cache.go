package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key-value port used for sessions, drills, preferences and auth state.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set overwrites the key. A zero expiration keeps the key until deleted.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// SetNX sets the key only when it does not exist yet and reports whether it did.
	SetNX(ctx context.Context, key string, value string, expiration time.Duration) (bool, error)

	// Incr adds one to a counter and returns the new value. The expiration is set
	// when the counter is created and left alone afterwards.
	Incr(ctx context.Context, key string, expiration time.Duration) (int64, error)

	// Delete does not fail for missing keys.
	Delete(ctx context.Context, key string) error

	// TTL returns the remaining lifetime of a key, or ErrCacheMiss if it does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)

	Ping(ctx context.Context) error
}
