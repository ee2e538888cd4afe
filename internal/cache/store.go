package cache

import (
	"context"
	"time"
)

// Store is the cache surface the rest of the application programs against.
// Redis backs it when REDIS_URL is configured, otherwise the gorm-backed
// DatabaseStore does, so callers never care which one they got.
type Store interface {
	// IncrementWithTTL bumps a counter, starting a fresh window with the
	// given duration when the key is new or expired. It returns the counter
	// value and the time left in the window; rate limiting is built on it.
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)

	// Set stores value under key for the given lifetime, replacing any
	// previous value.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get fetches a value; the boolean reports whether the key was present
	// and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Delete removes the given keys, ignoring ones that do not exist.
	Delete(ctx context.Context, keys ...string) error
}
