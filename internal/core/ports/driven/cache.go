package driven

import (
	"context"
	"time"
)

// Cache stores short-lived byte values under namespaced string keys.
// Keys follow "ledgerbridge:<owner>:<area>:..." so one owner can be
// cleared without touching another.
type Cache interface {
	// Get returns the value and whether it was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value for ttl. A zero ttl never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}
