package cache

import (
	"context"
	"time"
)

// Store represents a shared cache interface used across the application.
// The cache holds no policy of its own: callers decide what to populate
// and when to invalidate.
type Store interface {
	// Get returns the payload for key, with false when the key is absent
	// or expired.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores the payload. A non-positive ttl persists the entry until
	// it is explicitly deleted.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Delete removes keys, ignoring those that do not exist.
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPattern removes every key matching the glob pattern. The
	// scan-then-delete is racy with concurrent writers; treat it as
	// best-effort broad invalidation, not a strict guarantee.
	DeleteByPattern(ctx context.Context, pattern string) error
}
