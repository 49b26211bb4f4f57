// Package cache defines the key-value persistence boundary used for
// snapshot storage and derived-analysis caching.
package cache

import (
	"context"
	"time"
)

// Store is a key-value backend. A ttl of zero means no expiration.
// Implementations must treat a missing key as (nil, false, nil), not
// as an error.
type Store interface {
	// Get retrieves the value stored under key.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key. ttl == 0 keeps the entry forever.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying connection, if any.
	Close() error
}
