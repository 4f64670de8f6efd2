package shared

import (
	"context"
	"time"
)

// IdempotencyStore fences operations that must not run twice concurrently,
// such as ERP provisioning of one order
type IdempotencyStore interface {
	// MarkProcessed marks a key as taken with a TTL.
	// Returns true if the key was newly marked, false if it already existed.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key is currently marked
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release removes a key so the operation can run again
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}
