package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers processed webhook event IDs so duplicated
// deliveries can be skipped cheaply. It is a fast path only: the
// authoritative duplicate guard is the storage-level uniqueness
// constraint on materialized orders.
type IdempotencyStore interface {
	// MarkProcessed marks an event as processed with a TTL.
	// Returns true if the event was newly marked, false if it was already processed.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed checks if an event has already been processed
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// DefaultIdempotencyTTL is how long processed event IDs are remembered.
// Providers stop retrying deliveries well within this window.
const DefaultIdempotencyTTL = 24 * time.Hour
