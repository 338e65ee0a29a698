package port

import "context"

type AvailabilityCache interface {
	// ClaimTable atomically marks an available table occupied in cache,
	// returns false if it was already taken
	ClaimTable(ctx context.Context, tableNumber int64) (bool, error)

	// ReleaseTable marks a table available again
	ReleaseTable(ctx context.Context, tableNumber int64) error

	// SetAvailability overwrites the cached state (used to warm the cache)
	SetAvailability(ctx context.Context, tableNumber int64, available bool) error

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)
}
