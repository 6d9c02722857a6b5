package domain

import (
	"context"
	"time"
)

// CounterRepository defines the interface for visit counter persistence
type CounterRepository interface {
	// IncrementAndFetch atomically adds 1 to the counter, creating it with
	// count 1 if absent, and returns the post-increment value.
	IncrementAndFetch(ctx context.Context, counterID string) (int64, error)

	// Fetch returns the counter, or ErrNotFound if it was never incremented.
	Fetch(ctx context.Context, counterID string) (*Counter, error)
}

// CountryRepository defines the interface for per-country sub-count persistence
type CountryRepository interface {
	// Increment atomically adds 1 to the sub-count for countryCode under
	// counterID, creating entries as needed.
	Increment(ctx context.Context, counterID, countryCode string) error

	// TopN returns up to n countries for one counter, descending by
	// sub-count, ties by country code ascending.
	TopN(ctx context.Context, counterID string, n int) ([]CountryCount, error)

	// GlobalTopN sums sub-counts per country across all counters and
	// returns the top n in the same order. Read-only; each counter's
	// breakdown may be read at a slightly different instant.
	GlobalTopN(ctx context.Context, n int) ([]CountryCount, error)
}

// CooldownRepository defines the interface for the per-(counter, client)
// cooldown window. TryAdmit must be atomic per key: when several calls race
// on an absent or expired record, exactly one is admitted.
type CooldownRepository interface {
	// TryAdmit admits the visit and records the new window, or rejects it
	// with the remaining wait. A record whose window has passed is treated
	// as absent even if it has not been physically reclaimed yet.
	TryAdmit(ctx context.Context, counterID, clientID string, ttl time.Duration) (*Admission, error)
}
