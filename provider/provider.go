// Package provider defines the storage abstraction behind every multicache
// handle.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key (no prepended/appended
// metadata, no re-encoding, no mutation). If a store performs internal transforms
// (e.g., compression), they MUST be fully reversed so that the bytes returned by
// Get are identical to the bytes provided to Set.
//
// One provider backs exactly one named cache. Clear therefore removes every
// entry the provider owns and nothing else it can avoid touching.
package provider

import (
	"context"
	"time"
)

// Provider is a minimal byte store with TTLs.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. May ignore cost or ttl if unsupported.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, cost int64, ttl time.Duration) (ok bool, err error)

	// Del removes a key (best-effort). Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Clear removes every entry of this cache.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Stats are cumulative hit/miss counters.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// StatsReporter is implemented by providers that can count hits and misses.
// ok is false when recording was not requested for the cache.
type StatsReporter interface {
	Stats() (s Stats, ok bool)
}
