// Package store defines the backing-store abstraction used by itemcache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended or
// appended metadata, no re-encoding, no mutation). If a store performs internal
// transforms (e.g., compression), they MUST be fully reversed so that the bytes
// returned by Get are identical to the bytes provided to Set.
package store

import (
	"context"
)

// Store is a minimal byte store with absolute expirations.
// Must be safe for concurrent use.
//
// Expirations are epoch seconds; 0 means the entry never expires. Adapters
// translate to whatever the backend understands (relative TTLs, global life
// windows). A backend with coarser expiry than requested is acceptable:
// entries also carry their expiration in-band and are validated on read.
type Store interface {
	// Exists reports whether key currently holds a value.
	Exists(ctx context.Context, key string) (bool, error)

	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value until expiresAt (epoch seconds; 0 = never).
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, expiresAt int64) (ok bool, err error)

	// Delete removes a key. Reports whether the key was present, where the
	// backend can tell; best-effort otherwise.
	Delete(ctx context.Context, key string) (bool, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
