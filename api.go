package itemcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/itemcache/codec"
	st "github.com/unkn0wn-root/itemcache/store"
)

// Pool is the high-level, store-agnostic item API. V is the caller's value type;
// serialization is handled by a pluggable Codec[V].
//
// Every *Item obtained from Item/Items must be released with Item.Release once
// the caller is done with it (defer-friendly), so the repository registry
// shrinks promptly regardless of how the holder's lifetime ends.
type Pool[V any] interface {
	// Item returns a fresh holder for key, registered with the repository.
	// If a deferred value is pending for key, the holder reports a hit even
	// though the store has not been written yet.
	Item(key string) (*Item[V], error)

	// Items returns one fresh holder per key, mapped by the input keys.
	// All-or-nothing: on an invalid key, no holders are left registered.
	Items(keys []string) (map[string]*Item[V], error)

	// Has reports whether key resolves to a value: pending deferred values
	// count as present, otherwise the store is consulted.
	Has(ctx context.Context, key string) (bool, error)

	// Save writes the item's state to the store immediately. Unchanged items
	// are skipped; already-expired items are deleted instead of written.
	Save(ctx context.Context, it *Item[V]) error

	// SaveDeferred snapshots the item's value into the in-memory deferred
	// queue; Commit flushes it later. The snapshot becomes the authoritative
	// pending value for the key, visible to holders constructed afterwards.
	SaveDeferred(ctx context.Context, it *Item[V]) error

	// Commit flushes the deferred queue in insertion order. Failed entries
	// stay queued; their errors are aggregated into a *CommitError.
	Commit(ctx context.Context) error

	// Delete removes key from the store and drops any pending deferred state.
	// Reports whether the store held the key.
	Delete(ctx context.Context, key string) (bool, error)

	// Close releases the underlying store.
	Close(ctx context.Context) error
}

// Options tune the behavior of the item pool.
// Only Namespace, Store and Codec are required; others have sensible defaults.
type Options[V any] struct {
	// Required
	Namespace string // logical namespace to avoid collisions. e.g. "user", "profile", "order"
	Store     st.Store
	Codec     c.Codec[V]

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used

	// DefaultTTL applies at save time to items whose expiration was never set
	// explicitly. 0 => such items never expire.
	DefaultTTL time.Duration
}

func New[V any](opts Options[V]) (Pool[V], error) {
	return newPool[V](opts)
}
