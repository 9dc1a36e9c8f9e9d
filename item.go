package itemcache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Item is one key's cache slot as seen by one call site. It registers an
// opaque identity with the repository at construction and unregisters it on
// Release. All mutation (Set, ExpiresAt, ExpiresAfter, OverrideHit) is local
// to the holder; nothing reaches the store until the pool saves the item.
//
// An Item is exclusively owned by its creator and is not safe for concurrent
// use. Distinct holders for the same key never alias each other's state.
type Item[V any] struct {
	key      string
	identity uuid.UUID
	repo     *ValueRepository[V]

	value    V
	hasValue bool

	expiration    int64 // absolute epoch seconds; 0 = never
	hasExpiration bool  // expiry set explicitly, including an explicit "never"

	hitOverride    bool
	hasHitOverride bool

	changed bool

	now func() time.Time
}

func newItem[V any](key string, repo *ValueRepository[V], now func() time.Time) *Item[V] {
	it := &Item[V]{
		key:      key,
		identity: uuid.New(),
		repo:     repo,
		now:      now,
	}
	repo.Add(it.identity, key)
	return it
}

// Key returns the key this holder was created for.
func (it *Item[V]) Key() string { return it.key }

// Get resolves the holder's value. A local write always wins; otherwise a
// miss returns the zero V, and a hit is fetched through the repository
// (pending deferred value first, then the store).
func (it *Item[V]) Get(ctx context.Context) (V, error) {
	var zero V
	if it.hasValue {
		return it.value, nil
	}
	hit, err := it.IsHit(ctx)
	if err != nil || !hit {
		return zero, err
	}
	v, ok, err := it.repo.Get(ctx, it.identity)
	if err != nil || !ok {
		return zero, err
	}
	return v, nil
}

// Set stores v locally and marks the holder changed. Setting the zero V is a
// real write, distinguishable from "never written". Returns the item for
// chaining; the store is untouched until an explicit save.
func (it *Item[V]) Set(v V) *Item[V] {
	it.value = v
	it.hasValue = true
	it.changed = true
	return it
}

// IsHit reports whether the holder resolves to a value. An explicit override
// short-circuits the repository; the pool sets one when the key's value lives
// only in the deferred queue, where a store query would report a false miss.
func (it *Item[V]) IsHit(ctx context.Context) (bool, error) {
	if it.hasHitOverride {
		return it.hitOverride, nil
	}
	return it.repo.Exists(ctx, it.identity)
}

// ExpiresAt sets an absolute expiration. Accepted shapes:
//
//	time.Time  - expires at that instant
//	*time.Time - same; nil pointer means never
//	nil        - never expires
//
// Anything else fails with ErrInvalidArgument and mutates nothing.
func (it *Item[V]) ExpiresAt(at any) error {
	var exp int64
	switch v := at.(type) {
	case nil:
		exp = 0
	case time.Time:
		exp = v.Unix()
	case *time.Time:
		if v != nil {
			exp = v.Unix()
		}
	default:
		return fmt.Errorf("%w: expiresAt accepts time.Time, *time.Time or nil, got %T (%v)", ErrInvalidArgument, at, at)
	}
	it.expiration = exp
	it.hasExpiration = true
	it.changed = true
	return nil
}

// ExpiresAfter sets a relative expiration. Accepted shapes:
//
//	time.Duration        - added to now
//	int / int32 / int64  - seconds added to now
//	nil                  - never expires
//
// Anything else fails with ErrInvalidArgument and mutates nothing.
func (it *Item[V]) ExpiresAfter(after any) error {
	var exp int64
	switch v := after.(type) {
	case nil:
		exp = 0
	case time.Duration:
		exp = it.now().Add(v).Unix()
	case int:
		exp = it.now().Unix() + int64(v)
	case int32:
		exp = it.now().Unix() + int64(v)
	case int64:
		exp = it.now().Unix() + v
	default:
		return fmt.Errorf("%w: expiresAfter accepts time.Duration, int seconds or nil, got %T (%v)", ErrInvalidArgument, after, after)
	}
	it.expiration = exp
	it.hasExpiration = true
	it.changed = true
	return nil
}

// Expiration returns the normalized absolute expiration in epoch seconds.
// 0 means the item never expires.
func (it *Item[V]) Expiration() int64 { return it.expiration }

// IsExpired reports whether a nonzero expiration lies strictly in the past.
func (it *Item[V]) IsExpired() bool {
	return it.expiration != 0 && it.expiration < it.now().Unix()
}

// Changed reports whether any write (value or expiration) occurred since
// construction. Monotonic: never reverts to false.
func (it *Item[V]) Changed() bool { return it.changed }

// OverrideHit forces the result of IsHit, bypassing the store. Used by the
// pool when restoring an item whose value is pending in the deferred queue.
func (it *Item[V]) OverrideHit(hit bool) {
	it.hitOverride = hit
	it.hasHitOverride = true
}

// Release unregisters the holder's identity from the repository. Idempotent
// and infallible, so it is always safe in a defer.
func (it *Item[V]) Release() {
	it.repo.Remove(it.identity)
}
