package itemcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	c "github.com/unkn0wn-root/itemcache/codec"
	"github.com/unkn0wn-root/itemcache/internal/keys"
	"github.com/unkn0wn-root/itemcache/internal/wire"
	st "github.com/unkn0wn-root/itemcache/store"
)

// ValueRepository correlates holder identities to cache keys and mediates all
// store reads. It also owns the pending-value slots: when a save is deferred,
// the snapshot lives here as the single authoritative copy for its key until
// the batch is committed, so any number of holders can observe it without
// duplicating storage.
//
// Identities are exclusively owned by their holder, so registration and
// unregistration never race for the same identity; the maps are still guarded
// because distinct holders register and look up concurrently.
type ValueRepository[V any] struct {
	ns    string
	store st.Store
	codec c.Codec[V]
	log   Logger
	hooks Hooks
	now   func() time.Time

	mu      sync.RWMutex
	regs    map[uuid.UUID]string
	pending map[string]V
}

func newValueRepository[V any](ns string, store st.Store, codec c.Codec[V], log Logger, hooks Hooks, now func() time.Time) *ValueRepository[V] {
	return &ValueRepository[V]{
		ns:      ns,
		store:   store,
		codec:   codec,
		log:     log,
		hooks:   hooks,
		now:     now,
		regs:    make(map[uuid.UUID]string),
		pending: make(map[string]V),
	}
}

// Add records identity -> key. A duplicate identity overwrites (last write
// wins); construction makes duplicates impossible in practice, so this is a
// non-failing property rather than a feature callers should lean on.
func (r *ValueRepository[V]) Add(identity uuid.UUID, key string) {
	r.mu.Lock()
	r.regs[identity] = key
	r.mu.Unlock()
}

// Remove deletes the mapping for identity. No-op when absent; never fails.
func (r *ValueRepository[V]) Remove(identity uuid.UUID) {
	r.mu.Lock()
	delete(r.regs, identity)
	r.mu.Unlock()
}

// Exists forwards an existence check to the store for the identity's key.
// An unregistered identity is a lifecycle bug and fails with ErrNotRegistered.
func (r *ValueRepository[V]) Exists(ctx context.Context, identity uuid.UUID) (bool, error) {
	key, err := r.keyFor(identity)
	if err != nil {
		return false, err
	}
	return r.store.Exists(ctx, keys.Storage(r.ns, key))
}

// Get fetches the value for the identity's key: the pending deferred slot
// first, then the store. Corrupt, expired, or undecodable stored entries are
// deleted on read (self-heal) and reported as misses. Store errors pass
// through unwrapped.
func (r *ValueRepository[V]) Get(ctx context.Context, identity uuid.UUID) (V, bool, error) {
	var zero V
	key, err := r.keyFor(identity)
	if err != nil {
		return zero, false, err
	}

	r.mu.RLock()
	pv, ok := r.pending[key]
	r.mu.RUnlock()
	if ok {
		return pv, true, nil
	}

	sk := keys.Storage(r.ns, key)
	raw, ok, err := r.store.Get(ctx, sk)
	if err != nil || !ok {
		return zero, false, err
	}

	exp, payload, err := wire.Decode(raw)
	if err != nil {
		r.selfHeal(ctx, sk, "corrupt")
		return zero, false, nil
	}
	if exp != 0 && exp < r.now().Unix() {
		r.selfHeal(ctx, sk, "expired")
		return zero, false, nil
	}
	v, err := r.codec.Decode(payload)
	if err != nil {
		r.selfHeal(ctx, sk, "value_decode")
		return zero, false, nil
	}
	return v, true, nil
}

// SetPending installs v as the authoritative deferred value for key.
func (r *ValueRepository[V]) SetPending(key string, v V) {
	r.mu.Lock()
	r.pending[key] = v
	r.mu.Unlock()
}

// ClearPending drops the deferred value for key, if any.
func (r *ValueRepository[V]) ClearPending(key string) {
	r.mu.Lock()
	delete(r.pending, key)
	r.mu.Unlock()
}

// HasPending reports whether a deferred value is pending for key.
func (r *ValueRepository[V]) HasPending(key string) bool {
	r.mu.RLock()
	_, ok := r.pending[key]
	r.mu.RUnlock()
	return ok
}

func (r *ValueRepository[V]) keyFor(identity uuid.UUID) (string, error) {
	r.mu.RLock()
	key, ok := r.regs[identity]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotRegistered, identity)
	}
	return key, nil
}

func (r *ValueRepository[V]) selfHeal(ctx context.Context, storageKey, reason string) {
	_, _ = r.store.Delete(ctx, storageKey)
	r.hooks.SelfHeal(storageKey, reason)
	r.log.Debug("self-healed entry on read", Fields{"key": storageKey, "reason": reason})
}

// registered reports whether identity is currently mapped. Test hook.
func (r *ValueRepository[V]) registered(identity uuid.UUID) bool {
	r.mu.RLock()
	_, ok := r.regs[identity]
	r.mu.RUnlock()
	return ok
}
