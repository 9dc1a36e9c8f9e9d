package itemcache

import (
	"context"
	"fmt"
	"sync"
	"time"

	c "github.com/unkn0wn-root/itemcache/codec"
	"github.com/unkn0wn-root/itemcache/internal/keys"
	"github.com/unkn0wn-root/itemcache/internal/wire"
	st "github.com/unkn0wn-root/itemcache/store"
)

type deferredEntry[V any] struct {
	key        string
	value      V
	expiration int64
}

type pool[V any] struct {
	ns    string
	store st.Store
	codec c.Codec[V]
	log   Logger
	hooks Hooks
	repo  *ValueRepository[V]

	defaultTTL time.Duration
	now        func() time.Time

	// deferred queue; slot indices keep insertion order stable when a key is
	// re-deferred (the newer snapshot replaces the older one in place)
	defMu    sync.Mutex
	deferred []deferredEntry[V]
	defIdx   map[string]int
}

func newPool[V any](opts Options[V]) (*pool[V], error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("itemcache: store is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("itemcache: codec is required")
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("itemcache: namespace is required")
	}

	p := &pool[V]{
		ns:         opts.Namespace,
		store:      opts.Store,
		codec:      opts.Codec,
		defaultTTL: opts.DefaultTTL,
		now:        time.Now,
		defIdx:     make(map[string]int),
	}
	p.log = coalesce[Logger](opts.Logger, NopLogger{})
	p.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	p.repo = newValueRepository[V](p.ns, opts.Store, opts.Codec, p.log, p.hooks, p.timeNow)
	return p, nil
}

// timeNow indirects through the pool so tests can pin the clock for items and
// the repository at once.
func (p *pool[V]) timeNow() time.Time { return p.now() }

func (p *pool[V]) Item(key string) (*Item[V], error) {
	if err := keys.Validate(key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	it := newItem(key, p.repo, p.timeNow)
	if p.repo.HasPending(key) {
		// value lives only in the deferred queue; a store query would
		// report a false miss
		it.OverrideHit(true)
	}
	return it, nil
}

func (p *pool[V]) Items(ks []string) (map[string]*Item[V], error) {
	for _, k := range ks {
		if err := keys.Validate(k); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
	}
	out := make(map[string]*Item[V], len(ks))
	for _, k := range ks {
		if _, ok := out[k]; ok {
			continue
		}
		it, err := p.Item(k)
		if err != nil {
			for _, prev := range out {
				prev.Release()
			}
			return nil, err
		}
		out[k] = it
	}
	return out, nil
}

func (p *pool[V]) Has(ctx context.Context, key string) (bool, error) {
	if err := keys.Validate(key); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if p.repo.HasPending(key) {
		return true, nil
	}
	return p.store.Exists(ctx, keys.Storage(p.ns, key))
}

func (p *pool[V]) Save(ctx context.Context, it *Item[V]) error {
	if !it.Changed() {
		p.log.Debug("save skipped (item unchanged)", Fields{"key": it.Key()})
		return nil
	}
	if it.IsExpired() {
		// an expired write is a delete from the store's point of view
		_, err := p.store.Delete(ctx, keys.Storage(p.ns, it.Key()))
		return err
	}
	v, err := it.Get(ctx)
	if err != nil {
		return err
	}
	return p.write(ctx, it.Key(), v, p.resolveExpiration(it))
}

func (p *pool[V]) SaveDeferred(ctx context.Context, it *Item[V]) error {
	if !it.Changed() {
		p.log.Debug("deferred save skipped (item unchanged)", Fields{"key": it.Key()})
		return nil
	}
	v, err := it.Get(ctx)
	if err != nil {
		return err
	}
	e := deferredEntry[V]{key: it.Key(), value: v, expiration: p.resolveExpiration(it)}

	p.defMu.Lock()
	if i, ok := p.defIdx[e.key]; ok {
		p.deferred[i] = e
	} else {
		p.defIdx[e.key] = len(p.deferred)
		p.deferred = append(p.deferred, e)
	}
	p.defMu.Unlock()

	p.repo.SetPending(e.key, v)
	return nil
}

func (p *pool[V]) Commit(ctx context.Context) error {
	p.defMu.Lock()
	batch := p.deferred
	p.deferred = nil
	p.defIdx = make(map[string]int)
	p.defMu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	var cerr *CommitError
	flushed := 0
	for _, e := range batch {
		var err error
		if e.expiration != 0 && e.expiration < p.now().Unix() {
			_, err = p.store.Delete(ctx, keys.Storage(p.ns, e.key))
		} else {
			err = p.write(ctx, e.key, e.value, e.expiration)
		}
		if err != nil {
			if cerr == nil {
				cerr = &CommitError{}
			}
			cerr.Keys = append(cerr.Keys, e.key)
			cerr.Errs = append(cerr.Errs, err)
			p.requeue(e)
			continue
		}
		p.repo.ClearPending(e.key)
		flushed++
	}

	p.hooks.DeferredFlushed(flushed, len(batch)-flushed)
	p.log.Debug("deferred queue flushed", Fields{"flushed": flushed, "failed": len(batch) - flushed})
	if cerr != nil {
		return cerr
	}
	return nil
}

func (p *pool[V]) Delete(ctx context.Context, key string) (bool, error) {
	if err := keys.Validate(key); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	p.defMu.Lock()
	if i, ok := p.defIdx[key]; ok {
		delete(p.defIdx, key)
		p.deferred = append(p.deferred[:i], p.deferred[i+1:]...)
		for j := i; j < len(p.deferred); j++ {
			p.defIdx[p.deferred[j].key] = j
		}
	}
	p.defMu.Unlock()

	p.repo.ClearPending(key)
	return p.store.Delete(ctx, keys.Storage(p.ns, key))
}

func (p *pool[V]) Close(ctx context.Context) error {
	return p.store.Close(ctx)
}

func (p *pool[V]) write(ctx context.Context, key string, v V, expiration int64) error {
	payload, err := p.codec.Encode(v)
	if err != nil {
		return err
	}
	sk := keys.Storage(p.ns, key)
	ok, err := p.store.Set(ctx, sk, wire.Encode(expiration, payload), expiration)
	if err != nil {
		return err
	}
	if !ok {
		p.hooks.StoreSetRejected(sk)
		p.log.Debug("store rejected set (pressure)", Fields{"key": key})
	}
	return nil
}

// resolveExpiration applies DefaultTTL only when the item never touched its
// expiry; an explicit "never" (expiration 0 with hasExpiration) is honored.
func (p *pool[V]) resolveExpiration(it *Item[V]) int64 {
	if it.hasExpiration {
		return it.expiration
	}
	if p.defaultTTL > 0 {
		return p.now().Add(p.defaultTTL).Unix()
	}
	return 0
}

// requeue puts a failed flush entry back unless a newer snapshot for the key
// arrived while the batch was in flight.
func (p *pool[V]) requeue(e deferredEntry[V]) {
	p.defMu.Lock()
	if _, ok := p.defIdx[e.key]; !ok {
		p.defIdx[e.key] = len(p.deferred)
		p.deferred = append(p.deferred, e)
	}
	p.defMu.Unlock()
}
