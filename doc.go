// Package itemcache bridges a plain key->bytes store into an item protocol:
// callers obtain a per-key holder (Item), mutate it locally, and commit it back
// explicitly - either immediately (Save) or later in a batch (SaveDeferred + Commit).
//
// Components:
//   - store.Store: byte store with absolute expirations (e.g. Redis, Ristretto, BigCache).
//   - Codec[V]: (de)serializes V <-> []byte.
//   - ValueRepository[V]: process-wide registry correlating holder identities to keys,
//     mediating store reads and holding the single authoritative copy of each
//     deferred (not-yet-flushed) value.
//   - Item[V]: one key's pending read/write state as seen by one call site.
//
// Keys:
//
//	item:<ns>:<key> - stored entries (wire-framed with their expiration)
//
// Holder lifecycle:
//
//	it, _ := pool.Item("user:1") // registers an identity in the repository
//	defer it.Release()           // unregisters; idempotent, never fails
//	it.Set(v)
//	_ = pool.Save(ctx, it)
//
// Many holders for the same key may coexist in one process. Each holder's local
// writes stay invisible to the others until saved; reads route through the
// repository so no two holders alias a shared mutable value.
package itemcache
