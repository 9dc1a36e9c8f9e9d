package itemcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The pool and repository call them on hot paths.
type Hooks interface {
	// A stored entry was deleted by the repository on read.
	// reason ∈ {"corrupt", "expired", "value_decode"}
	SelfHeal(storageKey, reason string)

	// Store returned ok=false on Set (backpressure/eviction).
	StoreSetRejected(storageKey string)

	// A deferred flush finished. failed==0 means the whole batch landed.
	DeferredFlushed(flushed, failed int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)  {}
func (NopHooks) StoreSetRejected(string)  {}
func (NopHooks) DeferredFlushed(int, int) {}
