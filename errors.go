package itemcache

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports an unsupported input shape (a malformed
	// expiry argument, a reserved character in a key). Not retryable; the
	// call site must be fixed.
	ErrInvalidArgument = errors.New("itemcache: invalid argument")

	// ErrNotRegistered reports a repository lookup for an identity that was
	// never registered. This is a lifecycle bug upstream (e.g. use after
	// Release), never a normal condition.
	ErrNotRegistered = errors.New("itemcache: identity not registered")
)

// CommitError aggregates per-key failures from a deferred flush.
// Keys[i] corresponds to Errs[i]. Failed entries remain queued and are
// retried on the next Commit.
type CommitError struct {
	Keys []string
	Errs []error
}

func (e *CommitError) Error() string {
	if len(e.Keys) == 1 {
		return fmt.Sprintf("commit %q failed: %v", e.Keys[0], e.Errs[0])
	}
	return fmt.Sprintf("commit failed for %d keys (first %q: %v)", len(e.Keys), e.Keys[0], e.Errs[0])
}

func (e *CommitError) Unwrap() []error { return e.Errs }
