package local

import (
	"context"
	"sync"
	"time"

	st "github.com/unkn0wn-root/itemcache/store"
)

type entry struct {
	v         []byte
	expiresAt int64 // epoch seconds; 0 = never
}

// Local keeps entries in-process. Dependency-free default for tests and
// single-binary tools. Expired entries are dropped lazily on access and, when
// a cleanup interval is configured, swept by a background loop.
type Local struct {
	mu      sync.RWMutex
	entries map[string]entry

	ticker    *time.Ticker
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ st.Store = (*Local)(nil)

func New(cleanupInterval time.Duration) *Local {
	s := &Local{
		entries: make(map[string]entry),
	}
	if cleanupInterval > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Sweep()
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.live(key)
	return ok, nil
}

func (s *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := s.live(key)
	if !ok {
		return nil, false, nil
	}
	return e.v, true, nil
}

func (s *Local) Set(_ context.Context, key string, value []byte, expiresAt int64) (bool, error) {
	if expiresAt > 0 && expiresAt < time.Now().Unix() {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return true, nil
	}
	// copy; callers may reuse their buffer
	v := append([]byte(nil), value...)
	s.mu.Lock()
	s.entries[key] = entry{v: v, expiresAt: expiresAt}
	s.mu.Unlock()
	return true, nil
}

func (s *Local) Delete(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	_, ok := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()
	return ok, nil
}

func (s *Local) Close(_ context.Context) error {
	s.closeOnce.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.ticker.Stop() // stop ticker before waiting
			s.wg.Wait()
		}
	})
	return nil
}

// Sweep removes all expired entries now. Normally driven by the cleanup loop.
func (s *Local) Sweep() {
	now := time.Now().Unix()
	s.mu.Lock()
	for k, e := range s.entries {
		if e.expiresAt != 0 && e.expiresAt < now {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}

// live fetches key and lazily drops it when expired.
func (s *Local) live(key string) (entry, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return entry{}, false
	}
	if e.expiresAt != 0 && e.expiresAt < time.Now().Unix() {
		s.mu.Lock()
		// recheck under the write lock; another goroutine may have replaced it
		if cur, ok := s.entries[key]; ok && cur.expiresAt == e.expiresAt {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return entry{}, false
	}
	return e, true
}
