package local

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if ok, err := s.Exists(ctx, "k"); err != nil || ok {
		t.Fatalf("Exists on empty store: ok=%v err=%v", ok, err)
	}

	if ok, err := s.Set(ctx, "k", []byte("v"), 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	b, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(b, []byte("v")) {
		t.Fatalf("Get: b=%q ok=%v err=%v", b, ok, err)
	}

	existed, err := s.Delete(ctx, "k")
	if err != nil || !existed {
		t.Fatalf("Delete: existed=%v err=%v", existed, err)
	}
	if existed, err := s.Delete(ctx, "k"); err != nil || existed {
		t.Fatalf("Delete absent: existed=%v err=%v", existed, err)
	}
}

func TestSetCopiesValue(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	v := []byte("abc")
	if _, err := s.Set(ctx, "k", v, 0); err != nil {
		t.Fatal(err)
	}
	v[0] = 'X'
	b, _, _ := s.Get(ctx, "k")
	if !bytes.Equal(b, []byte("abc")) {
		t.Fatalf("stored value aliased the caller's buffer: %q", b)
	}
}

func TestExpiredEntriesDropLazily(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	past := time.Now().Add(-time.Minute).Unix()
	future := time.Now().Add(time.Hour).Unix()

	// setting an already-expired entry is a delete
	if _, err := s.Set(ctx, "old", []byte("v"), past); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "old"); ok {
		t.Fatalf("already-expired Set must not store")
	}

	if _, err := s.Set(ctx, "live", []byte("v"), future); err != nil {
		t.Fatal(err)
	}
	if ok, _ := s.Exists(ctx, "live"); !ok {
		t.Fatalf("future-dated entry must exist")
	}

	// expire it behind the store's back, then observe the lazy drop
	s.mu.Lock()
	e := s.entries["live"]
	e.expiresAt = past
	s.entries["live"] = e
	s.mu.Unlock()

	if _, ok, _ := s.Get(ctx, "live"); ok {
		t.Fatalf("expired entry must read as miss")
	}
	s.mu.RLock()
	_, present := s.entries["live"]
	s.mu.RUnlock()
	if present {
		t.Fatalf("expired entry must be dropped on access")
	}
}

func TestSweepPrunesExpired(t *testing.T) {
	ctx := context.Background()
	s := New(0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Set(ctx, "keep", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Set(ctx, "drop", []byte("v"), time.Now().Add(time.Second).Unix()); err != nil {
		t.Fatal(err)
	}

	s.mu.Lock()
	e := s.entries["drop"]
	e.expiresAt = time.Now().Add(-time.Second).Unix()
	s.entries["drop"] = e
	s.mu.Unlock()

	s.Sweep()

	s.mu.RLock()
	_, keep := s.entries["keep"]
	_, drop := s.entries["drop"]
	s.mu.RUnlock()
	if !keep || drop {
		t.Fatalf("Sweep: keep=%v drop=%v", keep, drop)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := New(10 * time.Millisecond)
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
}
