package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSessionGuard_HappyPath(t *testing.T) {
	g := NewSessionGuard()

	// Init → Handshaking → Ready
	if err := g.AcquireHandshake(); err != nil {
		t.Fatalf("AcquireHandshake: %v", err)
	}
	if g.State() != "Handshaking" {
		t.Errorf("expected Handshaking, got %s", g.State())
	}
	g.CompleteHandshake()

	if !g.IsReady() {
		t.Fatal("expected Ready after handshake")
	}

	// Ready → Signing → Ready, twice.
	for i := 0; i < 2; i++ {
		if err := g.AcquireSign(); err != nil {
			t.Fatalf("AcquireSign #%d: %v", i, err)
		}
		if g.State() != "Signing" {
			t.Errorf("expected Signing, got %s", g.State())
		}
		g.CompleteSign()
		if !g.IsReady() {
			t.Fatalf("expected Ready after sign #%d", i)
		}
	}
}

func TestSessionGuard_SignBeforeHandshake(t *testing.T) {
	g := NewSessionGuard()
	err := g.AcquireSign()
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	// The rejected call must not hold the sign lock.
	if err := g.AcquireHandshake(); err != nil {
		t.Fatal(err)
	}
	g.CompleteHandshake()
	if err := g.AcquireSign(); err != nil {
		t.Fatalf("AcquireSign after handshake: %v", err)
	}
	g.CompleteSign()
}

func TestSessionGuard_DoubleHandshake(t *testing.T) {
	g := NewSessionGuard()
	if err := g.AcquireHandshake(); err != nil {
		t.Fatal(err)
	}
	g.CompleteHandshake()

	if err := g.AcquireHandshake(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for double handshake, got %v", err)
	}
	if !g.IsReady() {
		t.Fatal("rejected handshake must not change state")
	}
}

func TestSessionGuard_FailHandshake(t *testing.T) {
	g := NewSessionGuard()
	if err := g.AcquireHandshake(); err != nil {
		t.Fatal(err)
	}
	g.FailHandshake()

	// Back in Init, so the host can handshake again.
	if g.State() != "Init" {
		t.Fatalf("expected Init, got %s", g.State())
	}
	if err := g.AcquireHandshake(); err != nil {
		t.Fatal(err)
	}
	g.CompleteHandshake()

	if !g.IsReady() {
		t.Fatal("expected Ready after successful retry")
	}
}

func TestSessionGuard_Close(t *testing.T) {
	g := NewSessionGuard()
	if err := g.AcquireHandshake(); err != nil {
		t.Fatal(err)
	}
	g.CompleteHandshake()
	g.Close()

	if g.State() != "Closed" {
		t.Fatalf("expected Closed, got %s", g.State())
	}
	if err := g.AcquireSign(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after close, got %v", err)
	}
	if err := g.AcquireHandshake(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after close, got %v", err)
	}
}

func TestSessionGuard_CloseWhileSigning(t *testing.T) {
	g := NewSessionGuard()
	_ = g.AcquireHandshake()
	g.CompleteHandshake()
	if err := g.AcquireSign(); err != nil {
		t.Fatal(err)
	}
	g.Close()
	g.CompleteSign()
	if g.State() != "Closed" {
		t.Fatalf("expected Closed, got %s", g.State())
	}
}

func TestSessionGuard_SignIsSerialized(t *testing.T) {
	g := NewSessionGuard()
	_ = g.AcquireHandshake()
	g.CompleteHandshake()

	var inFlight, maxInFlight atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.AcquireSign(); err != nil {
				t.Errorf("AcquireSign: %v", err)
				return
			}
			n := inFlight.Add(1)
			for {
				m := maxInFlight.Load()
				if n <= m || maxInFlight.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inFlight.Add(-1)
			g.CompleteSign()
		}()
	}
	wg.Wait()

	if got := maxInFlight.Load(); got != 1 {
		t.Fatalf("expected at most one sign in flight, saw %d", got)
	}
}
