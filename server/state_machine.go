// Package server provides the signer-side wrapper that enforces the
// session state machine, decodes incoming envelopes through the tag
// catalog and routes sign requests to the capability that handles them.
package server

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrInvalidState is wrapped by every guard rejection.
var ErrInvalidState = errors.New("server: call not allowed in current state")

// sessionState represents a state in the signing session state machine.
type sessionState uint32

const (
	// stateInit: Waiting for Handshake. No other calls allowed.
	stateInit sessionState = iota
	// stateHandshaking: Handshake has been called and not yet returned.
	stateHandshaking
	// stateReady: Handshake complete. Sign requests are accepted one
	// at a time.
	stateReady
	// stateSigning: a sign request is with the device.
	stateSigning
	// stateClosed: the session is over. Nothing is accepted.
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case stateInit:
		return "Init"
	case stateHandshaking:
		return "Handshaking"
	case stateReady:
		return "Ready"
	case stateSigning:
		return "Signing"
	case stateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// SessionGuard enforces the session state machine. Every rejection is
// returned as an error wrapping ErrInvalidState.
type SessionGuard struct {
	state atomic.Uint32
	// Serializes sign requests.
	signMu sync.Mutex
}

// NewSessionGuard creates a guard in the Init state.
func NewSessionGuard() *SessionGuard {
	g := &SessionGuard{}
	g.state.Store(uint32(stateInit))
	return g
}

// State returns the current session state.
func (g *SessionGuard) State() string {
	return sessionState(g.state.Load()).String()
}

func (g *SessionGuard) reject(call string, want sessionState) error {
	return fmt.Errorf("%w: %s called in state %s (expected %s)",
		ErrInvalidState, call, sessionState(g.state.Load()), want)
}

// AcquireHandshake transitions Init → Handshaking.
func (g *SessionGuard) AcquireHandshake() error {
	if !g.state.CompareAndSwap(uint32(stateInit), uint32(stateHandshaking)) {
		return g.reject("Handshake", stateInit)
	}
	return nil
}

// CompleteHandshake transitions Handshaking → Ready.
func (g *SessionGuard) CompleteHandshake() {
	g.state.CompareAndSwap(uint32(stateHandshaking), uint32(stateReady))
}

// FailHandshake rolls back to Init so the host can retry.
func (g *SessionGuard) FailHandshake() {
	g.state.CompareAndSwap(uint32(stateHandshaking), uint32(stateInit))
}

// AcquireSign transitions Ready → Signing. It blocks while another sign
// request is in progress.
func (g *SessionGuard) AcquireSign() error {
	g.signMu.Lock()
	if !g.state.CompareAndSwap(uint32(stateReady), uint32(stateSigning)) {
		g.signMu.Unlock()
		return g.reject("Sign", stateReady)
	}
	return nil
}

// CompleteSign transitions Signing → Ready, whether or not the request
// succeeded. A session closed meanwhile stays closed.
func (g *SessionGuard) CompleteSign() {
	g.state.CompareAndSwap(uint32(stateSigning), uint32(stateReady))
	g.signMu.Unlock()
}

// Close moves the guard to Closed from any state.
func (g *SessionGuard) Close() {
	g.state.Store(uint32(stateClosed))
}

// IsReady returns true if the guard is in the Ready state.
func (g *SessionGuard) IsReady() bool {
	return sessionState(g.state.Load()) == stateReady
}
