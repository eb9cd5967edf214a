// Package urtest provides test utilities for signer development,
// including a configurable mock device, a test harness, a device
// compliance suite and a record round-trip suite.
package urtest

import (
	"context"
	"crypto/sha256"
	"sync/atomic"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/btc"
	"github.com/blockberries/urregistry/cardano"
	"github.com/blockberries/urregistry/stellar"
	"github.com/blockberries/urregistry/types"
)

// Compile-time check that MockDevice satisfies all interfaces.
var _ urregistry.Signer = (*MockDevice)(nil)

// MockFingerprint is the master fingerprint MockDevice reports by
// default.
const MockFingerprint types.Fingerprint = 0x73C5DA0A

// MockDevice is a configurable mock signer for host testing. All
// methods are configurable via function fields. Unconfigured methods
// return a placeholder signature over signData that echoes the request
// identifier.
//
// MockDevice implements every signer interface so it can be used to
// test capability discovery. Control which capabilities are declared
// via the DeclaredCapabilities field.
type MockDevice struct {
	// DeclaredCapabilities controls the bitfield returned at handshake.
	DeclaredCapabilities types.Capabilities

	// Configurable handlers. If nil, defaults are used.
	HandshakeFn   func(context.Context, types.HandshakeRequest) (types.DeviceInfo, error)
	SignCardanoFn func(context.Context, *cardano.SignRequest) (*cardano.Signature, error)
	SignBitcoinFn func(context.Context, *btc.SignRequest) (*btc.Signature, error)
	SignStellarFn func(context.Context, *stellar.SignRequest) (*stellar.Signature, error)

	// Call counters (atomic for concurrent access).
	HandshakeCalls   atomic.Int64
	SignCardanoCalls atomic.Int64
	SignBitcoinCalls atomic.Int64
	SignStellarCalls atomic.Int64
}

// NewMockDevice returns a mock declaring caps.
func NewMockDevice(caps types.Capabilities) *MockDevice {
	return &MockDevice{DeclaredCapabilities: caps}
}

func (m *MockDevice) Handshake(ctx context.Context, req types.HandshakeRequest) (types.DeviceInfo, error) {
	m.HandshakeCalls.Add(1)
	if m.HandshakeFn != nil {
		return m.HandshakeFn(ctx, req)
	}
	return types.DeviceInfo{
		MasterFingerprint: MockFingerprint,
		Model:             "mock",
		Capabilities:      m.DeclaredCapabilities,
	}, nil
}

func (m *MockDevice) SignCardano(ctx context.Context, req *cardano.SignRequest) (*cardano.Signature, error) {
	m.SignCardanoCalls.Add(1)
	if m.SignCardanoFn != nil {
		return m.SignCardanoFn(ctx, req)
	}
	return cardano.NewSignature(PlaceholderSignature(req.SignData()), req.RequestID())
}

func (m *MockDevice) SignBitcoin(ctx context.Context, req *btc.SignRequest) (*btc.Signature, error) {
	m.SignBitcoinCalls.Add(1)
	if m.SignBitcoinFn != nil {
		return m.SignBitcoinFn(ctx, req)
	}
	return btc.NewSignature(PlaceholderSignature(req.SignData()), PlaceholderPublicKey(), req.RequestID())
}

func (m *MockDevice) SignStellar(ctx context.Context, req *stellar.SignRequest) (*stellar.Signature, error) {
	m.SignStellarCalls.Add(1)
	if m.SignStellarFn != nil {
		return m.SignStellarFn(ctx, req)
	}
	return stellar.NewSignature(PlaceholderSignature(req.SignData()), req.RequestID())
}

// PlaceholderSignature returns a deterministic stand-in for a signature
// over data. It is not a signature.
func PlaceholderSignature(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// PlaceholderPublicKey returns a fixed 33-byte compressed-key-shaped
// value.
func PlaceholderPublicKey() []byte {
	pub := make([]byte, btc.PublicKeySize)
	pub[0] = 0x02
	sum := sha256.Sum256([]byte("urtest"))
	copy(pub[1:], sum[:])
	return pub
}
