// Package urregistry is the record registry shared by a host
// application and an air-gapped signer.
//
// The schema packages (cardano, btc, stellar, keypath) describe the
// records; this package assembles them into one tag catalog and defines
// the signer-side interfaces. The core [Device] interface is required.
// The per-chain signer interfaces are optional capabilities discovered
// via Go type assertion at handshake time.
package urregistry

import (
	"context"

	"github.com/blockberries/urregistry/btc"
	"github.com/blockberries/urregistry/cardano"
	"github.com/blockberries/urregistry/stellar"
	"github.com/blockberries/urregistry/types"
)

// Device is the core interface every signer must implement.
//
// The host guarantees the following call order:
//  1. Handshake is called exactly once per session, before anything else.
//  2. Sign requests are delivered one at a time after Handshake.
type Device interface {
	// Handshake introduces the host and returns the signer's identity
	// and the chains it declares support for.
	Handshake(ctx context.Context, req types.HandshakeRequest) (types.DeviceInfo, error)
}

// CardanoSigner signs Cardano transactions. The returned signature
// carries the witness set and must echo the request identifier.
//
// Declared via: types.CapCardano in DeviceInfo.Capabilities
type CardanoSigner interface {
	SignCardano(ctx context.Context, req *cardano.SignRequest) (*cardano.Signature, error)
}

// BitcoinSigner signs Bitcoin messages.
//
// Declared via: types.CapBitcoin in DeviceInfo.Capabilities
type BitcoinSigner interface {
	SignBitcoin(ctx context.Context, req *btc.SignRequest) (*btc.Signature, error)
}

// StellarSigner signs Stellar transactions or transaction hashes.
//
// Declared via: types.CapStellar in DeviceInfo.Capabilities
type StellarSigner interface {
	SignStellar(ctx context.Context, req *stellar.SignRequest) (*stellar.Signature, error)
}

// Signer is a convenience interface for devices that support every
// chain.
type Signer interface {
	Device
	CardanoSigner
	BitcoinSigner
	StellarSigner
}

// Connection represents a transport-agnostic connection to a signer.
// Both gRPC clients and in-process adapters implement this. Records
// cross it as envelopes; use the package-level Sign helpers for typed
// access.
type Connection interface {
	Handshake(ctx context.Context, req types.HandshakeRequest) (types.DeviceInfo, error)

	// Sign delivers one encoded sign request and returns the encoded
	// signature.
	Sign(ctx context.Context, req types.Envelope) (types.Envelope, error)

	// Capabilities returns the capabilities discovered at handshake.
	// Must only be called after Handshake completes.
	Capabilities() types.Capabilities

	// Close terminates the connection.
	Close() error
}
