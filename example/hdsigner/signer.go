// Package hdsigner implements a software signer backed by a BIP32
// master key. It demonstrates a Device that supports every chain and
// checks that requests target keys it actually holds.
//
// The "signatures" it returns are SHA-256 digests of the derived public
// key and the sign data. They stand in for real signatures so the
// request/response flow can be exercised end to end.
package hdsigner

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/btc"
	"github.com/blockberries/urregistry/cardano"
	"github.com/blockberries/urregistry/keypath"
	"github.com/blockberries/urregistry/registry"
	"github.com/blockberries/urregistry/stellar"
	"github.com/blockberries/urregistry/types"
)

// Compile-time interface check.
var _ urregistry.Signer = (*Signer)(nil)

// ErrForeignKey is returned when a request names a key path rooted at
// another master fingerprint.
var ErrForeignKey = errors.New("hdsigner: key path belongs to another device")

// Entry records one signed request.
type Entry struct {
	Type      string
	RequestID string
}

// Signer derives keys from one master key.
type Signer struct {
	master      *hdkeychain.ExtendedKey
	fingerprint types.Fingerprint
	caps        types.Capabilities

	mu      sync.Mutex
	journal []Entry
}

// New creates a signer from a BIP32 seed, declaring caps.
func New(seed []byte, caps types.Capabilities) (*Signer, error) {
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, fmt.Errorf("hdsigner: master key: %w", err)
	}
	pub, err := master.ECPubKey()
	if err != nil {
		return nil, fmt.Errorf("hdsigner: master public key: %w", err)
	}
	fp := binary.BigEndian.Uint32(btcutil.Hash160(pub.SerializeCompressed())[:4])
	return &Signer{master: master, fingerprint: types.Fingerprint(fp), caps: caps}, nil
}

// Fingerprint returns the master key fingerprint.
func (s *Signer) Fingerprint() types.Fingerprint { return s.fingerprint }

func (s *Signer) Handshake(_ context.Context, _ types.HandshakeRequest) (types.DeviceInfo, error) {
	return types.DeviceInfo{
		MasterFingerprint: s.fingerprint,
		Model:             "hdsigner",
		Firmware:          "0.1.0",
		Capabilities:      s.caps,
	}, nil
}

func (s *Signer) SignCardano(_ context.Context, req *cardano.SignRequest) (*cardano.Signature, error) {
	var paths []*keypath.Keypath
	for _, u := range req.Utxos() {
		paths = append(paths, u.KeyPath())
	}
	for _, k := range req.ExtraSigners() {
		paths = append(paths, k.KeyPath())
	}
	if err := s.owns(paths...); err != nil {
		return nil, err
	}
	s.record(req, req.RequestID())
	return cardano.NewSignature(digest(nil, req.SignData()), req.RequestID())
}

func (s *Signer) SignBitcoin(_ context.Context, req *btc.SignRequest) (*btc.Signature, error) {
	paths := req.DerivationPaths()
	if len(paths) == 0 {
		return nil, fmt.Errorf("hdsigner: %s names no derivation path", btc.SignRequestType.Name)
	}
	if err := s.owns(paths...); err != nil {
		return nil, err
	}
	pub, err := s.publicKey(paths[0])
	if err != nil {
		return nil, err
	}
	s.record(req, req.RequestID())
	return btc.NewSignature(digest(pub, req.SignData()), pub, req.RequestID())
}

func (s *Signer) SignStellar(_ context.Context, req *stellar.SignRequest) (*stellar.Signature, error) {
	if err := s.owns(req.DerivationPath()); err != nil {
		return nil, err
	}
	pub, err := s.publicKey(req.DerivationPath())
	if err != nil {
		return nil, err
	}
	s.record(req, req.RequestID())
	return stellar.NewSignature(digest(pub, req.SignData()), req.RequestID())
}

// Journal returns the requests signed so far, oldest first.
func (s *Signer) Journal() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.journal))
	copy(out, s.journal)
	return out
}

func (s *Signer) record(ri registry.RegistryItem, requestID []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = append(s.journal, Entry{
		Type:      ri.RegistryType().Name,
		RequestID: registry.FormatRequestID(requestID),
	})
}

// owns rejects paths whose source fingerprint names another master key.
// Paths without a fingerprint are accepted.
func (s *Signer) owns(paths ...*keypath.Keypath) error {
	for _, p := range paths {
		if fp, ok := p.SourceFingerprint(); ok && types.Fingerprint(fp) != s.fingerprint {
			return fmt.Errorf("%w: %s from %08x", ErrForeignKey, p, fp)
		}
	}
	return nil
}

// publicKey derives the compressed public key at p.
func (s *Signer) publicKey(p *keypath.Keypath) ([]byte, error) {
	key := s.master
	for _, c := range p.Components() {
		if c.Wildcard {
			return nil, fmt.Errorf("hdsigner: cannot derive wildcard path %s", p)
		}
		idx := c.Index
		if c.Hardened {
			idx += hdkeychain.HardenedKeyStart
		}
		var err error
		if key, err = key.Derive(idx); err != nil {
			return nil, fmt.Errorf("hdsigner: derive %s: %w", p, err)
		}
	}
	pub, err := key.ECPubKey()
	if err != nil {
		return nil, err
	}
	return pub.SerializeCompressed(), nil
}

func digest(pub, data []byte) []byte {
	h := sha256.New()
	h.Write(pub)
	h.Write(data)
	return h.Sum(nil)
}
