package btc

import (
	"bytes"

	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/registry"
)

const keyPublicKey uint64 = 3

// Signature is a message signature together with the public key that
// produced it.
type Signature struct {
	requestID []byte
	signature []byte
	publicKey []byte
}

// NewSignature builds a signature. A nil requestID leaves the
// identifier absent.
func NewSignature(signature, publicKey, requestID []byte) (*Signature, error) {
	if err := registry.CheckRequestID(SignatureType.Name, requestID); err != nil {
		return nil, err
	}
	if len(publicKey) != PublicKeySize {
		return nil, registry.MalformedField(SignatureType.Name, "publicKey", keyPublicKey,
			"got %d bytes, want %d", len(publicKey), PublicKeySize)
	}
	return &Signature{
		requestID: registry.CloneBytes(requestID),
		signature: bytes.Clone(signature),
		publicKey: bytes.Clone(publicKey),
	}, nil
}

func (s *Signature) RegistryType() registry.RegistryType { return SignatureType }

func (s *Signature) RequestID() []byte { return registry.CloneBytes(s.requestID) }
func (s *Signature) Signature() []byte { return bytes.Clone(s.signature) }
func (s *Signature) PublicKey() []byte { return bytes.Clone(s.publicKey) }

func (s *Signature) Equal(o *Signature) bool {
	if s == nil || o == nil {
		return s == o
	}
	return registry.SameRequestID(s.requestID, o.requestID) &&
		bytes.Equal(s.signature, o.signature) &&
		bytes.Equal(s.publicKey, o.publicKey)
}

func (s *Signature) ToDataItem() item.Item {
	m := registry.SignatureMap(s.requestID, s.signature)
	m.Set(keyPublicKey, item.Bytes(s.publicKey))
	return item.FromMap(m)
}

// SignatureFromDataItem decodes a signature map.
func SignatureFromDataItem(it item.Item, opts ...registry.DecodeOption) (*Signature, error) {
	f, err := registry.ReadFields(it, SignatureType, opts...)
	if err != nil {
		return nil, err
	}
	requestID, sig, err := registry.ReadSignature(f)
	if err != nil {
		return nil, err
	}
	pub, err := f.FixedBytes(keyPublicKey, "publicKey", PublicKeySize)
	if err != nil {
		return nil, err
	}
	return &Signature{requestID: requestID, signature: sig, publicKey: pub}, nil
}

// SignatureFromCBOR decodes a signature from CBOR bytes.
func SignatureFromCBOR(data []byte, opts ...registry.DecodeOption) (*Signature, error) {
	it, err := item.Decode(data)
	if err != nil {
		return nil, err
	}
	return SignatureFromDataItem(it, opts...)
}

func (s *Signature) ToCBOR() ([]byte, error) { return registry.ToCBOR(s) }
