package cardano

import (
	"bytes"

	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/registry"
)

// CatalystSignature is the signature over a Catalyst voting key
// registration.
type CatalystSignature struct {
	requestID []byte
	signature []byte
}

// NewCatalystSignature builds a Catalyst signature. A nil requestID
// leaves the identifier absent.
func NewCatalystSignature(signature, requestID []byte) (*CatalystSignature, error) {
	if err := registry.CheckRequestID(CatalystSignatureType.Name, requestID); err != nil {
		return nil, err
	}
	return &CatalystSignature{requestID: registry.CloneBytes(requestID), signature: bytes.Clone(signature)}, nil
}

func (s *CatalystSignature) RegistryType() registry.RegistryType { return CatalystSignatureType }

func (s *CatalystSignature) RequestID() []byte { return registry.CloneBytes(s.requestID) }
func (s *CatalystSignature) Signature() []byte { return bytes.Clone(s.signature) }

func (s *CatalystSignature) Equal(o *CatalystSignature) bool {
	if s == nil || o == nil {
		return s == o
	}
	return registry.SameRequestID(s.requestID, o.requestID) && bytes.Equal(s.signature, o.signature)
}

func (s *CatalystSignature) ToDataItem() item.Item {
	return item.FromMap(registry.SignatureMap(s.requestID, s.signature))
}

// CatalystSignatureFromDataItem decodes a Catalyst signature map.
func CatalystSignatureFromDataItem(it item.Item, opts ...registry.DecodeOption) (*CatalystSignature, error) {
	f, err := registry.ReadFields(it, CatalystSignatureType, opts...)
	if err != nil {
		return nil, err
	}
	requestID, sig, err := registry.ReadSignature(f)
	if err != nil {
		return nil, err
	}
	return &CatalystSignature{requestID: requestID, signature: sig}, nil
}

// CatalystSignatureFromCBOR decodes a Catalyst signature from CBOR bytes.
func CatalystSignatureFromCBOR(data []byte, opts ...registry.DecodeOption) (*CatalystSignature, error) {
	it, err := item.Decode(data)
	if err != nil {
		return nil, err
	}
	return CatalystSignatureFromDataItem(it, opts...)
}

func (s *CatalystSignature) ToCBOR() ([]byte, error) { return registry.ToCBOR(s) }
