package stellar

import (
	"bytes"

	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/registry"
)

type Signature struct {
	requestID []byte
	signature []byte
}

// NewSignature builds a signature. A nil requestID leaves the
// identifier absent.
func NewSignature(signature, requestID []byte) (*Signature, error) {
	if err := registry.CheckRequestID(SignatureType.Name, requestID); err != nil {
		return nil, err
	}
	return &Signature{requestID: registry.CloneBytes(requestID), signature: bytes.Clone(signature)}, nil
}

func (s *Signature) RegistryType() registry.RegistryType { return SignatureType }

func (s *Signature) RequestID() []byte { return registry.CloneBytes(s.requestID) }
func (s *Signature) Signature() []byte { return bytes.Clone(s.signature) }

func (s *Signature) Equal(o *Signature) bool {
	if s == nil || o == nil {
		return s == o
	}
	return registry.SameRequestID(s.requestID, o.requestID) && bytes.Equal(s.signature, o.signature)
}

func (s *Signature) ToDataItem() item.Item {
	return item.FromMap(registry.SignatureMap(s.requestID, s.signature))
}

func SignatureFromDataItem(it item.Item, opts ...registry.DecodeOption) (*Signature, error) {
	f, err := registry.ReadFields(it, SignatureType, opts...)
	if err != nil {
		return nil, err
	}
	requestID, sig, err := registry.ReadSignature(f)
	if err != nil {
		return nil, err
	}
	return &Signature{requestID: requestID, signature: sig}, nil
}

func SignatureFromCBOR(data []byte, opts ...registry.DecodeOption) (*Signature, error) {
	it, err := item.Decode(data)
	if err != nil {
		return nil, err
	}
	return SignatureFromDataItem(it, opts...)
}

func (s *Signature) ToCBOR() ([]byte, error) { return registry.ToCBOR(s) }
