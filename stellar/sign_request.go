package stellar

import (
	"bytes"

	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/keypath"
	"github.com/blockberries/urregistry/registry"
)

const (
	keyRequestID uint64 = iota + 1
	keySignData
	keyDerivationPath
	keyAddress
	keyOrigin
	keySignType
)

type SignRequest struct {
	requestID      []byte
	signData       []byte
	derivationPath *keypath.Keypath
	address        []byte
	signType       SignType
	origin         string
	hasOrigin      bool
}

// NewSignRequest builds a sign request. A nil address leaves the
// address absent.
func NewSignRequest(signData []byte, signType SignType, path *keypath.Keypath, address []byte, opts ...registry.RequestOption) (*SignRequest, error) {
	o, err := registry.ApplyRequestOptions(SignRequestType.Name, opts)
	if err != nil {
		return nil, err
	}
	if path == nil {
		return nil, registry.MissingField(SignRequestType.Name, "derivationPath", keyDerivationPath)
	}
	return &SignRequest{
		requestID:      o.RequestID,
		signData:       bytes.Clone(signData),
		derivationPath: path,
		address:        registry.CloneBytes(address),
		signType:       signType,
		origin:         o.Origin,
		hasOrigin:      o.HasOrigin,
	}, nil
}

// ConstructSignRequest builds a sign request from a textual path and
// fingerprint. Empty strings leave the identifier and origin absent.
func ConstructSignRequest(signData []byte, signType SignType, hdPath, xfp, uuidString, origin string) (*SignRequest, error) {
	path, err := keypath.FromPath(hdPath, xfp)
	if err != nil {
		return nil, err
	}
	opts, err := registry.FriendlyRequestOptions(uuidString, origin)
	if err != nil {
		return nil, err
	}
	return NewSignRequest(signData, signType, path, nil, opts...)
}

func (r *SignRequest) RegistryType() registry.RegistryType { return SignRequestType }

func (r *SignRequest) RequestID() []byte { return registry.CloneBytes(r.requestID) }
func (r *SignRequest) SignData() []byte  { return bytes.Clone(r.signData) }
func (r *SignRequest) SignType() SignType {
	return r.signType
}
func (r *SignRequest) DerivationPath() *keypath.Keypath { return r.derivationPath }

// Address returns the account address bytes, or nil when absent.
func (r *SignRequest) Address() []byte        { return registry.CloneBytes(r.address) }
func (r *SignRequest) Origin() (string, bool) { return r.origin, r.hasOrigin }

func (r *SignRequest) Equal(o *SignRequest) bool {
	if r == nil || o == nil {
		return r == o
	}
	return registry.SameRequestID(r.requestID, o.requestID) &&
		bytes.Equal(r.signData, o.signData) &&
		r.derivationPath.Equal(o.derivationPath) &&
		(r.address == nil) == (o.address == nil) && bytes.Equal(r.address, o.address) &&
		r.signType == o.signType &&
		r.hasOrigin == o.hasOrigin && r.origin == o.origin
}

func (r *SignRequest) ToDataItem() item.Item {
	m := item.NewMap()
	if r.requestID != nil {
		m.Set(keyRequestID, registry.RequestIDItem(r.requestID))
	}
	m.Set(keySignData, item.Bytes(r.signData))
	m.Set(keyDerivationPath, registry.Embed(r.derivationPath))
	if r.address != nil {
		m.Set(keyAddress, item.Bytes(r.address))
	}
	if r.hasOrigin {
		m.Set(keyOrigin, item.Text(r.origin))
	}
	m.Set(keySignType, item.Uint(uint64(r.signType)))
	return item.FromMap(m)
}

// SignRequestFromDataItem decodes a sign request map.
func SignRequestFromDataItem(it item.Item, opts ...registry.DecodeOption) (*SignRequest, error) {
	f, err := registry.ReadFields(it, SignRequestType, opts...)
	if err != nil {
		return nil, err
	}
	r := &SignRequest{}
	if r.requestID, err = f.RequestID(keyRequestID); err != nil {
		return nil, err
	}
	if r.signData, err = f.Bytes(keySignData, "signData"); err != nil {
		return nil, err
	}
	path, err := f.Entity(keyDerivationPath, "derivationPath", registry.CryptoKeypath)
	if err != nil {
		return nil, err
	}
	if r.derivationPath, err = keypath.FromDataItem(path, f.Options()...); err != nil {
		return nil, err
	}
	if r.address, _, err = f.OptionalBytes(keyAddress, "address"); err != nil {
		return nil, err
	}
	if r.origin, r.hasOrigin, err = f.OptionalText(keyOrigin, "origin"); err != nil {
		return nil, err
	}
	signType, err := f.Uint(keySignType, "signType", 1<<32-1)
	if err != nil {
		return nil, err
	}
	r.signType = SignType(signType)
	return r, nil
}

// SignRequestFromCBOR decodes a sign request from CBOR bytes.
func SignRequestFromCBOR(data []byte, opts ...registry.DecodeOption) (*SignRequest, error) {
	it, err := item.Decode(data)
	if err != nil {
		return nil, err
	}
	return SignRequestFromDataItem(it, opts...)
}

func (r *SignRequest) ToCBOR() ([]byte, error) { return registry.ToCBOR(r) }
