package btc

import (
	"bytes"
	"slices"

	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/keypath"
	"github.com/blockberries/urregistry/registry"
)

const (
	keyRequestID uint64 = iota + 1
	keySignData
	keyDataType
	keyDerivationPaths
	keyAddresses
	keyOrigin
)

// SignRequest asks the signer to sign a message with the keys at the
// given derivation paths.
type SignRequest struct {
	requestID       []byte
	signData        []byte
	dataType        DataType
	derivationPaths []*keypath.Keypath
	addresses       []string
	hasAddresses    bool
	origin          string
	hasOrigin       bool
}

// SignRequestOption sets an optional field specific to Bitcoin requests.
type SignRequestOption func(*SignRequest)

// WithAddresses lists the addresses the derivation paths resolve to.
func WithAddresses(addresses ...string) SignRequestOption {
	return func(r *SignRequest) {
		r.addresses = slices.Clone(addresses)
		r.hasAddresses = true
	}
}

// NewSignRequest builds a sign request from canonical values.
func NewSignRequest(signData []byte, dataType DataType, paths []*keypath.Keypath, opts []registry.RequestOption, extra ...SignRequestOption) (*SignRequest, error) {
	o, err := registry.ApplyRequestOptions(SignRequestType.Name, opts)
	if err != nil {
		return nil, err
	}
	if slices.Contains(paths, nil) {
		return nil, registry.MalformedField(SignRequestType.Name, "derivationPaths", keyDerivationPaths, "nil element")
	}
	r := &SignRequest{
		requestID:       o.RequestID,
		signData:        bytes.Clone(signData),
		dataType:        dataType,
		derivationPaths: slices.Clone(paths),
		origin:          o.Origin,
		hasOrigin:       o.HasOrigin,
	}
	for _, e := range extra {
		e(r)
	}
	return r, nil
}

// ConstructSignRequest builds a message signing request from textual
// derivation paths sharing one master fingerprint. Empty strings and a
// nil address list leave the optional fields absent.
func ConstructSignRequest(signData []byte, dataType DataType, hdPaths []string, xfp string, uuidString string, addresses []string, origin string) (*SignRequest, error) {
	paths := make([]*keypath.Keypath, len(hdPaths))
	for i, p := range hdPaths {
		kp, err := keypath.FromPath(p, xfp)
		if err != nil {
			return nil, err
		}
		paths[i] = kp
	}
	opts, err := registry.FriendlyRequestOptions(uuidString, origin)
	if err != nil {
		return nil, err
	}
	var extra []SignRequestOption
	if addresses != nil {
		extra = append(extra, WithAddresses(addresses...))
	}
	return NewSignRequest(signData, dataType, paths, opts, extra...)
}

func (r *SignRequest) RegistryType() registry.RegistryType { return SignRequestType }

func (r *SignRequest) RequestID() []byte                   { return registry.CloneBytes(r.requestID) }
func (r *SignRequest) SignData() []byte                    { return bytes.Clone(r.signData) }
func (r *SignRequest) DataType() DataType                  { return r.dataType }
func (r *SignRequest) DerivationPaths() []*keypath.Keypath { return slices.Clone(r.derivationPaths) }
func (r *SignRequest) Addresses() ([]string, bool)         { return slices.Clone(r.addresses), r.hasAddresses }
func (r *SignRequest) Origin() (string, bool)              { return r.origin, r.hasOrigin }

func (r *SignRequest) Equal(o *SignRequest) bool {
	if r == nil || o == nil {
		return r == o
	}
	return registry.SameRequestID(r.requestID, o.requestID) &&
		bytes.Equal(r.signData, o.signData) &&
		r.dataType == o.dataType &&
		slices.EqualFunc(r.derivationPaths, o.derivationPaths, (*keypath.Keypath).Equal) &&
		r.hasAddresses == o.hasAddresses && slices.Equal(r.addresses, o.addresses) &&
		r.hasOrigin == o.hasOrigin && r.origin == o.origin
}

func (r *SignRequest) ToDataItem() item.Item {
	m := item.NewMap()
	if r.requestID != nil {
		m.Set(keyRequestID, registry.RequestIDItem(r.requestID))
	}
	m.Set(keySignData, item.Bytes(r.signData))
	m.Set(keyDataType, item.Uint(uint64(r.dataType)))
	m.Set(keyDerivationPaths, registry.EmbedAll(r.derivationPaths))
	if r.hasAddresses {
		addrs := make([]item.Item, len(r.addresses))
		for i, a := range r.addresses {
			addrs[i] = item.Text(a)
		}
		m.Set(keyAddresses, item.Array(addrs...))
	}
	if r.hasOrigin {
		m.Set(keyOrigin, item.Text(r.origin))
	}
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
	dataType, err := f.Uint(keyDataType, "dataType", 1<<32-1)
	if err != nil {
		return nil, err
	}
	r.dataType = DataType(dataType)
	if r.derivationPaths, err = registry.DecodeEntities(f, keyDerivationPaths, "derivationPaths", registry.CryptoKeypath, keypath.FromDataItem); err != nil {
		return nil, err
	}
	if r.addresses, r.hasAddresses, err = f.OptionalTexts(keyAddresses, "addresses"); err != nil {
		return nil, err
	}
	if r.origin, r.hasOrigin, err = f.OptionalText(keyOrigin, "origin"); err != nil {
		return nil, err
	}
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
