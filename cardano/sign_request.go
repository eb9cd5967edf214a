package cardano

import (
	"bytes"
	"slices"

	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/registry"
)

const (
	signRequestKeyRequestID uint64 = iota + 1
	signRequestKeySignData
	signRequestKeyUtxos
	signRequestKeyExtraSigners
	signRequestKeyOrigin
)

// SignRequest asks the signer to witness a Cardano transaction body.
//
// Utxos tell the signer which of its keys own the inputs; ExtraSigners
// list further keys the transaction requires. Both collections are
// always encoded, empty or not.
type SignRequest struct {
	requestID    []byte
	signData     []byte
	utxos        []*Utxo
	extraSigners []*CertKey
	origin       string
	hasOrigin    bool
}

// NewSignRequest builds a sign request from canonical values.
func NewSignRequest(signData []byte, utxos []*Utxo, extraSigners []*CertKey, opts ...registry.RequestOption) (*SignRequest, error) {
	o, err := registry.ApplyRequestOptions(SignRequestType.Name, opts)
	if err != nil {
		return nil, err
	}
	if slices.Contains(utxos, nil) {
		return nil, registry.MalformedField(SignRequestType.Name, "utxos", signRequestKeyUtxos, "nil element")
	}
	if slices.Contains(extraSigners, nil) {
		return nil, registry.MalformedField(SignRequestType.Name, "extraSigners", signRequestKeyExtraSigners, "nil element")
	}
	return &SignRequest{
		requestID:    o.RequestID,
		signData:     bytes.Clone(signData),
		utxos:        slices.Clone(utxos),
		extraSigners: slices.Clone(extraSigners),
		origin:       o.Origin,
		hasOrigin:    o.HasOrigin,
	}, nil
}

// ConstructSignRequest builds a sign request from raw transaction bytes,
// loosely-typed nested inputs, a textual UUID and an origin. Empty
// strings leave the identifier and origin absent.
func ConstructSignRequest(signData []byte, utxos []UtxoData, extraSigners []CertKeyData, uuidString, origin string) (*SignRequest, error) {
	us := make([]*Utxo, len(utxos))
	for i, d := range utxos {
		u, err := ConstructUtxo(d)
		if err != nil {
			return nil, err
		}
		us[i] = u
	}
	ks := make([]*CertKey, len(extraSigners))
	for i, d := range extraSigners {
		k, err := ConstructCertKey(d)
		if err != nil {
			return nil, err
		}
		ks[i] = k
	}
	opts, err := registry.FriendlyRequestOptions(uuidString, origin)
	if err != nil {
		return nil, err
	}
	return NewSignRequest(signData, us, ks, opts...)
}

func (r *SignRequest) RegistryType() registry.RegistryType { return SignRequestType }

// RequestID returns the identifier, or nil when absent.
func (r *SignRequest) RequestID() []byte        { return registry.CloneBytes(r.requestID) }
func (r *SignRequest) SignData() []byte         { return bytes.Clone(r.signData) }
func (r *SignRequest) Utxos() []*Utxo           { return slices.Clone(r.utxos) }
func (r *SignRequest) ExtraSigners() []*CertKey { return slices.Clone(r.extraSigners) }
func (r *SignRequest) Origin() (string, bool)   { return r.origin, r.hasOrigin }

// Equal reports whether two sign requests carry the same fields.
func (r *SignRequest) Equal(o *SignRequest) bool {
	if r == nil || o == nil {
		return r == o
	}
	return registry.SameRequestID(r.requestID, o.requestID) &&
		bytes.Equal(r.signData, o.signData) &&
		slices.EqualFunc(r.utxos, o.utxos, (*Utxo).Equal) &&
		slices.EqualFunc(r.extraSigners, o.extraSigners, (*CertKey).Equal) &&
		r.hasOrigin == o.hasOrigin && r.origin == o.origin
}

func (r *SignRequest) ToDataItem() item.Item {
	m := item.NewMap()
	if r.requestID != nil {
		m.Set(signRequestKeyRequestID, registry.RequestIDItem(r.requestID))
	}
	m.Set(signRequestKeySignData, item.Bytes(r.signData))
	m.Set(signRequestKeyUtxos, registry.EmbedAll(r.utxos))
	m.Set(signRequestKeyExtraSigners, registry.EmbedAll(r.extraSigners))
	if r.hasOrigin {
		m.Set(signRequestKeyOrigin, item.Text(r.origin))
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
	if r.requestID, err = f.RequestID(signRequestKeyRequestID); err != nil {
		return nil, err
	}
	if r.signData, err = f.Bytes(signRequestKeySignData, "signData"); err != nil {
		return nil, err
	}
	if r.utxos, err = registry.DecodeEntities(f, signRequestKeyUtxos, "utxos", UtxoType, UtxoFromDataItem); err != nil {
		return nil, err
	}
	if r.extraSigners, err = registry.DecodeEntities(f, signRequestKeyExtraSigners, "extraSigners", CertKeyType, CertKeyFromDataItem); err != nil {
		return nil, err
	}
	if r.origin, r.hasOrigin, err = f.OptionalText(signRequestKeyOrigin, "origin"); err != nil {
		return nil, err
	}
	return r, nil
}

// SignRequestFromCBOR decodes a sign request from CBOR bytes. Errors
// from the CBOR decoder are returned unchanged.
func SignRequestFromCBOR(data []byte, opts ...registry.DecodeOption) (*SignRequest, error) {
	it, err := item.Decode(data)
	if err != nil {
		return nil, err
	}
	return SignRequestFromDataItem(it, opts...)
}

// ToCBOR encodes the sign request as CBOR bytes.
func (r *SignRequest) ToCBOR() ([]byte, error) { return registry.ToCBOR(r) }
