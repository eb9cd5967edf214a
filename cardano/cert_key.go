package cardano

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/keypath"
	"github.com/blockberries/urregistry/registry"
)

const (
	certKeyKeyHash uint64 = iota + 1
	certKeyKeyPath
)

// CertKey identifies an additional signer required by a transaction,
// such as a stake key for a certificate or a native script witness.
type CertKey struct {
	keyHash []byte
	keyPath *keypath.Keypath
}

// CertKeyData is the loosely-typed form accepted by ConstructCertKey.
type CertKeyData struct {
	KeyHash string // hex
	XFP     string // hex master fingerprint
	KeyPath string
}

// NewCertKey builds a CertKey from canonical values.
func NewCertKey(keyHash []byte, keyPath *keypath.Keypath) (*CertKey, error) {
	if len(keyHash) != KeyHashSize {
		return nil, registry.MalformedField(CertKeyType.Name, "keyHash", certKeyKeyHash,
			"got %d bytes, want %d", len(keyHash), KeyHashSize)
	}
	if keyPath == nil {
		return nil, registry.MissingField(CertKeyType.Name, "keyPath", certKeyKeyPath)
	}
	return &CertKey{keyHash: bytes.Clone(keyHash), keyPath: keyPath}, nil
}

// ConstructCertKey converts hex and path text into a CertKey.
func ConstructCertKey(d CertKeyData) (*CertKey, error) {
	keyHash, err := hex.DecodeString(d.KeyHash)
	if err != nil {
		return nil, fmt.Errorf("cardano: cert key hash: %w", err)
	}
	kp, err := keypath.FromPath(d.KeyPath, d.XFP)
	if err != nil {
		return nil, err
	}
	return NewCertKey(keyHash, kp)
}

func (k *CertKey) RegistryType() registry.RegistryType { return CertKeyType }

func (k *CertKey) KeyHash() []byte           { return bytes.Clone(k.keyHash) }
func (k *CertKey) KeyPath() *keypath.Keypath { return k.keyPath }

// Equal reports whether two cert keys are the same.
func (k *CertKey) Equal(o *CertKey) bool {
	if k == nil || o == nil {
		return k == o
	}
	return bytes.Equal(k.keyHash, o.keyHash) && k.keyPath.Equal(o.keyPath)
}

func (k *CertKey) ToDataItem() item.Item {
	m := item.NewMap()
	m.Set(certKeyKeyHash, item.Bytes(k.keyHash))
	m.Set(certKeyKeyPath, registry.Embed(k.keyPath))
	return item.FromMap(m)
}

// CertKeyFromDataItem decodes a CertKey map.
func CertKeyFromDataItem(it item.Item, opts ...registry.DecodeOption) (*CertKey, error) {
	f, err := registry.ReadFields(it, CertKeyType, opts...)
	if err != nil {
		return nil, err
	}
	keyHash, err := f.FixedBytes(certKeyKeyHash, "keyHash", KeyHashSize)
	if err != nil {
		return nil, err
	}
	kp, err := f.Entity(certKeyKeyPath, "keyPath", registry.CryptoKeypath)
	if err != nil {
		return nil, err
	}
	path, err := keypath.FromDataItem(kp, f.Options()...)
	if err != nil {
		return nil, err
	}
	return &CertKey{keyHash: keyHash, keyPath: path}, nil
}

// CertKeyFromCBOR decodes a CertKey from CBOR bytes.
func CertKeyFromCBOR(data []byte, opts ...registry.DecodeOption) (*CertKey, error) {
	it, err := item.Decode(data)
	if err != nil {
		return nil, err
	}
	return CertKeyFromDataItem(it, opts...)
}

// ToCBOR encodes the CertKey as CBOR bytes.
func (k *CertKey) ToCBOR() ([]byte, error) { return registry.ToCBOR(k) }
