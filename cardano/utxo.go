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
	utxoKeyTransactionHash uint64 = iota + 1
	utxoKeyIndex
	utxoKeyAmount
	utxoKeyKeyPath
	utxoKeyAddress
)

// Utxo describes one transaction input the signer must find a key for.
type Utxo struct {
	transactionHash []byte
	index           uint32
	amount          string
	keyPath         *keypath.Keypath
	address         string
}

// UtxoData is the loosely-typed form accepted by ConstructUtxo.
type UtxoData struct {
	TransactionHash string // hex
	Index           uint32
	Amount          string // lovelace
	XFP             string // hex master fingerprint
	HDPath          string
	Address         string
}

// NewUtxo builds a Utxo from canonical values.
func NewUtxo(transactionHash []byte, index uint32, amount string, keyPath *keypath.Keypath, address string) (*Utxo, error) {
	if len(transactionHash) != TransactionHashSize {
		return nil, registry.MalformedField(UtxoType.Name, "transactionHash", utxoKeyTransactionHash,
			"got %d bytes, want %d", len(transactionHash), TransactionHashSize)
	}
	if keyPath == nil {
		return nil, registry.MissingField(UtxoType.Name, "keyPath", utxoKeyKeyPath)
	}
	return &Utxo{
		transactionHash: bytes.Clone(transactionHash),
		index:           index,
		amount:          amount,
		keyPath:         keyPath,
		address:         address,
	}, nil
}

// ConstructUtxo converts hex and path text into a Utxo.
func ConstructUtxo(d UtxoData) (*Utxo, error) {
	txHash, err := hex.DecodeString(d.TransactionHash)
	if err != nil {
		return nil, fmt.Errorf("cardano: utxo transaction hash: %w", err)
	}
	kp, err := keypath.FromPath(d.HDPath, d.XFP)
	if err != nil {
		return nil, err
	}
	return NewUtxo(txHash, d.Index, d.Amount, kp, d.Address)
}

func (u *Utxo) RegistryType() registry.RegistryType { return UtxoType }

func (u *Utxo) TransactionHash() []byte   { return bytes.Clone(u.transactionHash) }
func (u *Utxo) Index() uint32             { return u.index }
func (u *Utxo) Amount() string            { return u.amount }
func (u *Utxo) KeyPath() *keypath.Keypath { return u.keyPath }
func (u *Utxo) Address() string           { return u.address }

// Equal reports whether two UTXOs are the same.
func (u *Utxo) Equal(o *Utxo) bool {
	if u == nil || o == nil {
		return u == o
	}
	return bytes.Equal(u.transactionHash, o.transactionHash) &&
		u.index == o.index &&
		u.amount == o.amount &&
		u.keyPath.Equal(o.keyPath) &&
		u.address == o.address
}

func (u *Utxo) ToDataItem() item.Item {
	m := item.NewMap()
	m.Set(utxoKeyTransactionHash, item.Bytes(u.transactionHash))
	m.Set(utxoKeyIndex, item.Uint(uint64(u.index)))
	m.Set(utxoKeyAmount, item.Text(u.amount))
	m.Set(utxoKeyKeyPath, registry.Embed(u.keyPath))
	m.Set(utxoKeyAddress, item.Text(u.address))
	return item.FromMap(m)
}

// UtxoFromDataItem decodes a Utxo map.
func UtxoFromDataItem(it item.Item, opts ...registry.DecodeOption) (*Utxo, error) {
	f, err := registry.ReadFields(it, UtxoType, opts...)
	if err != nil {
		return nil, err
	}
	u := &Utxo{}
	if u.transactionHash, err = f.FixedBytes(utxoKeyTransactionHash, "transactionHash", TransactionHashSize); err != nil {
		return nil, err
	}
	index, err := f.Uint(utxoKeyIndex, "index", 1<<32-1)
	if err != nil {
		return nil, err
	}
	u.index = uint32(index)
	if u.amount, err = f.Text(utxoKeyAmount, "amount"); err != nil {
		return nil, err
	}
	kp, err := f.Entity(utxoKeyKeyPath, "keyPath", registry.CryptoKeypath)
	if err != nil {
		return nil, err
	}
	if u.keyPath, err = keypath.FromDataItem(kp, f.Options()...); err != nil {
		return nil, err
	}
	if u.address, err = f.Text(utxoKeyAddress, "address"); err != nil {
		return nil, err
	}
	return u, nil
}

// UtxoFromCBOR decodes a Utxo from CBOR bytes.
func UtxoFromCBOR(data []byte, opts ...registry.DecodeOption) (*Utxo, error) {
	it, err := item.Decode(data)
	if err != nil {
		return nil, err
	}
	return UtxoFromDataItem(it, opts...)
}

// ToCBOR encodes the Utxo as CBOR bytes.
func (u *Utxo) ToCBOR() ([]byte, error) { return registry.ToCBOR(u) }
