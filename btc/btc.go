// Package btc defines the Bitcoin message signing request and the
// signature returned for it.
package btc

import (
	"fmt"

	"github.com/blockberries/urregistry/registry"
)

// Registry types owned by this package.
var (
	SignRequestType = registry.RegistryType{Name: "btc-sign-request", Tag: 8101}
	SignatureType   = registry.RegistryType{Name: "btc-signature", Tag: 8102}
)

// PublicKeySize is the length of a compressed secp256k1 public key.
const PublicKeySize = 33

// DataType says what signData holds.
type DataType uint32

const (
	DataTypeMessage DataType = 1
)

func (d DataType) String() string {
	switch d {
	case DataTypeMessage:
		return "message"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(d))
	}
}

// Types returns every registry type defined by this package.
func Types() []registry.RegistryType {
	return []registry.RegistryType{SignRequestType, SignatureType}
}

// Register adds the Bitcoin types and their decoders to c.
func Register(c *registry.Catalog) error {
	if err := c.Register(SignRequestType, registry.Decoder(SignRequestFromDataItem)); err != nil {
		return err
	}
	return c.Register(SignatureType, registry.Decoder(SignatureFromDataItem))
}
