// Package stellar defines the Stellar sign request and signature records.
package stellar

import (
	"fmt"

	"github.com/blockberries/urregistry/registry"
)

var (
	SignRequestType = registry.RegistryType{Name: "stellar-sign-request", Tag: 8201}
	SignatureType   = registry.RegistryType{Name: "stellar-signature", Tag: 8202}
)

// SignType says whether signData is a full transaction envelope or
// only its hash.
type SignType uint32

const (
	SignTypeTransaction     SignType = 1
	SignTypeTransactionHash SignType = 2
)

func (t SignType) String() string {
	switch t {
	case SignTypeTransaction:
		return "transaction"
	case SignTypeTransactionHash:
		return "transaction-hash"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(t))
	}
}

// Types returns every registry type defined by this package.
func Types() []registry.RegistryType {
	return []registry.RegistryType{SignRequestType, SignatureType}
}

// Register adds the Stellar types and their decoders to c.
func Register(c *registry.Catalog) error {
	if err := c.Register(SignRequestType, registry.Decoder(SignRequestFromDataItem)); err != nil {
		return err
	}
	return c.Register(SignatureType, registry.Decoder(SignatureFromDataItem))
}
