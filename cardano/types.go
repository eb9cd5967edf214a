// Package cardano defines the Cardano sign request and signature
// records exchanged with an air-gapped signer, and the UTXO and
// certificate key entities nested inside a sign request.
package cardano

import (
	"github.com/blockberries/urregistry/registry"
)

// Registry types owned by this package.
var (
	UtxoType              = registry.RegistryType{Name: "cardano-utxo", Tag: 2201}
	SignRequestType       = registry.RegistryType{Name: "cardano-sign-request", Tag: 2202}
	SignatureType         = registry.RegistryType{Name: "cardano-signature", Tag: 2203}
	CertKeyType           = registry.RegistryType{Name: "cardano-cert-key", Tag: 2204}
	CatalystSignatureType = registry.RegistryType{Name: "cardano-catalyst-voting-registration-signature", Tag: 2208}
)

const (
	// TransactionHashSize is the length of a transaction id.
	TransactionHashSize = 32
	// KeyHashSize is the length of a blake2b-224 key hash.
	KeyHashSize = 28
)

// Types returns every registry type defined by this package.
func Types() []registry.RegistryType {
	return []registry.RegistryType{UtxoType, SignRequestType, SignatureType, CertKeyType, CatalystSignatureType}
}

// Register adds every Cardano type and its decoder to c.
func Register(c *registry.Catalog) error {
	decoders := []struct {
		rt  registry.RegistryType
		dec registry.DecodeFunc
	}{
		{UtxoType, registry.Decoder(UtxoFromDataItem)},
		{SignRequestType, registry.Decoder(SignRequestFromDataItem)},
		{SignatureType, registry.Decoder(SignatureFromDataItem)},
		{CertKeyType, registry.Decoder(CertKeyFromDataItem)},
		{CatalystSignatureType, registry.Decoder(CatalystSignatureFromDataItem)},
	}
	for _, d := range decoders {
		if err := c.Register(d.rt, d.dec); err != nil {
			return err
		}
	}
	return nil
}
