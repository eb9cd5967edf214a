package urregistry

import (
	"sync"

	"github.com/blockberries/urregistry/btc"
	"github.com/blockberries/urregistry/cardano"
	"github.com/blockberries/urregistry/keypath"
	"github.com/blockberries/urregistry/registry"
	"github.com/blockberries/urregistry/stellar"
)

// Register adds every type known to this module to c: the UUID tag,
// key paths and the Cardano, Bitcoin and Stellar records. It may be
// called any number of times on the same catalog.
func Register(c *registry.Catalog) error {
	if err := c.Patch(registry.UUID); err != nil {
		return err
	}
	for _, reg := range []func(*registry.Catalog) error{
		keypath.Register,
		cardano.Register,
		btc.Register,
		stellar.Register,
	} {
		if err := reg(c); err != nil {
			return err
		}
	}
	return nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *registry.Catalog
)

// DefaultCatalog returns the process-wide catalog holding every type in
// this module. It is built on first use and closed afterwards.
func DefaultCatalog() *registry.Catalog {
	defaultOnce.Do(func() {
		c := registry.NewCatalog()
		if err := Register(c); err != nil {
			// Built-in types are fixed; a conflict here is a programming error.
			panic(err)
		}
		c.Close()
		defaultCatalog = c
	})
	return defaultCatalog
}

// Types lists every type this module defines, in registration order.
func Types() []registry.RegistryType {
	out := []registry.RegistryType{registry.UUID, registry.CryptoKeypath}
	out = append(out, cardano.Types()...)
	out = append(out, btc.Types()...)
	return append(out, stellar.Types()...)
}
