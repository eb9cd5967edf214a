// Package registry holds the pieces shared by every record schema: the
// registry type descriptor, the RegistryItem contract, the tag catalog,
// the schema error taxonomy and the helpers records use to read their
// maps and embed nested entities.
package registry

import (
	"fmt"

	"github.com/blockberries/urregistry/item"
)

// RegistryType names a record or entity type and the CBOR tag that marks
// it when embedded. A zero Tag means the type is never tagged.
type RegistryType struct {
	Name string
	Tag  uint64
}

// HasTag reports whether the type owns a tag.
func (rt RegistryType) HasTag() bool { return rt.Tag != 0 }

func (rt RegistryType) String() string {
	if !rt.HasTag() {
		return rt.Name
	}
	return fmt.Sprintf("%s(%d)", rt.Name, rt.Tag)
}

// Types shared by all chains.
var (
	UUID          = RegistryType{Name: "uuid", Tag: 37}
	CryptoKeypath = RegistryType{Name: "crypto-keypath", Tag: 304}
)

// RegistryItem is implemented by every record and nested entity.
//
// ToDataItem returns the untagged map. The container that embeds the
// item is responsible for tagging it (see Embed).
type RegistryItem interface {
	RegistryType() RegistryType
	ToDataItem() item.Item
}

// Embed returns ri's map tagged with ri's own registry tag, ready to be
// placed inside a parent record.
func Embed(ri RegistryItem) item.Item {
	it := ri.ToDataItem()
	if rt := ri.RegistryType(); rt.HasTag() {
		return it.WithTag(rt.Tag)
	}
	return it
}

// EmbedAll embeds each element of items in order. The result is never
// nil so that an empty collection encodes as an empty array.
func EmbedAll[T RegistryItem](items []T) item.Item {
	out := make([]item.Item, len(items))
	for i, ri := range items {
		out[i] = Embed(ri)
	}
	return item.Array(out...)
}

// ToCBOR encodes ri's untagged map with the package-level codec. The
// outermost object is left untagged; the transport names it.
func ToCBOR(ri RegistryItem) ([]byte, error) {
	return item.Encode(ri.ToDataItem())
}
