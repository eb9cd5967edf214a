package registry

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/blockberries/urregistry/item"
)

// DecodeFunc decodes a registry item from its map.
type DecodeFunc func(item.Item, ...DecodeOption) (RegistryItem, error)

// Decoder adapts a typed decoder to a DecodeFunc.
func Decoder[T RegistryItem](dec func(item.Item, ...DecodeOption) (T, error)) DecodeFunc {
	return func(it item.Item, opts ...DecodeOption) (RegistryItem, error) {
		v, err := dec(it, opts...)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Entry is one catalog row.
type Entry struct {
	Type   RegistryType
	Decode DecodeFunc
}

// Catalog maps tags and type names to registry types and their
// decoders. It is filled once at startup and then only read; Close
// freezes it. Registration is a set union: registering a descriptor
// that is already present is a no-op, so repeated initialization is
// safe. All methods are safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	byTag  map[uint64]Entry
	byName map[string]uint64
	closed bool
}

// NewCatalog returns an empty, open catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		byTag:  make(map[uint64]Entry),
		byName: make(map[string]uint64),
	}
}

// Register adds rt with its decoder. dec may be nil for types that are
// only ever embedded as plain values (such as UUID).
func (c *Catalog) Register(rt RegistryType, dec DecodeFunc) error {
	if !rt.HasTag() || rt.Name == "" {
		return fmt.Errorf("registry: cannot register %q without a name and tag", rt)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.byTag[rt.Tag]; ok {
		if existing.Type != rt {
			return &DuplicateTagError{Existing: existing.Type, Incoming: rt}
		}
		if existing.Decode == nil && dec != nil {
			if c.closed {
				return ErrCatalogClosed
			}
			existing.Decode = dec
			c.byTag[rt.Tag] = existing
		}
		return nil
	}
	if tag, ok := c.byName[rt.Name]; ok {
		return &DuplicateTagError{Existing: c.byTag[tag].Type, Incoming: rt}
	}
	if c.closed {
		return ErrCatalogClosed
	}
	c.byTag[rt.Tag] = Entry{Type: rt, Decode: dec}
	c.byName[rt.Name] = rt.Tag
	return nil
}

// Patch registers each type without a decoder. Types with no tag are
// skipped.
func (c *Catalog) Patch(types ...RegistryType) error {
	for _, rt := range types {
		if !rt.HasTag() {
			continue
		}
		if err := c.Register(rt, nil); err != nil {
			return err
		}
	}
	return nil
}

// Close freezes the catalog. New types can no longer be added;
// re-registering present ones stays a no-op.
func (c *Catalog) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// Closed reports whether Close has been called.
func (c *Catalog) Closed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Lookup returns the entry registered under tag.
func (c *Catalog) Lookup(tag uint64) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byTag[tag]
	return e, ok
}

// LookupName returns the entry registered under a type name.
func (c *Catalog) LookupName(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tag, ok := c.byName[name]
	if !ok {
		return Entry{}, false
	}
	return c.byTag[tag], true
}

// Types returns every registered type ordered by tag.
func (c *Catalog) Types() []RegistryType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]RegistryType, 0, len(c.byTag))
	for _, e := range c.byTag {
		out = append(out, e.Type)
	}
	slices.SortFunc(out, func(a, b RegistryType) int { return cmp.Compare(a.Tag, b.Tag) })
	return out
}

// Decode dispatches on the tag carried by it.
func (c *Catalog) Decode(it item.Item, opts ...DecodeOption) (RegistryItem, error) {
	tag, ok := it.Tag()
	if !ok {
		return nil, fmt.Errorf("%w: untagged item", ErrUnknownType)
	}
	e, ok := c.Lookup(tag)
	if !ok || e.Decode == nil {
		return nil, fmt.Errorf("%w: tag %d", ErrUnknownType, tag)
	}
	return e.Decode(it, opts...)
}

// DecodeNamed decodes a CBOR payload whose type is named out of band,
// as the transport does for the outermost object. Errors from the CBOR
// decoder are returned unchanged.
func (c *Catalog) DecodeNamed(name string, data []byte, opts ...DecodeOption) (RegistryItem, error) {
	e, ok := c.LookupName(name)
	if !ok || e.Decode == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	it, err := item.Decode(data)
	if err != nil {
		return nil, err
	}
	return e.Decode(it, opts...)
}
