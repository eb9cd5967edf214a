// Package keypath implements the crypto-keypath entity: a BIP32
// derivation path with an optional source fingerprint and depth, as
// embedded by the per-chain sign requests.
package keypath

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"

	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/registry"
)

const (
	keyComponents uint64 = iota + 1
	keySourceFingerprint
	keyDepth
)

// Component is one path step.
type Component struct {
	Index    uint32
	Hardened bool
	Wildcard bool
}

func (c Component) String() string {
	s := strconv.FormatUint(uint64(c.Index), 10)
	if c.Wildcard {
		s = "*"
	}
	if c.Hardened {
		s += "'"
	}
	return s
}

// Keypath is an immutable derivation path.
type Keypath struct {
	components     []Component
	fingerprint    uint32
	hasFingerprint bool
	depth          uint8
	hasDepth       bool
}

// Option sets an optional Keypath field.
type Option func(*Keypath)

// WithSourceFingerprint records the master key fingerprint the path
// starts from.
func WithSourceFingerprint(fp uint32) Option {
	return func(k *Keypath) {
		k.fingerprint = fp
		k.hasFingerprint = true
	}
}

// WithDepth records the depth of the derived key.
func WithDepth(depth uint8) Option {
	return func(k *Keypath) {
		k.depth = depth
		k.hasDepth = true
	}
}

// New builds a key path from components.
func New(components []Component, opts ...Option) *Keypath {
	k := &Keypath{components: slices.Clone(components)}
	for _, o := range opts {
		o(k)
	}
	return k
}

// FromPath parses a textual path such as "m/1852'/1815'/0'" and an
// optional 4-byte hex master fingerprint.
func FromPath(path, xfp string) (*Keypath, error) {
	components, err := Parse(path)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if xfp != "" {
		fp, err := ParseFingerprint(xfp)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithSourceFingerprint(fp))
	}
	return New(components, opts...), nil
}

// Parse splits a derivation path into components. A leading "m" is
// optional; hardened steps end in ' or h; "*" is a wildcard.
func Parse(path string) ([]Component, error) {
	path = strings.TrimSpace(path)
	segments := strings.Split(path, "/")
	if len(segments) > 0 && (segments[0] == "m" || segments[0] == "M") {
		segments = segments[1:]
	}
	if len(segments) == 0 || (len(segments) == 1 && segments[0] == "") {
		return nil, nil
	}
	out := make([]Component, 0, len(segments))
	for _, s := range segments {
		number, hardened := strings.CutSuffix(s, "'")
		if !hardened {
			number, hardened = strings.CutSuffix(s, "h")
		}
		if number == "*" {
			out = append(out, Component{Wildcard: true, Hardened: hardened})
			continue
		}
		index, err := strconv.ParseUint(number, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("keypath: invalid segment %q in %q", s, path)
		}
		if index >= hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("keypath: index %d in %q out of range", index, path)
		}
		out = append(out, Component{Index: uint32(index), Hardened: hardened})
	}
	return out, nil
}

// ParseFingerprint decodes a 4-byte big-endian hex fingerprint.
func ParseFingerprint(xfp string) (uint32, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(xfp, "0x"))
	if err != nil {
		return 0, fmt.Errorf("keypath: fingerprint %q: %w", xfp, err)
	}
	if len(b) != 4 {
		return 0, fmt.Errorf("keypath: fingerprint %q is %d bytes, want 4", xfp, len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}

func (k *Keypath) RegistryType() registry.RegistryType { return registry.CryptoKeypath }

// Components returns a copy of the path steps.
func (k *Keypath) Components() []Component { return slices.Clone(k.components) }

// SourceFingerprint returns the master fingerprint, if recorded.
func (k *Keypath) SourceFingerprint() (uint32, bool) { return k.fingerprint, k.hasFingerprint }

// Depth returns the depth, if recorded.
func (k *Keypath) Depth() (uint8, bool) { return k.depth, k.hasDepth }

// Path renders the components without the leading "m", e.g. "1852'/1815'/0'".
func (k *Keypath) Path() string {
	parts := make([]string, len(k.components))
	for i, c := range k.components {
		parts[i] = c.String()
	}
	return strings.Join(parts, "/")
}

func (k *Keypath) String() string { return "m/" + k.Path() }

// Equal reports whether two key paths are the same.
func (k *Keypath) Equal(o *Keypath) bool {
	if k == nil || o == nil {
		return k == o
	}
	return slices.Equal(k.components, o.components) &&
		k.hasFingerprint == o.hasFingerprint && k.fingerprint == o.fingerprint &&
		k.hasDepth == o.hasDepth && k.depth == o.depth
}

// ToDataItem encodes the path. Each component becomes an index (or an
// empty array for a wildcard) followed by its hardened flag.
func (k *Keypath) ToDataItem() item.Item {
	m := item.NewMap()
	flat := make([]item.Item, 0, 2*len(k.components))
	for _, c := range k.components {
		if c.Wildcard {
			flat = append(flat, item.Array())
		} else {
			flat = append(flat, item.Uint(uint64(c.Index)))
		}
		flat = append(flat, item.Bool(c.Hardened))
	}
	m.Set(keyComponents, item.Array(flat...))
	if k.hasFingerprint {
		m.Set(keySourceFingerprint, item.Uint(uint64(k.fingerprint)))
	}
	if k.hasDepth {
		m.Set(keyDepth, item.Uint(uint64(k.depth)))
	}
	return item.FromMap(m)
}

// FromDataItem decodes a key path map.
func FromDataItem(it item.Item, opts ...registry.DecodeOption) (*Keypath, error) {
	f, err := registry.ReadFields(it, registry.CryptoKeypath, opts...)
	if err != nil {
		return nil, err
	}
	components, err := decodeComponents(f)
	if err != nil {
		return nil, err
	}
	k := &Keypath{components: components}
	if fp, ok, err := f.OptionalUint(keySourceFingerprint, "sourceFingerprint", 1<<32-1); err != nil {
		return nil, err
	} else if ok {
		k.fingerprint, k.hasFingerprint = uint32(fp), true
	}
	if depth, ok, err := f.OptionalUint(keyDepth, "depth", 1<<8-1); err != nil {
		return nil, err
	} else if ok {
		k.depth, k.hasDepth = uint8(depth), true
	}
	return k, nil
}

func decodeComponents(f *registry.Fields) ([]Component, error) {
	flat, err := f.Array(keyComponents, "components")
	if err != nil {
		return nil, err
	}
	malformed := func(format string, args ...any) error {
		return registry.MalformedField(registry.CryptoKeypath.Name, "components", keyComponents, format, args...)
	}
	if len(flat)%2 != 0 {
		return nil, malformed("odd number of elements (%d)", len(flat))
	}
	out := make([]Component, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		var c Component
		if elems, ok := flat[i].AsArray(); ok {
			if len(elems) != 0 {
				return nil, malformed("component %d: ranged wildcards are not supported", i/2)
			}
			c.Wildcard = true
		} else {
			index, ok := flat[i].AsUint()
			if !ok || index >= hdkeychain.HardenedKeyStart {
				return nil, malformed("component %d: invalid index %s", i/2, flat[i])
			}
			c.Index = uint32(index)
		}
		hardened, ok := flat[i+1].AsBool()
		if !ok {
			return nil, malformed("component %d: hardened flag is %s", i/2, flat[i+1].Kind())
		}
		c.Hardened = hardened
		out = append(out, c)
	}
	return out, nil
}

// FromCBOR decodes a key path from CBOR bytes.
func FromCBOR(data []byte, opts ...registry.DecodeOption) (*Keypath, error) {
	it, err := item.Decode(data)
	if err != nil {
		return nil, err
	}
	return FromDataItem(it, opts...)
}

// ToCBOR encodes the key path as CBOR bytes.
func (k *Keypath) ToCBOR() ([]byte, error) { return registry.ToCBOR(k) }

// Register adds the key path type to c.
func Register(c *registry.Catalog) error {
	return c.Register(registry.CryptoKeypath, registry.Decoder(FromDataItem))
}
