package item

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ErrUnsupported is returned when a well-formed CBOR payload contains a
// value the item tree cannot represent (floats, big integers, non-integer
// map keys, stacked tags, simple values).
var ErrUnsupported = errors.New("item: unsupported cbor value")

// Options bounds the decoder. Zero fields take the library defaults.
type Options struct {
	MaxNestedLevels  int
	MaxArrayElements int
	MaxMapPairs      int
}

// DefaultOptions returns the limits used by the package-level codec.
// A single QR frame sequence rarely carries more than a few hundred
// inputs, so the limits are generous without admitting unbounded input.
func DefaultOptions() Options {
	return Options{
		MaxNestedLevels:  32,
		MaxArrayElements: 65536,
		MaxMapPairs:      1024,
	}
}

// Codec turns items into canonical CBOR bytes and back.
type Codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

// NewCodec builds a codec with the given decode limits. Encoding always
// uses core deterministic encoding: map keys sorted, shortest integer
// forms, definite lengths.
func NewCodec(opts Options) (*Codec, error) {
	enc, err := cbor.EncOptions{
		Sort:          cbor.SortCoreDeterministic,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsEmpty,
	}.EncMode()
	if err != nil {
		return nil, fmt.Errorf("item: encoder options: %w", err)
	}
	dec, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels:  opts.MaxNestedLevels,
		MaxArrayElements: opts.MaxArrayElements,
		MaxMapPairs:      opts.MaxMapPairs,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("item: decoder options: %w", err)
	}
	return &Codec{enc: enc, dec: dec}, nil
}

var defaultCodec = mustCodec(DefaultOptions())

func mustCodec(opts Options) *Codec {
	c, err := NewCodec(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Default returns the package-level codec.
func Default() *Codec { return defaultCodec }

// Encode serializes it with the package-level codec.
func Encode(it Item) ([]byte, error) { return defaultCodec.Encode(it) }

// Decode parses data with the package-level codec.
func Decode(data []byte) (Item, error) { return defaultCodec.Decode(data) }

// Encode serializes it as canonical CBOR.
func (c *Codec) Encode(it Item) ([]byte, error) {
	v, err := toCBOR(it)
	if err != nil {
		return nil, err
	}
	return c.enc.Marshal(v)
}

// Decode parses data into an item tree. Errors raised by the CBOR
// decoder itself (malformed input, trailing bytes, limits, duplicate
// keys) are returned as they are.
func (c *Codec) Decode(data []byte) (Item, error) {
	var v any
	if err := c.dec.Unmarshal(data, &v); err != nil {
		return Item{}, err
	}
	return fromCBOR(v)
}

func toCBOR(it Item) (any, error) {
	var body any
	switch it.kind {
	case KindUint:
		body = it.u
	case KindNegInt:
		body = it.n
	case KindBytes:
		body = nonNil(it.b)
	case KindText:
		body = it.s
	case KindBool:
		body = it.bl
	case KindNull:
		body = nil
	case KindArray:
		elems := make([]any, len(it.arr))
		for i, e := range it.arr {
			v, err := toCBOR(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		body = elems
	case KindMap:
		m := make(map[uint64]any, it.m.Len())
		for _, e := range entriesOf(it.m) {
			v, err := toCBOR(e.value)
			if err != nil {
				return nil, err
			}
			m[e.key] = v
		}
		body = m
	default:
		return nil, fmt.Errorf("item: cannot encode %s item", it.kind)
	}
	if it.tagged {
		return cbor.Tag{Number: it.tag, Content: body}, nil
	}
	return body, nil
}

func fromCBOR(v any) (Item, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case uint64:
		return Uint(x), nil
	case int64:
		return Int(x), nil
	case []byte:
		return Item{kind: KindBytes, b: x}, nil
	case string:
		return Text(x), nil
	case bool:
		return Bool(x), nil
	case []any:
		elems := make([]Item, len(x))
		for i, e := range x {
			it, err := fromCBOR(e)
			if err != nil {
				return Item{}, err
			}
			elems[i] = it
		}
		return Item{kind: KindArray, arr: elems}, nil
	case map[any]any:
		m := NewMap()
		for k, e := range x {
			key, ok := k.(uint64)
			if !ok {
				return Item{}, fmt.Errorf("%w: map key of type %T", ErrUnsupported, k)
			}
			it, err := fromCBOR(e)
			if err != nil {
				return Item{}, err
			}
			m.Set(key, it)
		}
		return Item{kind: KindMap, m: m}, nil
	case cbor.Tag:
		if _, nested := x.Content.(cbor.Tag); nested {
			return Item{}, fmt.Errorf("%w: tag %d wraps another tag", ErrUnsupported, x.Number)
		}
		inner, err := fromCBOR(x.Content)
		if err != nil {
			return Item{}, err
		}
		return inner.WithTag(x.Number), nil
	default:
		return Item{}, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}

func entriesOf(m *Map) []entry {
	if m == nil {
		return nil
	}
	return m.entries
}
