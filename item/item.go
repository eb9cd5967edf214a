// Package item provides the generic item tree that every registry
// record encodes into and decodes from.
//
// An Item is a CBOR data item restricted to the shapes the registry
// uses: unsigned and negative integers, byte and text strings, booleans,
// null, arrays and maps keyed by unsigned integers. Any node may carry a
// single tag. Items are values; WithTag and the constructors return new
// items and never mutate their inputs.
package item

import (
	"bytes"
	"fmt"
	"slices"
)

// Kind identifies the shape of an Item.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUint
	KindNegInt
	KindBytes
	KindText
	KindBool
	KindNull
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindNegInt:
		return "negint"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(k))
	}
}

// Item is one node of the tree.
type Item struct {
	kind   Kind
	tag    uint64
	tagged bool

	u   uint64
	n   int64
	b   []byte
	s   string
	bl  bool
	arr []Item
	m   *Map
}

// Uint returns an unsigned integer item.
func Uint(v uint64) Item { return Item{kind: KindUint, u: v} }

// Int returns an integer item. Non-negative values become KindUint.
func Int(v int64) Item {
	if v >= 0 {
		return Uint(uint64(v))
	}
	return Item{kind: KindNegInt, n: v}
}

// Bytes returns a byte string item holding a copy of v.
func Bytes(v []byte) Item {
	return Item{kind: KindBytes, b: bytes.Clone(nonNil(v))}
}

// Text returns a text string item.
func Text(v string) Item { return Item{kind: KindText, s: v} }

// Bool returns a boolean item.
func Bool(v bool) Item { return Item{kind: KindBool, bl: v} }

// Null returns the null item. Registry records never emit it; it exists
// so that decoded trees can represent what arrived on the wire.
func Null() Item { return Item{kind: KindNull} }

// Array returns an array item over a copy of elems.
func Array(elems ...Item) Item {
	out := make([]Item, len(elems))
	copy(out, elems)
	return Item{kind: KindArray, arr: out}
}

// FromMap returns a map item. The map is cloned.
func FromMap(m *Map) Item {
	if m == nil {
		m = NewMap()
	}
	return Item{kind: KindMap, m: m.Clone()}
}

// WithTag returns a copy of it carrying tag.
func (it Item) WithTag(tag uint64) Item {
	it.tag = tag
	it.tagged = true
	return it
}

// Untagged returns a copy of it with any tag removed.
func (it Item) Untagged() Item {
	it.tag = 0
	it.tagged = false
	return it
}

// Tag returns the item's tag and whether one is set.
func (it Item) Tag() (uint64, bool) { return it.tag, it.tagged }

// Kind returns the item's shape.
func (it Item) Kind() Kind { return it.kind }

// AsUint returns the value of a KindUint item.
func (it Item) AsUint() (uint64, bool) {
	if it.kind != KindUint {
		return 0, false
	}
	return it.u, true
}

// AsInt returns the value of a KindUint or KindNegInt item when it
// fits in an int64.
func (it Item) AsInt() (int64, bool) {
	switch it.kind {
	case KindNegInt:
		return it.n, true
	case KindUint:
		if it.u > 1<<63-1 {
			return 0, false
		}
		return int64(it.u), true
	}
	return 0, false
}

// AsBytes returns a copy of the contents of a KindBytes item.
func (it Item) AsBytes() ([]byte, bool) {
	if it.kind != KindBytes {
		return nil, false
	}
	return bytes.Clone(it.b), true
}

// AsText returns the contents of a KindText item.
func (it Item) AsText() (string, bool) {
	if it.kind != KindText {
		return "", false
	}
	return it.s, true
}

// AsBool returns the value of a KindBool item.
func (it Item) AsBool() (bool, bool) {
	if it.kind != KindBool {
		return false, false
	}
	return it.bl, true
}

// AsArray returns a copy of the elements of a KindArray item.
func (it Item) AsArray() ([]Item, bool) {
	if it.kind != KindArray {
		return nil, false
	}
	return slices.Clone(it.arr), true
}

// AsMap returns a copy of the map of a KindMap item.
func (it Item) AsMap() (*Map, bool) {
	if it.kind != KindMap {
		return nil, false
	}
	return it.m.Clone(), true
}

// Equal reports whether two items have the same shape, tag and contents.
func (it Item) Equal(other Item) bool {
	if it.kind != other.kind || it.tagged != other.tagged || it.tag != other.tag {
		return false
	}
	switch it.kind {
	case KindUint:
		return it.u == other.u
	case KindNegInt:
		return it.n == other.n
	case KindBytes:
		return bytes.Equal(it.b, other.b)
	case KindText:
		return it.s == other.s
	case KindBool:
		return it.bl == other.bl
	case KindNull, KindInvalid:
		return true
	case KindArray:
		return slices.EqualFunc(it.arr, other.arr, Item.Equal)
	case KindMap:
		return it.m.Equal(other.m)
	}
	return false
}

// String renders the item in CBOR diagnostic-like notation. It is meant
// for logs and test failures.
func (it Item) String() string {
	var body string
	switch it.kind {
	case KindUint:
		body = fmt.Sprintf("%d", it.u)
	case KindNegInt:
		body = fmt.Sprintf("%d", it.n)
	case KindBytes:
		body = fmt.Sprintf("h'%x'", it.b)
	case KindText:
		body = fmt.Sprintf("%q", it.s)
	case KindBool:
		body = fmt.Sprintf("%t", it.bl)
	case KindNull:
		body = "null"
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range it.arr {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(e.String())
		}
		buf.WriteByte(']')
		body = buf.String()
	case KindMap:
		body = it.m.String()
	default:
		body = "<invalid>"
	}
	if it.tagged {
		return fmt.Sprintf("%d(%s)", it.tag, body)
	}
	return body
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
