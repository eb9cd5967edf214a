package item_test

import (
	"encoding/hex"
	"errors"
	"io"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/urregistry/item"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestEncode_CanonicalMapOrder(t *testing.T) {
	m := item.NewMap()
	m.Set(3, item.Text("c"))
	m.Set(1, item.Uint(1))
	m.Set(2, item.Bytes([]byte{0xde, 0xad, 0xbe, 0xef}))

	require.Equal(t, []uint64{1, 2, 3}, m.Keys())

	data, err := item.Encode(item.FromMap(m))
	require.NoError(t, err)
	require.Equal(t, "a3010102"+"44deadbeef"+"036163", hex.EncodeToString(data))
}

func TestEncode_Tagged(t *testing.T) {
	id := make([]byte, 16)
	data, err := item.Encode(item.Bytes(id).WithTag(37))
	require.NoError(t, err)
	require.Equal(t, "d82550"+hex.EncodeToString(id), hex.EncodeToString(data))
}

func TestEncode_EmptyContainersAreNotNull(t *testing.T) {
	data, err := item.Encode(item.Array())
	require.NoError(t, err)
	require.Equal(t, []byte{0x80}, data)

	data, err = item.Encode(item.Bytes(nil))
	require.NoError(t, err)
	require.Equal(t, []byte{0x40}, data)
}

func TestDecode_RoundTrip(t *testing.T) {
	inner := item.NewMap()
	inner.Set(1, item.Bytes([]byte{1, 2, 3}))
	inner.Set(2, item.Uint(7))

	outer := item.NewMap()
	outer.Set(1, item.Bytes(make([]byte, 16)).WithTag(37))
	outer.Set(2, item.Int(-5))
	outer.Set(3, item.Array(item.FromMap(inner).WithTag(2201), item.FromMap(inner).WithTag(2201)))
	outer.Set(4, item.Bool(true))
	outer.Set(5, item.Text("origin"))

	want := item.FromMap(outer)
	data, err := item.Encode(want)
	require.NoError(t, err)

	got, err := item.Decode(data)
	require.NoError(t, err)
	require.True(t, want.Equal(got), "got %s, want %s", got, want)
}

func TestDecode_PropagatesMalformedInput(t *testing.T) {
	// Map header announcing one pair with nothing after it.
	_, err := item.Decode([]byte{0xa1})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.False(t, errors.Is(err, item.ErrUnsupported))
}

func TestDecode_RejectsTrailingBytes(t *testing.T) {
	_, err := item.Decode([]byte{0x01, 0x02})
	var extra *cbor.ExtraneousDataError
	require.ErrorAs(t, err, &extra)
}

func TestDecode_RejectsDuplicateKeys(t *testing.T) {
	_, err := item.Decode(mustHex(t, "a201010102"))
	var dup *cbor.DupMapKeyError
	require.ErrorAs(t, err, &dup)
}

func TestDecode_RejectsUnsupportedValues(t *testing.T) {
	cases := map[string]string{
		"float":       "f93c00",
		"text key":    "a1616101",
		"nested tags": "d82ad82501",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := item.Decode(mustHex(t, in))
			require.ErrorIs(t, err, item.ErrUnsupported)
		})
	}
}

func TestNewCodec_Limits(t *testing.T) {
	c, err := item.NewCodec(item.Options{MaxNestedLevels: 4, MaxArrayElements: 16, MaxMapPairs: 16})
	require.NoError(t, err)

	deep := item.Array(item.Array(item.Array(item.Array(item.Array(item.Uint(1))))))
	data, err := c.Encode(deep)
	require.NoError(t, err)

	_, err = c.Decode(data)
	var limit *cbor.MaxNestedLevelError
	require.ErrorAs(t, err, &limit)

	_, err = item.NewCodec(item.Options{MaxNestedLevels: 1})
	require.Error(t, err)
}

func TestItem_Immutability(t *testing.T) {
	src := []byte{1, 2, 3}
	it := item.Bytes(src)
	src[0] = 9

	got, ok := it.AsBytes()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got)

	got[1] = 9
	again, _ := it.AsBytes()
	require.Equal(t, []byte{1, 2, 3}, again)

	tagged := it.WithTag(5)
	_, hasTag := it.Tag()
	require.False(t, hasTag)
	tag, hasTag := tagged.Tag()
	require.True(t, hasTag)
	require.Equal(t, uint64(5), tag)
	require.False(t, tagged.Untagged().Equal(tagged))
}

func TestItem_String(t *testing.T) {
	m := item.NewMap()
	m.Set(2, item.Bytes([]byte{0xab}))
	m.Set(1, item.Array(item.Text("x"), item.Null()))
	require.Equal(t, `{1: ["x", null], 2: h'ab'}`, item.FromMap(m).String())
	require.Equal(t, "304(7)", item.Uint(7).WithTag(304).String())
}
