package btc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blockberries/urregistry/btc"
	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/keypath"
	"github.com/blockberries/urregistry/registry"
	urtest "github.com/blockberries/urregistry/testing"
)

func decodeMap(t *testing.T, ri registry.RegistryItem) *item.Map {
	t.Helper()
	data, err := registry.ToCBOR(ri)
	require.NoError(t, err)
	it, err := item.Decode(data)
	require.NoError(t, err)
	m, ok := it.AsMap()
	require.True(t, ok)
	return m
}

func TestRecords(t *testing.T) {
	bare, err := btc.NewSignRequest([]byte("hi"), btc.DataTypeMessage, nil, nil)
	require.NoError(t, err)
	noAddrs, err := btc.ConstructSignRequest([]byte("hi"), btc.DataTypeMessage,
		[]string{"m/44'/0'/0'/0/0", "m/84'/0'/0'/0/1"}, "", "", nil, "")
	require.NoError(t, err)
	emptyAddrs, err := btc.ConstructSignRequest([]byte("hi"), btc.DataTypeMessage,
		[]string{"m/44'/0'/0'/0/0"}, "", "", []string{}, "")
	require.NoError(t, err)
	sig, err := btc.NewSignature([]byte("sig"), urtest.PlaceholderPublicKey(), registry.NewRequestID())
	require.NoError(t, err)

	urtest.RunRecordSuite(t, []urtest.RecordCase{
		{Name: "full sign request", Record: urtest.SampleBitcoinRequest(urtest.SampleXFP)},
		{Name: "bare sign request", Record: bare},
		{Name: "two paths without addresses", Record: noAddrs},
		{Name: "empty address list", Record: emptyAddrs},
		{Name: "signature", Record: sig},
	})
}

func TestSignRequest_AddressPresence(t *testing.T) {
	absent, err := btc.ConstructSignRequest(nil, btc.DataTypeMessage, nil, "", "", nil, "")
	require.NoError(t, err)
	require.False(t, decodeMap(t, absent).Has(5))

	empty, err := btc.ConstructSignRequest(nil, btc.DataTypeMessage, nil, "", "", []string{}, "")
	require.NoError(t, err)
	m := decodeMap(t, empty)
	require.True(t, m.Has(5))

	got, err := btc.SignRequestFromDataItem(item.FromMap(m))
	require.NoError(t, err)
	addrs, ok := got.Addresses()
	require.True(t, ok)
	require.Empty(t, addrs)
}

func TestSignRequest_Fields(t *testing.T) {
	req := urtest.SampleBitcoinRequest(urtest.SampleXFP)
	require.Equal(t, []uint64{1, 2, 3, 4, 5, 6}, decodeMap(t, req).Keys())
	require.Equal(t, btc.DataTypeMessage, req.DataType())
	require.Equal(t, "message", req.DataType().String())
	require.Equal(t, "unknown(9)", btc.DataType(9).String())

	paths := req.DerivationPaths()
	require.Len(t, paths, 1)
	require.Equal(t, "m/84'/0'/0'/0/0", paths[0].String())
}

func TestSignRequest_DecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *item.Map)
		field   string
		missing bool
	}{
		{"missing dataType", func(m *item.Map) { m.Delete(3) }, "dataType", true},
		{"missing derivationPaths", func(m *item.Map) { m.Delete(4) }, "derivationPaths", true},
		{"negative dataType", func(m *item.Map) { m.Set(3, item.Int(-1)) }, "dataType", false},
		{"dataType overflow", func(m *item.Map) { m.Set(3, item.Uint(1<<40)) }, "dataType", false},
		{"address not text", func(m *item.Map) { m.Set(5, item.Array(item.Uint(1))) }, "addresses", false},
		{"path with foreign tag", func(m *item.Map) {
			paths, _ := m.Get(4)
			elems, _ := paths.AsArray()
			elems[0] = elems[0].WithTag(btc.SignRequestType.Tag)
			m.Set(4, item.Array(elems...))
		}, "derivationPaths", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decodeMap(t, urtest.SampleBitcoinRequest(urtest.SampleXFP))
			tt.mutate(m)
			_, err := btc.SignRequestFromDataItem(item.FromMap(m))

			check := registry.IsMalformedField
			if tt.missing {
				check = registry.IsMissingField
			}
			fe, ok := check(err)
			require.True(t, ok, "unexpected error %v", err)
			require.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestSignature_PublicKeyLength(t *testing.T) {
	_, err := btc.NewSignature([]byte("sig"), make([]byte, 32), nil)
	fe, ok := registry.IsMalformedField(err)
	require.True(t, ok)
	require.Equal(t, "publicKey", fe.Field)

	sig, err := btc.NewSignature([]byte("sig"), urtest.PlaceholderPublicKey(), nil)
	require.NoError(t, err)
	m := decodeMap(t, sig)
	m.Set(3, item.Bytes(make([]byte, 65)))
	_, err = btc.SignatureFromDataItem(item.FromMap(m))
	_, ok = registry.IsMalformedField(err)
	require.True(t, ok, "uncompressed key must be rejected, got %v", err)
}

func TestNewSignRequest_NilPath(t *testing.T) {
	kp, err := keypath.FromPath("m/84'/0'/0'", "")
	require.NoError(t, err)
	_, err = btc.NewSignRequest(nil, btc.DataTypeMessage, []*keypath.Keypath{kp, nil}, nil)
	_, ok := registry.IsMalformedField(err)
	require.True(t, ok)
}
