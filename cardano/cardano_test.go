package cardano_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/urregistry/cardano"
	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/keypath"
	"github.com/blockberries/urregistry/registry"
	urtest "github.com/blockberries/urregistry/testing"
)

const txHash = "4e3a6e7fdcb0d0efa17bf79c13aed2b4cb9baf37fb1aa2e39553d5bd720c5c99"

func sampleUtxo(t *testing.T) *cardano.Utxo {
	t.Helper()
	u, err := cardano.ConstructUtxo(cardano.UtxoData{
		TransactionHash: txHash,
		Index:           0,
		Amount:          "1000000",
		XFP:             urtest.SampleXFP,
		HDPath:          "m/1852'/1815'/0'/0/0",
		Address:         "addr_test1qz",
	})
	require.NoError(t, err)
	return u
}

// mapOf encodes ri and decodes the bytes back into a map, as a peer
// would see it.
func mapOf(t *testing.T, ri registry.RegistryItem) *item.Map {
	t.Helper()
	data, err := registry.ToCBOR(ri)
	require.NoError(t, err)
	it, err := item.Decode(data)
	require.NoError(t, err)
	m, ok := it.AsMap()
	require.True(t, ok)
	return m
}

func encodeMap(t *testing.T, m *item.Map) []byte {
	t.Helper()
	data, err := item.Encode(item.FromMap(m))
	require.NoError(t, err)
	return data
}

func TestRecords(t *testing.T) {
	withID, err := cardano.NewSignature([]byte("witness"), registry.NewRequestID())
	require.NoError(t, err)
	withoutID, err := cardano.NewSignature([]byte("witness"), nil)
	require.NoError(t, err)
	catalyst, err := cardano.NewCatalystSignature(bytes.Repeat([]byte{0x01}, 64), registry.NewRequestID())
	require.NoError(t, err)
	bare, err := cardano.NewSignRequest([]byte{0x00}, nil, nil)
	require.NoError(t, err)
	certKey, err := cardano.ConstructCertKey(cardano.CertKeyData{
		KeyHash: "e557890352095f1cf6fd2b7d1a28e3c3cb029f48cf34ff890a28d176",
		KeyPath: "m/1852'/1815'/0'/2/0",
	})
	require.NoError(t, err)

	urtest.RunRecordSuite(t, []urtest.RecordCase{
		{Name: "full sign request", Record: urtest.SampleCardanoRequest(urtest.SampleXFP)},
		{Name: "bare sign request", Record: bare},
		{Name: "utxo", Record: sampleUtxo(t)},
		{Name: "cert key without fingerprint", Record: certKey},
		{Name: "signature", Record: withID},
		{Name: "signature without id", Record: withoutID},
		{Name: "catalyst signature", Record: catalyst},
	})
}

func TestSignRequest_MinimalEncoding(t *testing.T) {
	req, err := cardano.NewSignRequest([]byte{0xDE, 0xAD, 0xBE, 0xEF}, []*cardano.Utxo{sampleUtxo(t)}, nil)
	require.NoError(t, err)

	m := mapOf(t, req)
	require.Equal(t, []uint64{2, 3, 4}, m.Keys())

	utxos, _ := m.Get(3)
	elems, ok := utxos.AsArray()
	require.True(t, ok)
	require.Len(t, elems, 1)
	tag, tagged := elems[0].Tag()
	require.True(t, tagged)
	require.Equal(t, cardano.UtxoType.Tag, tag)

	signers, _ := m.Get(4)
	elems, ok = signers.AsArray()
	require.True(t, ok)
	require.Empty(t, elems)

	got, err := cardano.SignRequestFromCBOR(encodeMap(t, m))
	require.NoError(t, err)
	require.Nil(t, got.RequestID())
	_, hasOrigin := got.Origin()
	require.False(t, hasOrigin)
	require.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, got.SignData())
	if diff := cmp.Diff(req.Utxos(), got.Utxos()); diff != "" {
		t.Fatalf("utxos differ (-want +got):\n%s", diff)
	}
}

func TestSignRequest_RequestIDTagged(t *testing.T) {
	req := urtest.SampleCardanoRequest(urtest.SampleXFP)
	m := mapOf(t, req)

	id, ok := m.Get(1)
	require.True(t, ok)
	tag, tagged := id.Tag()
	require.True(t, tagged)
	require.Equal(t, registry.UUID.Tag, tag)
	require.Equal(t, urtest.SampleRequestID, registry.FormatRequestID(req.RequestID()))

	// The tag is not checked on read.
	raw, _ := id.AsBytes()
	m.Set(1, item.Bytes(raw))
	got, err := cardano.SignRequestFromCBOR(encodeMap(t, m))
	require.NoError(t, err)
	require.Equal(t, req.RequestID(), got.RequestID())
}

func TestSignRequest_MissingSignData(t *testing.T) {
	m := mapOf(t, urtest.SampleCardanoRequest(urtest.SampleXFP))
	m.Delete(2)

	_, err := cardano.SignRequestFromCBOR(encodeMap(t, m))
	fe, ok := registry.IsMissingField(err)
	require.True(t, ok, "expected missing field, got %v", err)
	require.Equal(t, "signData", fe.Field)
	require.Equal(t, cardano.SignRequestType.Name, fe.Record)
}

func TestSignRequest_MalformedFields(t *testing.T) {
	tests := []struct {
		name  string
		key   uint64
		value item.Item
		field string
	}{
		{"short request id", 1, item.Bytes([]byte{0x01, 0x02}).WithTag(registry.UUID.Tag), "requestId"},
		{"text sign data", 2, item.Text("deadbeef"), "signData"},
		{"utxos not an array", 3, item.Uint(1), "utxos"},
		{"origin not text", 5, item.Uint(7), "origin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mapOf(t, urtest.SampleCardanoRequest(urtest.SampleXFP))
			m.Set(tt.key, tt.value)

			_, err := cardano.SignRequestFromCBOR(encodeMap(t, m))
			fe, ok := registry.IsMalformedField(err)
			require.True(t, ok, "expected malformed field, got %v", err)
			require.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestSignRequest_NestedTags(t *testing.T) {
	req := urtest.SampleCardanoRequest(urtest.SampleXFP)

	retag := func(t *testing.T, tagOf func(item.Item) item.Item) []byte {
		m := mapOf(t, req)
		utxos, _ := m.Get(3)
		elems, _ := utxos.AsArray()
		for i := range elems {
			elems[i] = tagOf(elems[i])
		}
		m.Set(3, item.Array(elems...))
		return encodeMap(t, m)
	}

	t.Run("foreign tag rejected", func(t *testing.T) {
		data := retag(t, func(it item.Item) item.Item { return it.WithTag(cardano.CertKeyType.Tag) })
		_, err := cardano.SignRequestFromCBOR(data)
		fe, ok := registry.IsMalformedField(err)
		require.True(t, ok, "expected malformed field, got %v", err)
		require.Equal(t, "utxos", fe.Field)
	})

	t.Run("untagged accepted by default", func(t *testing.T) {
		data := retag(t, item.Item.Untagged)
		got, err := cardano.SignRequestFromCBOR(data)
		require.NoError(t, err)
		require.True(t, req.Equal(got))
	})

	t.Run("untagged rejected when strict", func(t *testing.T) {
		data := retag(t, item.Item.Untagged)
		_, err := cardano.SignRequestFromCBOR(data, registry.StrictTags())
		_, ok := registry.IsMalformedField(err)
		require.True(t, ok, "expected malformed field, got %v", err)
	})

	t.Run("strict applies to nested key paths", func(t *testing.T) {
		m := mapOf(t, req)
		utxos, _ := m.Get(3)
		elems, _ := utxos.AsArray()
		um, _ := elems[0].AsMap()
		kp, _ := um.Get(4)
		um.Set(4, kp.Untagged())
		elems[0] = item.FromMap(um).WithTag(cardano.UtxoType.Tag)
		m.Set(3, item.Array(elems...))
		data := encodeMap(t, m)

		_, err := cardano.SignRequestFromCBOR(data)
		require.NoError(t, err)
		_, err = cardano.SignRequestFromCBOR(data, registry.StrictTags())
		fe, ok := registry.IsMalformedField(err)
		require.True(t, ok, "expected malformed field, got %v", err)
		require.Equal(t, cardano.UtxoType.Name, fe.Record)
	})
}

func TestSignRequest_CBORErrorsUnchanged(t *testing.T) {
	_, err := cardano.SignRequestFromCBOR([]byte{0xA1, 0x01})
	require.Error(t, err)
	_, isField := err.(*registry.FieldError)
	require.False(t, isField, "CBOR errors must not be wrapped as field errors")
}

func TestSignRequest_NotAMap(t *testing.T) {
	_, err := cardano.SignRequestFromDataItem(item.Array())
	require.Error(t, err)
}

func TestConstructors_LengthChecks(t *testing.T) {
	path, err := keypath.FromPath("m/1852'/1815'/0'/0/0", "")
	require.NoError(t, err)

	_, err = cardano.NewUtxo(make([]byte, 31), 0, "1", path, "addr")
	fe, ok := registry.IsMalformedField(err)
	require.True(t, ok)
	require.Equal(t, "transactionHash", fe.Field)

	_, err = cardano.NewUtxo(make([]byte, cardano.TransactionHashSize), 0, "1", nil, "addr")
	_, ok = registry.IsMissingField(err)
	require.True(t, ok)

	_, err = cardano.NewCertKey(make([]byte, 32), path)
	fe, ok = registry.IsMalformedField(err)
	require.True(t, ok)
	require.Equal(t, "keyHash", fe.Field)

	_, err = cardano.NewSignRequest(nil, []*cardano.Utxo{nil}, nil)
	_, ok = registry.IsMalformedField(err)
	require.True(t, ok)

	_, err = cardano.NewSignature([]byte{0x01}, []byte{0x01})
	fe, ok = registry.IsMalformedField(err)
	require.True(t, ok)
	require.Equal(t, "requestId", fe.Field)
}

func TestConstructSignRequest(t *testing.T) {
	req := urtest.SampleCardanoRequest(urtest.SampleXFP)

	origin, ok := req.Origin()
	require.True(t, ok)
	require.Equal(t, "urtest", origin)

	utxos := req.Utxos()
	require.Len(t, utxos, 1)
	require.Equal(t, txHash, hex.EncodeToString(utxos[0].TransactionHash()))
	require.Equal(t, "1852'/1815'/0'/0/0", utxos[0].KeyPath().Path())
	fp, ok := utxos[0].KeyPath().SourceFingerprint()
	require.True(t, ok)
	require.Equal(t, uint32(0x73C5DA0A), fp)

	_, err := cardano.ConstructSignRequest(nil, nil, nil, "not-a-uuid", "")
	require.Error(t, err)

	_, err = cardano.ConstructSignRequest(nil, []cardano.UtxoData{{TransactionHash: "zz"}}, nil, "", "")
	require.Error(t, err)
}

func TestSignRequest_GettersCopy(t *testing.T) {
	req := urtest.SampleCardanoRequest(urtest.SampleXFP)
	data := req.SignData()
	data[0] = 0x00
	require.Equal(t, byte(0xDE), req.SignData()[0])

	id := req.RequestID()
	id[0] = 0x00
	require.Equal(t, urtest.SampleRequestID, registry.FormatRequestID(req.RequestID()))
}
