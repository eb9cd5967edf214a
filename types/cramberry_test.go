package types_test

import (
	"testing"

	"github.com/blockberries/urregistry/types"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// roundTrip marshals v, unmarshals into a new T, and returns it.
func roundTrip[T any](t *testing.T, v T) T {
	t.Helper()
	data, err := cramberry.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var out T
	if err := cramberry.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	return out
}

func TestEnvelope_RoundTrip(t *testing.T) {
	v := types.Envelope{Type: "cardano-sign-request", Payload: []byte{0xA1, 0x02, 0x44, 0xDE, 0xAD, 0xBE, 0xEF}}
	got := roundTrip(t, v)
	if got.Type != v.Type || string(got.Payload) != string(v.Payload) {
		t.Fatalf("Envelope round-trip failed: got %+v, want %+v", got, v)
	}
	if got.IsZero() {
		t.Fatal("non-empty envelope reported zero")
	}
	if !(types.Envelope{}).IsZero() {
		t.Fatal("empty envelope not reported zero")
	}
}

func TestHandshakeRequest_RoundTrip(t *testing.T) {
	v := types.HandshakeRequest{Version: types.ProtocolVersion, Origin: "wallet"}
	got := roundTrip(t, v)
	if got != v {
		t.Fatalf("HandshakeRequest round-trip failed: got %+v, want %+v", got, v)
	}
}

func TestDeviceInfo_RoundTrip(t *testing.T) {
	v := types.DeviceInfo{
		MasterFingerprint: 0x73C5DA0A,
		Model:             "vault",
		Firmware:          "1.2.0",
		Capabilities:      types.CapCardano | types.CapStellar,
	}
	got := roundTrip(t, v)
	if got != v {
		t.Fatalf("DeviceInfo round-trip failed: got %+v, want %+v", got, v)
	}
	if got.FingerprintHex() != "73c5da0a" {
		t.Fatalf("FingerprintHex = %q", got.FingerprintHex())
	}
}

func TestCapabilities(t *testing.T) {
	c := types.CapBitcoin | types.CapStellar
	if !c.Has(types.CapBitcoin) || c.Has(types.CapCardano) {
		t.Fatalf("Has wrong for %s", c)
	}
	if c.String() != "Bitcoin|Stellar" {
		t.Fatalf("String = %q", c.String())
	}
	if types.Capabilities(0).String() != "none" {
		t.Fatal("empty capabilities should render as none")
	}
	if !types.CapAll.Has(c) {
		t.Fatal("CapAll should include every capability")
	}
}
