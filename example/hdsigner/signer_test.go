package hdsigner

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/blockberries/urregistry"
	urtest "github.com/blockberries/urregistry/testing"
	"github.com/blockberries/urregistry/types"
)

// Seed of the BIP39 mnemonic "abandon abandon ... about".
const testSeed = "5eb00bbddcf069084889a8ab9155568165f5c453ccb85e70811aaed6f6da5fc19a5ac40b389cd370d086206dec8aa6c43daea6690f20ad3d8d48b2d2ce9e38e4"

func newSigner(t *testing.T, caps types.Capabilities) *Signer {
	t.Helper()
	seed, err := hex.DecodeString(testSeed)
	if err != nil {
		t.Fatal(err)
	}
	s, err := New(seed, caps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestSigner_Compliance(t *testing.T) {
	urtest.RunDeviceSuite(t, func() urregistry.Device {
		return newSigner(t, types.CapAll)
	})
}

func TestSigner_CardanoOnlyCompliance(t *testing.T) {
	urtest.RunDeviceSuite(t, func() urregistry.Device {
		return newSigner(t, types.CapCardano)
	})
}

func TestSigner_Fingerprint(t *testing.T) {
	s := newSigner(t, types.CapAll)
	if s.Fingerprint() != 0x73C5DA0A {
		t.Fatalf("expected fingerprint 73c5da0a, got %08x", uint32(s.Fingerprint()))
	}
}

func TestSigner_BitcoinPublicKey(t *testing.T) {
	s := newSigner(t, types.CapAll)
	h := urtest.NewHarness(t, s)
	info := h.Handshake()

	sig := h.SignBitcoin(urtest.SampleBitcoinRequest(info.FingerprintHex()))
	pub := sig.PublicKey()
	if len(pub) != 33 || (pub[0] != 0x02 && pub[0] != 0x03) {
		t.Fatalf("expected compressed public key, got %x", pub)
	}

	// Same path, same key.
	again := h.SignBitcoin(urtest.SampleBitcoinRequest(info.FingerprintHex()))
	if hex.EncodeToString(again.PublicKey()) != hex.EncodeToString(pub) {
		t.Fatal("derivation is not deterministic")
	}
}

func TestSigner_ForeignKeyRejected(t *testing.T) {
	s := newSigner(t, types.CapAll)
	h := urtest.NewHarness(t, s)
	h.Handshake()

	err := h.MustReject(urtest.SampleStellarRequest("deadbeef"))
	if !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
	if len(s.Journal()) != 0 {
		t.Fatal("rejected request must not be journaled")
	}
}

func TestSigner_Journal(t *testing.T) {
	s := newSigner(t, types.CapAll)
	h := urtest.NewHarness(t, s)
	xfp := h.Handshake().FingerprintHex()

	h.SignCardano(urtest.SampleCardanoRequest(xfp))
	h.SignStellar(urtest.SampleStellarRequest(xfp))

	j := s.Journal()
	if len(j) != 2 {
		t.Fatalf("expected 2 journal entries, got %d", len(j))
	}
	if j[0].Type != "cardano-sign-request" || j[1].Type != "stellar-sign-request" {
		t.Errorf("unexpected journal order: %+v", j)
	}
	if j[0].RequestID != urtest.SampleRequestID {
		t.Errorf("expected request id %s, got %s", urtest.SampleRequestID, j[0].RequestID)
	}
}
