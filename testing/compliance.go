package urtest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/cardano"
	"github.com/blockberries/urregistry/server"
	"github.com/blockberries/urregistry/types"
)

// RunDeviceSuite runs a standard compliance test suite against a
// signer to verify correct session behavior.
//
// The factory function should return a fresh device instance for each
// test. The device must accept the sample requests for every chain it
// declares.
func RunDeviceSuite(t *testing.T, factory func() urregistry.Device) {
	t.Helper()

	t.Run("handshake_reports_fingerprint", func(t *testing.T) {
		h := NewHarness(t, factory())
		info := h.Handshake()
		if info.MasterFingerprint == 0 {
			t.Error("handshake should report a master fingerprint")
		}
		if h.Server().State() != "Ready" {
			t.Errorf("expected Ready after handshake, got %s", h.Server().State())
		}
	})

	t.Run("double_handshake_rejected", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.Handshake()
		_, err := h.Conn().Handshake(context.Background(), DefaultHandshake())
		if !errors.Is(err, server.ErrInvalidState) {
			t.Errorf("second handshake: expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("sign_before_handshake_rejected", func(t *testing.T) {
		h := NewHarness(t, factory())
		env, err := urregistry.EncodeEnvelope(SampleCardanoRequest(SampleXFP))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := h.Conn().Sign(context.Background(), env); !errors.Is(err, server.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("declared_chains_sign_and_echo", func(t *testing.T) {
		h := NewHarness(t, factory())
		info := h.Handshake()
		caps, xfp := info.Capabilities, info.FingerprintHex()

		if caps.Has(types.CapCardano) {
			sig := h.SignCardano(SampleCardanoRequest(xfp))
			if len(sig.Signature()) == 0 {
				t.Error("cardano: empty signature")
			}
		}
		if caps.Has(types.CapBitcoin) {
			sig := h.SignBitcoin(SampleBitcoinRequest(xfp))
			if len(sig.Signature()) == 0 {
				t.Error("bitcoin: empty signature")
			}
		}
		if caps.Has(types.CapStellar) {
			sig := h.SignStellar(SampleStellarRequest(xfp))
			if len(sig.Signature()) == 0 {
				t.Error("stellar: empty signature")
			}
		}
	})

	t.Run("undeclared_chains_rejected", func(t *testing.T) {
		h := NewHarness(t, factory())
		info := h.Handshake()
		caps, xfp := info.Capabilities, info.FingerprintHex()

		if !caps.Has(types.CapCardano) {
			if err := h.MustReject(SampleCardanoRequest(xfp)); !errors.Is(err, urregistry.ErrUnsupportedRequest) {
				t.Errorf("cardano: expected ErrUnsupportedRequest, got %v", err)
			}
		}
		if !caps.Has(types.CapBitcoin) {
			if err := h.MustReject(SampleBitcoinRequest(xfp)); !errors.Is(err, urregistry.ErrUnsupportedRequest) {
				t.Errorf("bitcoin: expected ErrUnsupportedRequest, got %v", err)
			}
		}
		if !caps.Has(types.CapStellar) {
			if err := h.MustReject(SampleStellarRequest(xfp)); !errors.Is(err, urregistry.ErrUnsupportedRequest) {
				t.Errorf("stellar: expected ErrUnsupportedRequest, got %v", err)
			}
		}
	})

	t.Run("signature_records_rejected", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.Handshake()
		sig, err := cardano.NewSignature([]byte{0x01}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if err := h.MustReject(sig); !errors.Is(err, urregistry.ErrUnsupportedRequest) {
			t.Errorf("expected ErrUnsupportedRequest, got %v", err)
		}
	})

	t.Run("concurrent_sign_after_handshake", func(t *testing.T) {
		h := NewHarness(t, factory())
		info := h.Handshake()
		if !info.Capabilities.Has(types.CapCardano) {
			t.Skip("device does not sign cardano")
		}
		xfp := info.FingerprintHex()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := urregistry.SignCardano(context.Background(), h.Conn(), SampleCardanoRequest(xfp))
				if err != nil {
					t.Errorf("concurrent SignCardano failed: %v", err)
				}
			}()
		}
		wg.Wait()
	})

	t.Run("closed_session_rejects", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.Handshake()
		if err := h.Conn().Close(); err != nil {
			t.Fatal(err)
		}
		env, err := urregistry.EncodeEnvelope(SampleCardanoRequest(SampleXFP))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := h.Conn().Sign(context.Background(), env); !errors.Is(err, server.ErrInvalidState) {
			t.Errorf("expected ErrInvalidState after close, got %v", err)
		}
	})
}
