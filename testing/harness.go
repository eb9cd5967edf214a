package urtest

import (
	"context"
	"testing"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/btc"
	"github.com/blockberries/urregistry/cardano"
	"github.com/blockberries/urregistry/local"
	"github.com/blockberries/urregistry/registry"
	"github.com/blockberries/urregistry/server"
	"github.com/blockberries/urregistry/stellar"
	"github.com/blockberries/urregistry/types"
)

// Harness provides a convenient test harness for signer developers to
// test their device against the session state machine. Records cross
// an in-process connection, so every request and response is encoded
// and decoded.
type Harness struct {
	t    *testing.T
	conn *local.Connection
}

// NewHarness creates a test harness wrapping the given device with the
// default server configuration.
func NewHarness(t *testing.T, dev urregistry.Device) *Harness {
	t.Helper()
	return &Harness{t: t, conn: local.NewConnection(dev)}
}

// NewHarnessWithConfig creates a test harness with a custom server
// configuration.
func NewHarnessWithConfig(t *testing.T, dev urregistry.Device, cfg server.Config) *Harness {
	t.Helper()
	conn, err := local.NewConnectionWithConfig(dev, cfg)
	if err != nil {
		t.Fatalf("NewConnectionWithConfig failed: %v", err)
	}
	return &Harness{t: t, conn: conn}
}

// Server returns the underlying server for direct access.
func (h *Harness) Server() *server.Server {
	return h.conn.Server()
}

// Conn returns the connection the harness talks through.
func (h *Harness) Conn() urregistry.Connection {
	return h.conn
}

// Handshake performs the session handshake with a default request.
func (h *Harness) Handshake() types.DeviceInfo {
	h.t.Helper()
	info, err := h.conn.Handshake(context.Background(), DefaultHandshake())
	if err != nil {
		h.t.Fatalf("Handshake failed: %v", err)
	}
	return info
}

// SignCardano signs req and fails the test on error.
func (h *Harness) SignCardano(req *cardano.SignRequest) *cardano.Signature {
	h.t.Helper()
	sig, err := urregistry.SignCardano(context.Background(), h.conn, req)
	if err != nil {
		h.t.Fatalf("SignCardano failed: %v", err)
	}
	return sig
}

// SignBitcoin signs req and fails the test on error.
func (h *Harness) SignBitcoin(req *btc.SignRequest) *btc.Signature {
	h.t.Helper()
	sig, err := urregistry.SignBitcoin(context.Background(), h.conn, req)
	if err != nil {
		h.t.Fatalf("SignBitcoin failed: %v", err)
	}
	return sig
}

// SignStellar signs req and fails the test on error.
func (h *Harness) SignStellar(req *stellar.SignRequest) *stellar.Signature {
	h.t.Helper()
	sig, err := urregistry.SignStellar(context.Background(), h.conn, req)
	if err != nil {
		h.t.Fatalf("SignStellar failed: %v", err)
	}
	return sig
}

// MustReject sends ri and asserts that the device refuses it,
// returning the error.
func (h *Harness) MustReject(ri registry.RegistryItem) error {
	h.t.Helper()
	env, err := urregistry.EncodeEnvelope(ri)
	if err != nil {
		h.t.Fatalf("EncodeEnvelope failed: %v", err)
	}
	if _, err := h.conn.Sign(context.Background(), env); err != nil {
		return err
	}
	h.t.Fatalf("expected %s to be rejected", ri.RegistryType().Name)
	return nil
}

// --- Helper Factories ---

// DefaultHandshake returns a handshake request at the current protocol
// version.
func DefaultHandshake() types.HandshakeRequest {
	return types.HandshakeRequest{Version: types.ProtocolVersion, Origin: "urtest"}
}

// SampleRequestID is the identifier carried by the sample requests.
const SampleRequestID = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"

// SampleXFP is the fingerprint MockDevice reports, in the form the
// sample factories take.
const SampleXFP = "73c5da0a"

// SampleCardanoRequest returns a sign request with one input and one
// extra signer, both rooted at the master fingerprint xfp.
func SampleCardanoRequest(xfp string) *cardano.SignRequest {
	req, err := cardano.ConstructSignRequest(
		[]byte{0xDE, 0xAD, 0xBE, 0xEF},
		[]cardano.UtxoData{{
			TransactionHash: "4e3a6e7fdcb0d0efa17bf79c13aed2b4cb9baf37fb1aa2e39553d5bd720c5c99",
			Index:           3,
			Amount:          "10000000",
			XFP:             xfp,
			HDPath:          "m/1852'/1815'/0'/0/0",
			Address:         "addr1qy8ac7qqy0vtulyl7wntmsxc6wex80gvcyjy33qffrhm7sh927ysx5sftuw0dlft05dz3c7revpf7jx0xnlcjz3g69mq4afdhv",
		}},
		[]cardano.CertKeyData{{
			KeyHash: "e557890352095f1cf6fd2b7d1a28e3c3cb029f48cf34ff890a28d176",
			XFP:     xfp,
			KeyPath: "m/1852'/1815'/0'/2/0",
		}},
		SampleRequestID,
		"urtest",
	)
	if err != nil {
		panic(err)
	}
	return req
}

// SampleBitcoinRequest returns a message signing request for one key
// rooted at xfp.
func SampleBitcoinRequest(xfp string) *btc.SignRequest {
	req, err := btc.ConstructSignRequest(
		[]byte("hello"),
		btc.DataTypeMessage,
		[]string{"m/84'/0'/0'/0/0"},
		xfp,
		SampleRequestID,
		[]string{"bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"},
		"urtest",
	)
	if err != nil {
		panic(err)
	}
	return req
}

// SampleStellarRequest returns a transaction hash signing request for a
// key rooted at xfp.
func SampleStellarRequest(xfp string) *stellar.SignRequest {
	req, err := stellar.ConstructSignRequest(
		make([]byte, 32),
		stellar.SignTypeTransactionHash,
		"m/44'/148'/0'",
		xfp,
		SampleRequestID,
		"urtest",
	)
	if err != nil {
		panic(err)
	}
	return req
}
