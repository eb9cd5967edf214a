package urregistry

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

var requestID = []byte{0x9b, 0x1d, 0xeb, 0x4d, 0x3b, 0x7d, 0x4b, 0xad, 0x9b, 0xdd, 0x2b, 0x0d, 0x7b, 0x3d, 0xcb, 0x6d}

func TestCheckRequestEcho(t *testing.T) {
	if err := CheckRequestEcho("cardano-signature", requestID, requestID); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if err := CheckRequestEcho("cardano-signature", nil, nil); err != nil {
		t.Fatalf("two absent identifiers must match, got %v", err)
	}

	err := CheckRequestEcho("cardano-signature", requestID, nil)
	m, ok := IsRequestMismatch(err)
	if !ok {
		t.Fatalf("expected RequestMismatchError, got %v", err)
	}
	if m.Record != "cardano-signature" || m.Returned != nil {
		t.Errorf("unexpected mismatch %+v", m)
	}
	if !strings.Contains(err.Error(), "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d") || !strings.Contains(err.Error(), "<none>") {
		t.Errorf("unexpected message: %s", err)
	}
}

func TestCheckRequestEcho_CopiesIdentifiers(t *testing.T) {
	requested := append([]byte(nil), requestID...)
	err := CheckRequestEcho("btc-signature", requested, []byte{0x01})
	requested[0] = 0xFF

	m, _ := IsRequestMismatch(err)
	if m.Requested[0] != 0x9b {
		t.Fatal("mismatch error aliases the caller's slice")
	}
	if !strings.Contains(err.Error(), "01") {
		t.Errorf("malformed identifier should print as hex: %s", err)
	}
}

func TestIsRequestMismatch(t *testing.T) {
	mismatch := CheckRequestEcho("stellar-signature", requestID, nil)

	// Direct.
	if _, ok := IsRequestMismatch(mismatch); !ok {
		t.Fatal("expected IsRequestMismatch to return true")
	}

	// Wrapped.
	wrapped := fmt.Errorf("sign: %w", mismatch)
	if _, ok := IsRequestMismatch(wrapped); !ok {
		t.Fatal("expected IsRequestMismatch to find wrapped error")
	}

	// Not a mismatch.
	if _, ok := IsRequestMismatch(errors.New("other")); ok {
		t.Fatal("expected IsRequestMismatch to return false for plain error")
	}

	// Nil.
	if _, ok := IsRequestMismatch(nil); ok {
		t.Fatal("expected IsRequestMismatch to return false for nil")
	}
}
