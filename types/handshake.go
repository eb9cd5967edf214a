package types

import "fmt"

// ProtocolVersion is the version of the host/signer exchange this
// package speaks.
const ProtocolVersion uint32 = 1

// HandshakeRequest is sent by the host once per session, before any
// sign request.
type HandshakeRequest struct {
	// Protocol version spoken by the host.
	Version uint32 `cramberry:"1"`
	// Human-readable name of the host application. Empty = anonymous.
	Origin string `cramberry:"2"`
}

// DeviceInfo is the signer's reply, describing itself and what it can
// sign.
type DeviceInfo struct {
	// Fingerprint of the master key the signer derives from.
	MasterFingerprint Fingerprint `cramberry:"1"`
	// Device model, free form.
	Model string `cramberry:"2"`
	// Firmware version, free form.
	Firmware string `cramberry:"3"`
	// Chains this signer supports. Drives request routing.
	Capabilities Capabilities `cramberry:"4"`
}

// FingerprintHex renders the master fingerprint as eight lowercase hex
// digits, the form used by key path parsing.
func (d DeviceInfo) FingerprintHex() string {
	return fmt.Sprintf("%08x", uint32(d.MasterFingerprint))
}
