// Package types defines the value types exchanged between a host
// application and an air-gapped signer.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. The records themselves travel as
// CBOR inside an Envelope; transport concerns (gRPC codec registration)
// are handled in the transport packages.
package types

// Fingerprint is the first four bytes of the hash160 of a master
// public key, read big-endian.
type Fingerprint uint32

// Envelope carries one encoded record. Type is the registry type name
// (for example "cardano-sign-request") and selects the decoder on the
// receiving side. Payload is the untagged CBOR map of the record.
type Envelope struct {
	Type    string `cramberry:"1"`
	Payload []byte `cramberry:"2"`
}

// IsZero reports whether the envelope carries nothing.
func (e Envelope) IsZero() bool {
	return e.Type == "" && len(e.Payload) == 0
}
