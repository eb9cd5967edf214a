package types

import "strings"

// Capabilities is a bitfield declaring which chains the signer can
// sign for.
type Capabilities uint8

const (
	CapBitcoin Capabilities = 1 << iota // 0b001
	CapCardano                          // 0b010
	CapStellar                          // 0b100
)

// CapAll is every capability this package knows about.
const CapAll = CapBitcoin | CapCardano | CapStellar

// Has returns true if all bits in cap are set.
func (c Capabilities) Has(cap Capabilities) bool {
	return c&cap == cap
}

// String returns a human-readable representation.
func (c Capabilities) String() string {
	var caps []string
	if c.Has(CapBitcoin) {
		caps = append(caps, "Bitcoin")
	}
	if c.Has(CapCardano) {
		caps = append(caps, "Cardano")
	}
	if c.Has(CapStellar) {
		caps = append(caps, "Stellar")
	}
	if len(caps) == 0 {
		return "none"
	}
	return strings.Join(caps, "|")
}
