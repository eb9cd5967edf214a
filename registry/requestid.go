package registry

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/blockberries/urregistry/item"
)

// RequestIDSize is the length of a request identifier in bytes.
const RequestIDSize = 16

// ParseRequestID converts a textual UUID into its 16 canonical bytes.
// An empty string yields nil, meaning no identifier.
func ParseRequestID(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("registry: request id %q: %w", s, err)
	}
	return id[:], nil
}

// FormatRequestID renders a 16-byte identifier in canonical UUID form.
// It returns "" for nil and for values of the wrong length.
func FormatRequestID(id []byte) string {
	u, err := uuid.FromBytes(id)
	if err != nil {
		return ""
	}
	return u.String()
}

// NewRequestID returns a fresh random identifier.
func NewRequestID() []byte {
	id := uuid.New()
	return id[:]
}

// RequestIDItem returns id as a byte string tagged with the UUID tag.
func RequestIDItem(id []byte) item.Item {
	return item.Bytes(id).WithTag(UUID.Tag)
}

// CheckRequestID validates the length of an optional identifier handed
// to a record constructor.
func CheckRequestID(record string, id []byte) error {
	if id != nil && len(id) != RequestIDSize {
		return MalformedField(record, "requestId", 1, "got %d bytes, want %d", len(id), RequestIDSize)
	}
	return nil
}

// SameRequestID reports whether two optional identifiers match. Two
// absent identifiers match.
func SameRequestID(a, b []byte) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return bytes.Equal(a, b)
}

// CloneBytes copies an optional byte field, keeping nil as nil.
func CloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return bytes.Clone(b)
}
