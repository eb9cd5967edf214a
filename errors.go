package urregistry

import (
	"errors"
	"fmt"

	"github.com/blockberries/urregistry/registry"
)

var (
	// ErrUnsupportedRequest is returned when a record cannot be signed:
	// it is not a sign request, or the signer lacks the capability.
	ErrUnsupportedRequest = errors.New("urregistry: unsupported sign request")

	// ErrUnexpectedResponse is returned when a signer answers with a
	// record of the wrong type.
	ErrUnexpectedResponse = errors.New("urregistry: unexpected response type")
)

// RequestMismatchError signals that a signature does not echo the
// identifier of the request it answers.
//
// When the host receives a RequestMismatchError it must discard the
// signature; it may belong to a different request.
type RequestMismatchError struct {
	Record    string
	Requested []byte
	Returned  []byte
}

func (e *RequestMismatchError) Error() string {
	return fmt.Sprintf("urregistry: %s answers request %s, want %s",
		e.Record, describeID(e.Returned), describeID(e.Requested))
}

func describeID(id []byte) string {
	if id == nil {
		return "<none>"
	}
	if s := registry.FormatRequestID(id); s != "" {
		return s
	}
	return fmt.Sprintf("%x", id)
}

// CheckRequestEcho returns a RequestMismatchError unless returned
// equals requested. Two absent identifiers match.
func CheckRequestEcho(record string, requested, returned []byte) error {
	if registry.SameRequestID(requested, returned) {
		return nil
	}
	return &RequestMismatchError{
		Record:    record,
		Requested: registry.CloneBytes(requested),
		Returned:  registry.CloneBytes(returned),
	}
}

// IsRequestMismatch checks whether an error is a RequestMismatchError
// and returns it.
func IsRequestMismatch(err error) (*RequestMismatchError, bool) {
	var m *RequestMismatchError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}
