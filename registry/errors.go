package registry

import (
	"errors"
	"fmt"
)

// Kind is a stable category for schema errors. Branch on Kind, not on
// error strings.
type Kind string

const (
	KindMissingField   Kind = "MissingRequiredField"
	KindMalformedField Kind = "MalformedField"
)

// FieldError reports a required key absent from a record map, or a
// present value of the wrong shape. Decoding stops at the first
// FieldError and returns no record.
type FieldError struct {
	Kind   Kind
	Record string
	Field  string
	Key    uint64
	Reason string
	Cause  error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%s: %s: field %s (key %d)", e.Record, e.Kind, e.Field, e.Key)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() error { return e.Cause }

// MissingField creates a FieldError of kind KindMissingField.
func MissingField(record, field string, key uint64) *FieldError {
	return &FieldError{Kind: KindMissingField, Record: record, Field: field, Key: key}
}

// MalformedField creates a FieldError of kind KindMalformedField.
func MalformedField(record, field string, key uint64, format string, args ...any) *FieldError {
	return &FieldError{
		Kind:   KindMalformedField,
		Record: record,
		Field:  field,
		Key:    key,
		Reason: fmt.Sprintf(format, args...),
	}
}

// IsMissingField checks whether err is a missing-field error and returns it.
func IsMissingField(err error) (*FieldError, bool) {
	return isKind(err, KindMissingField)
}

// IsMalformedField checks whether err is a malformed-field error and returns it.
func IsMalformedField(err error) (*FieldError, bool) {
	return isKind(err, KindMalformedField)
}

func isKind(err error, kind Kind) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) && fe.Kind == kind {
		return fe, true
	}
	return nil, false
}

// DuplicateTagError is returned by Catalog.Register when a tag or a
// type name is already bound to a different registry type.
type DuplicateTagError struct {
	Existing RegistryType
	Incoming RegistryType
}

func (e *DuplicateTagError) Error() string {
	return fmt.Sprintf("registry: %s conflicts with registered %s", e.Incoming, e.Existing)
}

// IsDuplicateTag checks whether err is a DuplicateTagError and returns it.
func IsDuplicateTag(err error) (*DuplicateTagError, bool) {
	var d *DuplicateTagError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

var (
	// ErrCatalogClosed is returned when a new type is registered after
	// the catalog has been closed.
	ErrCatalogClosed = errors.New("registry: catalog is closed")

	// ErrUnknownType is returned when a tag or type name has no
	// registered decoder.
	ErrUnknownType = errors.New("registry: unknown registry type")
)
