package registry

import (
	"strconv"

	"github.com/blockberries/urregistry/item"
)

// DecodeConfig controls how strictly records are decoded.
type DecodeConfig struct {
	// StrictTags rejects nested collection elements that carry no tag.
	// Elements tagged with a foreign type are rejected in every mode.
	StrictTags bool
}

// DecodeOption configures a decode call.
type DecodeOption func(*DecodeConfig)

// StrictTags requires every nested entity to carry its own tag.
func StrictTags() DecodeOption {
	return func(c *DecodeConfig) { c.StrictTags = true }
}

// NewDecodeConfig applies opts to the default configuration.
func NewDecodeConfig(opts ...DecodeOption) DecodeConfig {
	var c DecodeConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}

// Fields reads the keys of one record map. Keys the record does not
// know about are ignored.
type Fields struct {
	rt   RegistryType
	m    *item.Map
	cfg  DecodeConfig
	opts []DecodeOption
}

// ReadFields checks that it is a map, tagged with rt's tag or not at
// all, and returns a reader over its keys.
func ReadFields(it item.Item, rt RegistryType, opts ...DecodeOption) (*Fields, error) {
	if tag, ok := it.Tag(); ok && tag != rt.Tag {
		return nil, MalformedField(rt.Name, "tag", 0, "item tagged %d, want %d", tag, rt.Tag)
	}
	m, ok := it.AsMap()
	if !ok {
		return nil, MalformedField(rt.Name, "map", 0, "got %s, want map", it.Kind())
	}
	return &Fields{rt: rt, m: m, cfg: NewDecodeConfig(opts...), opts: opts}, nil
}

// Options returns the decode options to forward to nested decoders.
func (f *Fields) Options() []DecodeOption { return f.opts }

// Has reports whether key is present.
func (f *Fields) Has(key uint64) bool { return f.m.Has(key) }

func (f *Fields) require(key uint64, field string) (item.Item, error) {
	v, ok := f.m.Get(key)
	if !ok {
		return item.Item{}, MissingField(f.rt.Name, field, key)
	}
	return v, nil
}

func (f *Fields) wrongKind(key uint64, field string, got item.Item, want item.Kind) error {
	return MalformedField(f.rt.Name, field, key, "got %s, want %s", got.Kind(), want)
}

// Bytes reads a required byte string.
func (f *Fields) Bytes(key uint64, field string) ([]byte, error) {
	v, err := f.require(key, field)
	if err != nil {
		return nil, err
	}
	b, ok := v.AsBytes()
	if !ok {
		return nil, f.wrongKind(key, field, v, item.KindBytes)
	}
	return b, nil
}

// FixedBytes reads a required byte string of exactly n bytes.
func (f *Fields) FixedBytes(key uint64, field string, n int) ([]byte, error) {
	b, err := f.Bytes(key, field)
	if err != nil {
		return nil, err
	}
	if len(b) != n {
		return nil, MalformedField(f.rt.Name, field, key, "got %d bytes, want %d", len(b), n)
	}
	return b, nil
}

// OptionalBytes reads a byte string that may be absent.
func (f *Fields) OptionalBytes(key uint64, field string) ([]byte, bool, error) {
	if !f.m.Has(key) {
		return nil, false, nil
	}
	b, err := f.Bytes(key, field)
	return b, err == nil, err
}

// Text reads a required text string.
func (f *Fields) Text(key uint64, field string) (string, error) {
	v, err := f.require(key, field)
	if err != nil {
		return "", err
	}
	s, ok := v.AsText()
	if !ok {
		return "", f.wrongKind(key, field, v, item.KindText)
	}
	return s, nil
}

// OptionalText reads a text string that may be absent.
func (f *Fields) OptionalText(key uint64, field string) (string, bool, error) {
	if !f.m.Has(key) {
		return "", false, nil
	}
	s, err := f.Text(key, field)
	return s, err == nil, err
}

// Uint reads a required unsigned integer no larger than max.
func (f *Fields) Uint(key uint64, field string, max uint64) (uint64, error) {
	v, err := f.require(key, field)
	if err != nil {
		return 0, err
	}
	u, ok := v.AsUint()
	if !ok {
		return 0, f.wrongKind(key, field, v, item.KindUint)
	}
	if u > max {
		return 0, MalformedField(f.rt.Name, field, key, "value %d exceeds %d", u, max)
	}
	return u, nil
}

// OptionalUint reads an unsigned integer that may be absent.
func (f *Fields) OptionalUint(key uint64, field string, max uint64) (uint64, bool, error) {
	if !f.m.Has(key) {
		return 0, false, nil
	}
	u, err := f.Uint(key, field, max)
	return u, err == nil, err
}

// OptionalTexts reads an array of text strings that may be absent.
func (f *Fields) OptionalTexts(key uint64, field string) ([]string, bool, error) {
	v, ok := f.m.Get(key)
	if !ok {
		return nil, false, nil
	}
	elems, ok := v.AsArray()
	if !ok {
		return nil, false, f.wrongKind(key, field, v, item.KindArray)
	}
	out := make([]string, len(elems))
	for i, e := range elems {
		s, ok := e.AsText()
		if !ok {
			return nil, false, MalformedField(f.rt.Name, field, key, "element %d: got %s, want text", i, e.Kind())
		}
		out[i] = s
	}
	return out, true, nil
}

// RequestID reads the optional request identifier. The tag on the
// stored value is not checked; the value must be a 16-byte string.
// A nil result means the key is absent.
func (f *Fields) RequestID(key uint64) ([]byte, error) {
	v, ok := f.m.Get(key)
	if !ok {
		return nil, nil
	}
	b, ok := v.AsBytes()
	if !ok {
		return nil, f.wrongKind(key, "requestId", v, item.KindBytes)
	}
	if len(b) != RequestIDSize {
		return nil, MalformedField(f.rt.Name, "requestId", key, "got %d bytes, want %d", len(b), RequestIDSize)
	}
	return b, nil
}

// Array reads a required array.
func (f *Fields) Array(key uint64, field string) ([]item.Item, error) {
	v, err := f.require(key, field)
	if err != nil {
		return nil, err
	}
	elems, ok := v.AsArray()
	if !ok {
		return nil, f.wrongKind(key, field, v, item.KindArray)
	}
	return elems, nil
}

// Entity reads a required nested entity of type rt.
func (f *Fields) Entity(key uint64, field string, rt RegistryType) (item.Item, error) {
	v, err := f.require(key, field)
	if err != nil {
		return item.Item{}, err
	}
	if err := f.checkTag(key, field, rt, v, -1); err != nil {
		return item.Item{}, err
	}
	return v, nil
}

// Entities reads a required array of nested entities of type rt, in
// encoded order.
func (f *Fields) Entities(key uint64, field string, rt RegistryType) ([]item.Item, error) {
	elems, err := f.Array(key, field)
	if err != nil {
		return nil, err
	}
	for i, e := range elems {
		if err := f.checkTag(key, field, rt, e, i); err != nil {
			return nil, err
		}
	}
	return elems, nil
}

func (f *Fields) checkTag(key uint64, field string, rt RegistryType, v item.Item, index int) error {
	where := "value"
	if index >= 0 {
		where = "element " + strconv.Itoa(index)
	}
	tag, tagged := v.Tag()
	switch {
	case tagged && tag != rt.Tag:
		return MalformedField(f.rt.Name, field, key, "%s tagged %d, want %s", where, tag, rt)
	case !tagged && f.cfg.StrictTags && rt.HasTag():
		return MalformedField(f.rt.Name, field, key, "%s untagged, want %s", where, rt)
	}
	return nil
}

// DecodeEntities decodes each nested entity under key with dec,
// preserving order. Errors from dec are returned unchanged.
func DecodeEntities[T any](f *Fields, key uint64, field string, rt RegistryType, dec func(item.Item, ...DecodeOption) (T, error)) ([]T, error) {
	elems, err := f.Entities(key, field, rt)
	if err != nil {
		return nil, err
	}
	out := make([]T, len(elems))
	for i, e := range elems {
		v, err := dec(e, f.opts...)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
