package item

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

type entry struct {
	key   uint64
	value Item
}

// Map is a map from unsigned integer keys to items. Entries are kept in
// ascending key order regardless of insertion order, which is also the
// order the canonical encoder emits.
type Map struct {
	entries []entry
}

// NewMap returns an empty map.
func NewMap() *Map { return &Map{} }

// Set stores v under key, replacing any previous value.
func (m *Map) Set(key uint64, v Item) {
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].key >= key })
	if i < len(m.entries) && m.entries[i].key == key {
		m.entries[i].value = v
		return
	}
	m.entries = slices.Insert(m.entries, i, entry{key: key, value: v})
}

// Get returns the value stored under key.
func (m *Map) Get(key uint64) (Item, bool) {
	if m == nil {
		return Item{}, false
	}
	i := sort.Search(len(m.entries), func(i int) bool { return m.entries[i].key >= key })
	if i < len(m.entries) && m.entries[i].key == key {
		return m.entries[i].value, true
	}
	return Item{}, false
}

// Has reports whether key is present.
func (m *Map) Has(key uint64) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key if present.
func (m *Map) Delete(key uint64) {
	if m == nil {
		return
	}
	m.entries = slices.DeleteFunc(m.entries, func(e entry) bool { return e.key == key })
}

// Keys returns the keys in ascending order.
func (m *Map) Keys() []uint64 {
	if m == nil {
		return nil
	}
	keys := make([]uint64, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.key
	}
	return keys
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Clone returns a shallow copy of m. Items are values, so the copy
// shares no mutable state with m.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	return &Map{entries: slices.Clone(m.entries)}
}

// Equal reports whether both maps hold equal items under the same keys.
func (m *Map) Equal(other *Map) bool {
	if m.Len() != other.Len() {
		return false
	}
	for i := range m.Len() {
		a, b := m.entries[i], other.entries[i]
		if a.key != b.key || !a.value.Equal(b.value) {
			return false
		}
	}
	return true
}

func (m *Map) String() string {
	if m == nil {
		return "{}"
	}
	parts := make([]string, 0, m.Len())
	for _, e := range m.entries {
		parts = append(parts, fmt.Sprintf("%d: %s", e.key, e.value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
