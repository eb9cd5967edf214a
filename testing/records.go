package urtest

import (
	"bytes"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/blockberries/urregistry"
	"github.com/blockberries/urregistry/item"
	"github.com/blockberries/urregistry/registry"
)

// RecordCase is one record to put through RunRecordSuite.
type RecordCase struct {
	Name   string
	Record registry.RegistryItem
}

// RunRecordSuite checks, for every case, that the record survives an
// encode/decode cycle unchanged, that absent optional fields stay
// absent, that encoding is deterministic and that the tagged form
// decodes through the default catalog.
//
// Records are compared with cmp, which uses their Equal methods.
func RunRecordSuite(t *testing.T, cases []RecordCase) {
	t.Helper()
	catalog := urregistry.DefaultCatalog()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			rt := tc.Record.RegistryType()
			entry, ok := catalog.LookupName(rt.Name)
			if !ok || entry.Decode == nil {
				t.Fatalf("%s is not registered", rt)
			}

			data, err := registry.ToCBOR(tc.Record)
			if err != nil {
				t.Fatalf("ToCBOR: %v", err)
			}
			got, err := catalog.DecodeNamed(rt.Name, data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if diff := cmp.Diff(tc.Record, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}

			wantKeys := mapKeys(t, tc.Record.ToDataItem())
			gotKeys := mapKeys(t, got.ToDataItem())
			if !slices.Equal(wantKeys, gotKeys) {
				t.Errorf("present keys changed: want %v, got %v", wantKeys, gotKeys)
			}

			again, err := registry.ToCBOR(got)
			if err != nil {
				t.Fatalf("re-encode: %v", err)
			}
			if !bytes.Equal(data, again) {
				t.Errorf("encoding not deterministic:\n first %x\nsecond %x", data, again)
			}

			tagged, err := catalog.Decode(registry.Embed(tc.Record))
			if err != nil {
				t.Fatalf("tagged decode: %v", err)
			}
			if diff := cmp.Diff(tc.Record, tagged); diff != "" {
				t.Errorf("tagged decode mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func mapKeys(t *testing.T, it item.Item) []uint64 {
	t.Helper()
	m, ok := it.AsMap()
	if !ok {
		t.Fatalf("record encoded as %s, want map", it.Kind())
	}
	return m.Keys()
}
