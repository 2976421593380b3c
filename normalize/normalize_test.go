package normalize

import (
	"testing"

	"github.com/teltonika-gw/gateway/frame"
	"github.com/teltonika-gw/gateway/iodict"
)

func TestNormalizePreservesUnknownIds(t *testing.T) {
	rec := frame.AvlRecord{
		TimestampMs: 1000,
		Priority:    1,
		IO: map[uint16]frame.IoValue{
			239:   {Kind: frame.KindUint, Width: 1, Uint: 1},
			65000: {Kind: frame.KindUint, Width: 2, Uint: 7},
		},
	}

	got := Normalize(rec, iodict.FamilyDefault)
	if len(got.IO) != 2 {
		t.Fatalf("got %d io values, want 2", len(got.IO))
	}
	ignition, ok := got.IO[239]
	if !ok || ignition.Rendered != "true" {
		t.Errorf("ignition: got %+v", ignition)
	}
	unknown, ok := got.IO[65000]
	if !ok || unknown.RawUint != 7 {
		t.Errorf("unknown id: got %+v", unknown)
	}
}
