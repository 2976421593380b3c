// Package normalize turns a parsed AVL record into a typed telemetry
// record by resolving every I/O value through the I/O dictionary.
// Normalization is pure: it has no side effects and never fails — an
// I/O value that cannot be rendered under its rule simply keeps its
// raw form, and the record as a whole is still produced.
package normalize

import (
	"github.com/teltonika-gw/gateway/frame"
	"github.com/teltonika-gw/gateway/iodict"
)

// Record is the normalized form of an AvlRecord: the same positional
// and timing data, plus every I/O value resolved to a dictionary
// entry and rendered.
type Record struct {
	TimestampMs uint64
	Priority    uint8
	GPS         frame.GpsFix
	EventIoID   uint16
	IO          map[uint16]iodict.Value
}

// Normalize converts an AvlRecord into a Record, decoding every I/O value
// under fam's bitfield conventions. Ids with no dictionary entry are
// preserved with a synthesized Raw descriptor so no telemetry is lost.
func Normalize(rec frame.AvlRecord, fam iodict.CanAdapterFamily) Record {
	out := Record{
		TimestampMs: rec.TimestampMs,
		Priority:    rec.Priority,
		GPS:         rec.GPS,
		EventIoID:   rec.EventIoID,
		IO:          make(map[uint16]iodict.Value, len(rec.IO)),
	}
	for id, raw := range rec.IO {
		// Decode never errors; the call signature carries an error
		// return for parity with the rest of the decode pipeline and
		// to leave room for future validating rules.
		v, _ := iodict.Decode(id, raw, fam)
		out.IO[id] = v
	}
	return out
}
