package frame

import (
	"bytes"
	"encoding/hex"
	"testing"
)

// TestReadPayloadSingleRecord decodes a full preamble/length/CRC
// envelope wrapping a single Codec 8 record with no I/O elements, GPS
// satellites=9 and speed=1 km/h.
func TestReadPayloadSingleRecord(t *testing.T) {
	const wire = "000000000000002108010000016b40d8ea30010f0ea02000006400000a0000090001000000000000010000ce64"
	raw, err := hex.DecodeString(wire)
	if err != nil {
		t.Fatal(err)
	}

	payload, err := ReadPayload(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}

	batch, err := DecodeBatch(payload)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(batch.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(batch.Records))
	}

	rec := batch.Records[0]
	if rec.GPS.Satellites != 9 {
		t.Errorf("satellites: got %d, want 9", rec.GPS.Satellites)
	}
	if rec.GPS.SpeedKmh != 1 {
		t.Errorf("speed: got %d, want 1", rec.GPS.SpeedKmh)
	}
	if len(rec.IO) != 0 {
		t.Errorf("got %d io elements, want 0", len(rec.IO))
	}

	var ack bytes.Buffer
	if err := WriteAck(&ack, len(batch.Records)); err != nil {
		t.Fatal(err)
	}
	if got := hex.EncodeToString(ack.Bytes()); got != "00000001" {
		t.Errorf("ack: got %s, want 00000001", got)
	}
}

// TestReadPayloadCRCMismatch flips the last CRC byte of an otherwise
// valid frame and expects rejection.
func TestReadPayloadCRCMismatch(t *testing.T) {
	const wire = "000000000000002108010000016b40d8ea30010f0ea02000006400000a0000090001000000000000010000ce65"
	raw, err := hex.DecodeString(wire)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPayload(bytes.NewReader(raw)); err != ErrCRCMismatch {
		t.Fatalf("got %v, want ErrCRCMismatch", err)
	}
}

func TestReadPayloadBadPreamble(t *testing.T) {
	raw, _ := hex.DecodeString("00000001" + "00000001" + "00" + "00000000")
	if _, err := ReadPayload(bytes.NewReader(raw)); err != ErrBadPreamble {
		t.Fatalf("got %v, want ErrBadPreamble", err)
	}
}

func TestDecodeBatchCountMismatch(t *testing.T) {
	// n1=1, one record (timestamp, priority, 15-byte GPS, no I/O), n2=2
	mismatched := []byte{CodecID8, 0x01}
	mismatched = append(mismatched, make([]byte, 8+1+15+6)...)
	mismatched = append(mismatched, 0x02)
	if _, err := DecodeBatch(mismatched); err != ErrCountMismatch {
		t.Fatalf("got %v, want ErrCountMismatch", err)
	}

	// n1=2 with no record bytes following at all
	payload := []byte{CodecID8, 0x02}
	if _, err := DecodeBatch(payload); err != ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated for short batch", err)
	}
}

func TestDecodeGpsElementTiers(t *testing.T) {
	full := make([]byte, 15)
	full[12] = 7 // satellites
	if g, err := DecodeGpsElement(full); err != nil || g.Satellites != 7 {
		t.Errorf("15-byte tier: got (%+v, %v)", g, err)
	}

	thirteen := make([]byte, 13)
	thirteen[12] = 4
	if g, err := DecodeGpsElement(thirteen); err != nil || g.Satellites != 4 || g.SpeedKmh != 0 {
		t.Errorf("13-byte tier: got (%+v, %v)", g, err)
	}

	eight := make([]byte, 8)
	if g, err := DecodeGpsElement(eight); err != nil || g.Satellites != 0 {
		t.Errorf("8-byte tier: got (%+v, %v)", g, err)
	}

	if _, err := DecodeGpsElement(make([]byte, 10)); err != ErrTruncated {
		t.Errorf("10-byte slice: got %v, want ErrTruncated", err)
	}
}

func TestGpsFixValid(t *testing.T) {
	var golden = []struct {
		fix  GpsFix
		want bool
	}{
		{GpsFix{}, false},
		{GpsFix{LatitudeE7: 1, LongitudeE7: 1, Satellites: 2}, false},
		{GpsFix{LatitudeE7: 1, LongitudeE7: 1, Satellites: 3}, true},
		{GpsFix{LatitudeE7: 0, LongitudeE7: 1, Satellites: 9}, false},
	}
	for _, gold := range golden {
		if got := gold.fix.Valid(); got != gold.want {
			t.Errorf("%+v.Valid(): got %v, want %v", gold.fix, got, gold.want)
		}
	}
}

func TestEncodeDecodeCommand(t *testing.T) {
	payload := EncodeCommand("setdigout ??1")
	if payload[0] != CodecID12 {
		t.Fatalf("codec id: got %#x, want %#x", payload[0], CodecID12)
	}

	// synthesize a device response envelope carrying "OK"
	resp := append([]byte{CodecID12, 0x01, codec12TypeResponse, 0, 0, 0, 2}, []byte("OK")...)
	resp = append(resp, 0x01)
	text, err := DecodeCommandResponse(resp)
	if err != nil {
		t.Fatalf("DecodeCommandResponse: %v", err)
	}
	if text != "OK" {
		t.Errorf("got %q, want OK", text)
	}
}

func TestDecodeCommandResponseRejectsCommandEnvelope(t *testing.T) {
	payload := EncodeCommand("getver")
	if _, err := DecodeCommandResponse(payload); err != ErrBadCommandFrame {
		t.Fatalf("got %v, want ErrBadCommandFrame", err)
	}
}
