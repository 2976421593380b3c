package frame

import "encoding/binary"

// GpsFix is the positional element of an AVL record.
type GpsFix struct {
	LongitudeE7 int32
	LatitudeE7  int32
	AltitudeM   int16
	HeadingDeg  uint16
	Satellites  uint8
	SpeedKmh    uint16
}

// Valid reports whether the fix carries a usable position, per the
// data model: a nonzero coordinate pair and at least 3 satellites.
func (g GpsFix) Valid() bool {
	return g.LatitudeE7 != 0 && g.LongitudeE7 != 0 && g.Satellites >= 3
}

// DecodeGpsElement decodes a GPS element from a byte slice of length
// 15 (full), 13, or 8 (legacy/truncated firmware). Fields absent from
// the shorter tiers are left zero.
func DecodeGpsElement(b []byte) (GpsFix, error) {
	var g GpsFix
	if len(b) != 15 && len(b) != 13 && len(b) != 8 {
		return g, ErrTruncated
	}
	g.LongitudeE7 = int32(binary.BigEndian.Uint32(b[0:4]))
	g.LatitudeE7 = int32(binary.BigEndian.Uint32(b[4:8]))
	if len(b) >= 13 {
		g.AltitudeM = int16(binary.BigEndian.Uint16(b[8:10]))
		g.HeadingDeg = binary.BigEndian.Uint16(b[10:12])
		g.Satellites = b[12]
	}
	if len(b) == 15 {
		g.SpeedKmh = binary.BigEndian.Uint16(b[13:15])
	}
	return g, nil
}

func decodeGps(c *cursor) (GpsFix, error) {
	var n int
	switch {
	case c.remaining() >= 15:
		n = 15
	case c.remaining() >= 13:
		n = 13
	case c.remaining() >= 8:
		n = 8
	default:
		return GpsFix{}, ErrTruncated
	}
	b, err := c.bytes(n)
	if err != nil {
		return GpsFix{}, ErrTruncated
	}
	return DecodeGpsElement(b)
}

// IoValueKind distinguishes the fixed-width integer groups from the
// Codec 8 Extended variable-length (NX) group.
type IoValueKind int

const (
	KindUint IoValueKind = iota
	KindBytes
)

// IoValue is a single decoded I/O element, still in its raw wire
// shape; width-specific and dictionary-driven interpretation happens
// in package normalize.
type IoValue struct {
	Kind  IoValueKind
	Width int
	Uint  uint64
	Bytes []byte
}

// AvlRecord is one parsed AVL record from a Codec 8 / Codec 8 Extended
// batch.
type AvlRecord struct {
	TimestampMs uint64
	Priority    uint8
	GPS         GpsFix
	EventIoID   uint16
	IO          map[uint16]IoValue
}

// Batch is a decoded AVL batch: the codec id and its records in wire
// order.
type Batch struct {
	CodecID byte
	Records []AvlRecord
}

// DecodeBatch parses a Codec 8, Codec 16 (handled identically to Codec
// 8), or Codec 8 Extended AVL batch payload. payload[0] must be the
// codec id; the trailing record-count byte is checked against the
// leading one and ErrCountMismatch is returned on disagreement.
func DecodeBatch(payload []byte) (Batch, error) {
	if len(payload) < 2 {
		return Batch{}, ErrTruncated
	}
	switch payload[0] {
	case CodecID8, CodecID16:
		return decodeBatch(payload, false)
	case CodecID8Ext:
		return decodeBatch(payload, true)
	default:
		return Batch{}, ErrUnknownCodec
	}
}

func decodeBatch(payload []byte, extended bool) (Batch, error) {
	c := &cursor{buf: payload, pos: 1}
	n1, err := c.u8()
	if err != nil {
		return Batch{}, ErrTruncated
	}

	records := make([]AvlRecord, 0, n1)
	for i := 0; i < int(n1); i++ {
		rec, err := decodeRecord(c, extended)
		if err != nil {
			return Batch{}, err
		}
		records = append(records, rec)
	}

	n2, err := c.u8()
	if err != nil {
		return Batch{}, ErrTruncated
	}
	if n2 != n1 {
		return Batch{}, ErrCountMismatch
	}

	return Batch{CodecID: payload[0], Records: records}, nil
}

func decodeRecord(c *cursor, extended bool) (AvlRecord, error) {
	var rec AvlRecord

	ts, err := c.u64()
	if err != nil {
		return rec, ErrTruncated
	}
	rec.TimestampMs = ts

	pr, err := c.u8()
	if err != nil {
		return rec, ErrTruncated
	}
	rec.Priority = pr

	gps, err := decodeGps(c)
	if err != nil {
		return rec, err
	}
	rec.GPS = gps

	io, eventID, err := decodeIoElement(c, extended)
	if err != nil {
		return rec, err
	}
	rec.IO = io
	rec.EventIoID = eventID

	return rec, nil
}

func decodeIoElement(c *cursor, extended bool) (map[uint16]IoValue, uint16, error) {
	idWidth := 1
	if extended {
		idWidth = 2
	}

	eventID, err := c.id(idWidth)
	if err != nil {
		return nil, 0, ErrTruncated
	}
	if _, err := c.id(idWidth); err != nil { // total_io, advisory only
		return nil, 0, ErrTruncated
	}

	io := make(map[uint16]IoValue)
	for _, width := range [4]int{1, 2, 4, 8} {
		n, err := c.id(idWidth)
		if err != nil {
			return nil, 0, ErrTruncated
		}
		for i := 0; i < int(n); i++ {
			id, err := c.id(idWidth)
			if err != nil {
				return nil, 0, ErrTruncated
			}
			raw, err := c.bytes(width)
			if err != nil {
				return nil, 0, ErrTruncated
			}
			io[id] = IoValue{Kind: KindUint, Width: width, Uint: beUint(raw)}
		}
	}

	if extended {
		nx, err := c.u16()
		if err != nil {
			return nil, 0, ErrTruncated
		}
		for i := 0; i < int(nx); i++ {
			id, err := c.u16()
			if err != nil {
				return nil, 0, ErrTruncated
			}
			ln, err := c.u16()
			if err != nil {
				return nil, 0, ErrTruncated
			}
			raw, err := c.bytes(int(ln))
			if err != nil {
				return nil, 0, ErrTruncated
			}
			io[id] = IoValue{Kind: KindBytes, Width: int(ln), Bytes: append([]byte(nil), raw...)}
		}
	}

	return io, eventID, nil
}
