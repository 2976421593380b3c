package iodict

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/teltonika-gw/gateway/frame"
)

// Value is a fully decoded I/O element: the descriptor it matched (or
// a synthesized Unknown one), the untouched raw integer/bytes, and the
// rendered display string.
type Value struct {
	Descriptor Descriptor
	RawUint    uint64
	RawBytes   []byte
	Rendered   string
}

// Decode renders a raw wire value according to id's dictionary entry.
// Any id is accepted: ids absent from the table render as Raw so no
// value is ever dropped. Decode never fails — a value that cannot be
// interpreted per its rule still renders, falling back to a plain
// number or hex dump, and the original raw value is always kept on
// the returned Value regardless of how rendering went.
func Decode(id uint16, raw frame.IoValue, fam CanAdapterFamily) (Value, error) {
	desc, ok := Lookup(id)
	if !ok {
		desc = Unknown(id)
	}

	rawUint, rawBytes, width := raw.Uint, raw.Bytes, raw.Width
	v := Value{Descriptor: desc, RawUint: rawUint, RawBytes: rawBytes}

	// Codec 8 Extended's NX group carries bytes directly; every other
	// group is a fixed-width unsigned integer already widened by the
	// frame decoder.
	isBytes := raw.Kind == frame.KindBytes

	switch desc.Decode {
	case Raw:
		v.Rendered = fmt.Sprintf("%d", rawUint)
		if isBytes {
			v.Rendered = hex.EncodeToString(rawBytes)
		}
	case Boolean:
		v.Rendered = fmt.Sprintf("%v", rawUint != 0)
	case Percent:
		v.Rendered = fmt.Sprintf("%d%%", rawUint)
	case VoltageMilliVoltsToVolts:
		v.Rendered = fmt.Sprintf("%.2f", float64(rawUint)/1000.0)
	case CurrentMilliamps:
		v.Rendered = fmt.Sprintf("%d mA", rawUint)
	case SpeedKmh:
		v.Rendered = fmt.Sprintf("%d km/h", rawUint)
	case Rpm:
		v.Rendered = fmt.Sprintf("%d rpm", rawUint)
	case TempTenthC:
		v.Rendered = fmt.Sprintf("%.1f C", signed(rawUint, width)/10.0)
	case TempIntC:
		v.Rendered = fmt.Sprintf("%.0f C", signed(rawUint, width))
	case SignedAccelMg:
		v.Rendered = fmt.Sprintf("%.0f mG", signed(rawUint, width))
	case DistanceMeters:
		v.Rendered = fmt.Sprintf("%d m", rawUint)
	case DistanceKmFromMeters:
		v.Rendered = fmt.Sprintf("%.3f km (%d m)", float64(rawUint)/1000.0, rawUint)
	case PdopHdopHundredths:
		v.Rendered = fmt.Sprintf("%.2f", float64(rawUint)/100.0)
	case GnssStatusEnum:
		v.Rendered = enumName(gnssStatusNames, rawUint)
	case DataModeEnum:
		v.Rendered = enumName(dataModeNames, rawUint)
	case SleepModeEnum:
		v.Rendered = enumName(sleepModeNames, rawUint)
	case BtStatusEnum:
		v.Rendered = enumName(btStatusNames, rawUint)
	case WakeReasonEnum:
		v.Rendered = enumName(wakeReasonNames, rawUint)
	case NetworkTypeEnum:
		v.Rendered = enumName(networkTypeNames, rawUint)
	case GsmSignal0to5:
		v.Rendered = fmt.Sprintf("%d/5", rawUint)
	case IccidHex16:
		v.Rendered = iccidHex(rawUint, rawBytes, isBytes)
	case DoorBitfield:
		v.Rendered = strings.Join(DecodeDoorBitfield(rawUint), ", ")
	case SecurityStateFlags16B:
		v.Rendered = strings.Join(DecodeSecurityStateFlags(flagBlob(rawUint, rawBytes, isBytes, width), fam), ", ")
	case ControlStateFlags16B:
		v.Rendered = strings.Join(DecodeControlStateFlags(flagBlob(rawUint, rawBytes, isBytes, width), fam), ", ")
	case IndicatorStateFlags16B:
		v.Rendered = strings.Join(DecodeIndicatorStateFlags(flagBlob(rawUint, rawBytes, isBytes, width), fam), ", ")
	case HexString:
		v.Rendered = hexString(rawUint, rawBytes, isBytes, width)
	default:
		v.Rendered = fmt.Sprintf("%d", rawUint)
	}

	return v, nil
}

func signed(v uint64, width int) float64 {
	switch width {
	case 1:
		return float64(int8(v))
	case 2:
		return float64(int16(v))
	case 4:
		return float64(int32(v))
	default:
		return float64(int64(v))
	}
}

// flagBlob normalizes either a byte group or an integer group into a
// little-endian byte slice so the bitfield decoders have one shape to
// walk regardless of how the device actually sent it.
func flagBlob(rawUint uint64, rawBytes []byte, isBytes bool, width int) []byte {
	if isBytes {
		return rawBytes
	}
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		buf[i] = byte(rawUint >> uint(8*i))
	}
	return buf
}

func hexString(rawUint uint64, rawBytes []byte, isBytes bool, width int) string {
	if isBytes {
		return hex.EncodeToString(rawBytes)
	}
	buf := flagBlob(rawUint, nil, false, width)
	// render big-endian for readability, matching how these ids are
	// usually printed (module/driver card identifiers)
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return hex.EncodeToString(buf)
}

func iccidHex(rawUint uint64, rawBytes []byte, isBytes bool) string {
	if isBytes {
		return hex.EncodeToString(rawBytes)
	}
	return fmt.Sprintf("%x", rawUint)
}
