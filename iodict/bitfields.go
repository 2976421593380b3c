package iodict

import "fmt"

// CanAdapterFamily selects which named-bit table governs the
// 517/518/519 state-flag groups, since the bit assignment in those
// groups is defined per CAN adapter firmware rather than by the AVL
// protocol itself.
type CanAdapterFamily string

const (
	FamilyDefault CanAdapterFamily = ""
	FamilyFMB     CanAdapterFamily = "fmb"
	FamilyLVCAN   CanAdapterFamily = "lvcan"
	FamilyAllCAN  CanAdapterFamily = "allcan"
)

var canStatusNames = map[byte]string{
	0x0: "connected, no data",
	0x1: "connected, receiving data",
	0x2: "not connected, needs connection",
	0x3: "not connected, doesn't need connection",
}

// securityStateBits names bits of the security state flags group from
// bit 8 upward (byte0 carries the 2-bit CAN1/2/3 connection status
// fields handled separately by decodeCanLanes).
var securityStateBits = map[CanAdapterFamily]map[int]string{
	FamilyFMB: {
		8: "ignition_on", 9: "key_in_ignition", 10: "webasto", 11: "engine_working",
		12: "standalone_engine", 13: "ready_to_drive", 14: "engine_cng", 15: "work_mode",
		16: "operator_present", 17: "interlock_active", 18: "handbrake_active", 19: "footbrake_active",
		20: "clutch_pushed", 21: "front_left_door_opened", 22: "front_right_door_opened",
		24: "rear_left_door_opened", 25: "rear_right_door_opened", 26: "electric_engine_working",
		27: "car_closed_factory_remote",
		32: "car_closed", 33: "can_module_sleep",
		40: "parking_active", 41: "drive_active", 42: "engine_lock_active",
	},
}

var controlStateBits = map[CanAdapterFamily]map[int]string{
	FamilyFMB: {
		0: "dipped_headlights", 1: "full_beam_headlights", 2: "front_fog_lamp", 3: "rear_fog_lamp",
		4: "side_lamps", 5: "rear_lamp", 6: "brake_light", 7: "reverse_lamp",
		8: "ac_on", 9: "cruise_control_on", 10: "retarder", 11: "driver_seatbelt",
		12: "front_passenger_seatbelt",
		16: "rear_seatbelt", 17: "pto_active", 18: "central_differential_locked",
		19: "front_differential_locked", 20: "rear_differential_locked",
		24: "trailer_axle_lifted",
	},
}

var indicatorStateBits = map[CanAdapterFamily]map[int]string{}

// family maps f to the family whose bit-name tables apply: a family
// with no tables of its own (including FamilyDefault) uses FamilyFMB.
func family(f CanAdapterFamily) CanAdapterFamily {
	if _, ok := securityStateBits[f]; ok {
		return f
	}
	return FamilyFMB
}

// decodeFlagBlob walks bits [startBit, startBit+bitCount) of blob
// (little-endian byte order, bit 0 is the LSB of byte 0) and returns
// the names of every set bit, falling back to fallbackPrefix+N for
// bits with no name in names.
func decodeFlagBlob(blob []byte, names map[int]string, startBit, bitCount int, fallbackPrefix string) []string {
	var set []string
	for bit := startBit; bit < startBit+bitCount; bit++ {
		byteIdx := bit / 8
		if byteIdx >= len(blob) {
			break
		}
		if blob[byteIdx]&(1<<uint(bit%8)) == 0 {
			continue
		}
		if name, ok := names[bit]; ok {
			set = append(set, name)
		} else {
			set = append(set, fmt.Sprintf("%s%d", fallbackPrefix, bit))
		}
	}
	return set
}

func decodeCanLanes(blob []byte) []string {
	if len(blob) == 0 {
		return nil
	}
	b0 := blob[0]
	var lanes []string
	for lane := 0; lane < 3; lane++ {
		shift := uint(lane * 2)
		code := (b0 >> shift) & 0x3
		lanes = append(lanes, fmt.Sprintf("can%d: %s", lane+1, canStatusNames[code]))
	}
	return lanes
}

// DecodeSecurityStateFlags renders the IO 517 (or legacy IO 132) 16-byte
// blob into a human-readable flag list for the given adapter family.
func DecodeSecurityStateFlags(blob []byte, fam CanAdapterFamily) []string {
	bits := decodeFlagBlob(blob, securityStateBits[family(fam)], 8, 8*len(blob)-8, "unknown_bit_")
	if len(bits) == 0 {
		bits = []string{"no flags active"}
	}
	return append(decodeCanLanes(blob), bits...)
}

// DecodeControlStateFlags renders the IO 518 16-byte blob.
func DecodeControlStateFlags(blob []byte, fam CanAdapterFamily) []string {
	flags := decodeFlagBlob(blob, controlStateBits[family(fam)], 0, 8*len(blob), "unknown_control_bit_")
	if len(flags) == 0 {
		return []string{"no flags active"}
	}
	return flags
}

// DecodeIndicatorStateFlags renders the IO 519 16-byte blob. The bit
// assignment is device-specific; with no table configured for the
// family, every set bit renders as indicator_bit_N.
func DecodeIndicatorStateFlags(blob []byte, fam CanAdapterFamily) []string {
	flags := decodeFlagBlob(blob, indicatorStateBits[family(fam)], 0, 8*len(blob), "indicator_bit_")
	if len(flags) == 0 {
		return []string{"no flags active"}
	}
	return flags
}

var doorNames = [6]string{
	"Driver Door",
	"Passenger Door",
	"Rear Left Door",
	"Rear Right Door",
	"Hood",
	"Trunk",
}

// DecodeDoorBitfield renders the low 6 bits of v as the set of open
// doors, in bit order.
func DecodeDoorBitfield(v uint64) []string {
	var open []string
	for bit, name := range doorNames {
		if v&(1<<uint(bit)) != 0 {
			open = append(open, name)
		}
	}
	if len(open) == 0 {
		return []string{"All Doors Closed"}
	}
	return open
}
