package frame

import (
	"encoding/binary"
	"errors"
)

// ErrBadCommandFrame marks a Codec 12 payload that does not match the
// command/response envelope this gateway expects.
var ErrBadCommandFrame = errors.New("frame: malformed codec 12 payload")

const (
	codec12TypeCommand  byte = 0x05
	codec12TypeResponse byte = 0x06
	codec12Quantity     byte = 0x01
)

// EncodeCommand builds a Codec 12 command payload for text (codec id
// onward; WriteFrame adds the preamble/length/CRC envelope).
func EncodeCommand(text string) []byte {
	cmd := []byte(text)
	payload := make([]byte, 0, 3+4+len(cmd)+1)
	payload = append(payload, CodecID12, codec12Quantity, codec12TypeCommand)

	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(cmd)))
	payload = append(payload, size[:]...)
	payload = append(payload, cmd...)
	payload = append(payload, codec12Quantity)
	return payload
}

// DecodeCommandResponse extracts the ASCII response text from an
// inbound Codec 12 response payload.
func DecodeCommandResponse(payload []byte) (string, error) {
	const head = 3 + 4
	if len(payload) < head+1 {
		return "", ErrBadCommandFrame
	}
	if payload[0] != CodecID12 || payload[1] != codec12Quantity || payload[2] != codec12TypeResponse {
		return "", ErrBadCommandFrame
	}
	size := binary.BigEndian.Uint32(payload[3:7])
	if uint32(len(payload)) < uint32(head)+size+1 {
		return "", ErrBadCommandFrame
	}
	return string(payload[head : head+int(size)]), nil
}
