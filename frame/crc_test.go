package frame

import "testing"

func TestChecksum(t *testing.T) {
	var golden = []struct {
		data []byte
		want uint16
	}{
		{nil, 0x0000},
		{[]byte{0x00}, 0x0000},
		{[]byte{0x01, 0x02, 0x03, 0x04}, 0x0fa1},
	}
	for _, gold := range golden {
		if got := Checksum(gold.data); got != gold.want {
			t.Errorf("Checksum(% x): got %#04x, want %#04x", gold.data, got, gold.want)
		}
	}
}
