package metrics

import "testing"

func TestNewRegistersEveryCollector(t *testing.T) {
	m := New()
	m.FramesDecoded.Inc()
	m.ConnectedDevices.Set(3)

	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 11 {
		t.Fatalf("got %d metric families, want 11", len(families))
	}
}
