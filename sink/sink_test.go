package sink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/teltonika-gw/gateway/frame"
	"github.com/teltonika-gw/gateway/iodict"
	"github.com/teltonika-gw/gateway/metrics"
	"github.com/teltonika-gw/gateway/normalize"
)

func TestClientBatchesBySize(t *testing.T) {
	var posts int32
	var lastBatch []Record

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&posts, 1)
		json.NewDecoder(r.Body).Decode(&lastBatch)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, "", 100, 2, time.Hour, metrics.New(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	c.Submit(Record{IMEI: "A"})
	c.Submit(Record{IMEI: "B"})

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&posts) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	if atomic.LoadInt32(&posts) == 0 {
		t.Fatal("expected at least one batch post")
	}
	if len(lastBatch) != 2 {
		t.Fatalf("got batch of %d, want 2", len(lastBatch))
	}

	if c.Counters().TotalSent < 2 {
		t.Errorf("got TotalSent %d, want >= 2", c.Counters().TotalSent)
	}
}

func TestSubmitDropsOldestWhenFull(t *testing.T) {
	c := New("http://unused.invalid", "", 1, 1000, time.Hour, metrics.New(), nil)
	c.Submit(Record{IMEI: "first"})
	c.Submit(Record{IMEI: "second"})

	got := <-c.queue
	if got.IMEI != "second" {
		t.Errorf("got %q, want second (oldest dropped)", got.IMEI)
	}
	if c.Counters().TotalDropped != 1 {
		t.Errorf("got TotalDropped %d, want 1", c.Counters().TotalDropped)
	}
}

func TestToRecordConvertsGpsAndIo(t *testing.T) {
	rec := normalize.Normalize(frame.AvlRecord{
		TimestampMs: 5,
		GPS:         frame.GpsFix{LatitudeE7: 456000000, LongitudeE7: 123000000, Satellites: 9},
		IO: map[uint16]frame.IoValue{
			239: {Kind: frame.KindUint, Width: 1, Uint: 1},
		},
	}, iodict.FamilyDefault)

	got := ToRecord("IMEI", rec)
	if got.GPS.Latitude != 45.6 {
		t.Errorf("latitude: got %v, want 45.6", got.GPS.Latitude)
	}
	if got.IO["239"] != uint64(1) {
		t.Errorf("io[239]: got %v, want 1", got.IO["239"])
	}
	if got.Timestamp == "" {
		t.Error("timestamp: got empty string")
	}
}
