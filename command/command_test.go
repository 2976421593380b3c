package command

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/teltonika-gw/gateway/metrics"
	"github.com/teltonika-gw/gateway/registry"
)

type fakeSession struct {
	addr string
	sent []string
	fail bool
}

func (f *fakeSession) RemoteAddr() string { return f.addr }
func (f *fakeSession) Close(string)       {}
func (f *fakeSession) SendCommand(text string) error {
	if f.fail {
		return errors.New("fake session: send failed")
	}
	f.sent = append(f.sent, text)
	return nil
}

func newOrchestratorWithSession(imei string) (*Orchestrator, *fakeSession, *registry.Registry) {
	reg := registry.New()
	fs := &fakeSession{addr: "10.0.0.1:1"}
	reg.Insert(imei, fs, fs.addr)
	o := New(reg, metrics.New(), 15*time.Second, 3)
	seq := 0
	o.newID = func() string { seq++; return "id" + string(rune('0'+seq)) }
	return o, fs, reg
}

func TestEnqueueDispatchesWhenDeviceConnected(t *testing.T) {
	o, fs, _ := newOrchestratorWithSession("IMEI1")

	cmd := o.Enqueue("IMEI1", "getver", "X")
	if cmd.Status != Sent {
		t.Fatalf("got status %s, want Sent", cmd.Status)
	}
	if len(fs.sent) != 1 || fs.sent[0] != "getver" {
		t.Fatalf("got sent %v", fs.sent)
	}
}

func TestEnqueueQueuesWhenDeviceOffline(t *testing.T) {
	reg := registry.New()
	o := New(reg, metrics.New(), 15*time.Second, 3)

	cmd := o.Enqueue("IMEI2", "getver", "X")
	if cmd.Status != Pending {
		t.Fatalf("got status %s, want Pending", cmd.Status)
	}
}

func TestDeliverCorrelatesMostRecentSent(t *testing.T) {
	o, _, _ := newOrchestratorWithSession("IMEI1")
	cmd := o.Enqueue("IMEI1", "getver", "X")

	o.Deliver("IMEI1", "OK 1.0")

	got, _ := o.Get(cmd.ID)
	if got.Status != Success {
		t.Fatalf("got status %s, want Success", got.Status)
	}
	if got.Response != "OK 1.0" {
		t.Errorf("got response %q", got.Response)
	}
}

func TestDeliverMarksFailureOnUnknownCommandResponse(t *testing.T) {
	o, _, _ := newOrchestratorWithSession("IMEI1")
	cmd := o.Enqueue("IMEI1", "getver", "X")

	o.Deliver("IMEI1", "Unknown command or invalid format")

	got, _ := o.Get(cmd.ID)
	if got.Status != Failed {
		t.Fatalf("got status %s, want Failed", got.Status)
	}
}

func TestCanFallbackEnqueuedExactlyOnce(t *testing.T) {
	o, fs, _ := newOrchestratorWithSession("IMEI1")
	o.Enqueue("IMEI1", "lvcanlockalldoors", "X")

	o.Deliver("IMEI1", "unknown command or invalid format")

	if len(fs.sent) != 2 {
		t.Fatalf("got %d sent commands, want 2 (original + fallback): %v", len(fs.sent), fs.sent)
	}
	if fs.sent[1] != "setdigout 1?? 2??" {
		t.Errorf("got fallback command %q", fs.sent[1])
	}

	// the fallback's own failure must not produce a second fallback
	o.Deliver("IMEI1", "unknown command or invalid format")
	if len(fs.sent) != 2 {
		t.Fatalf("fallback-of-fallback should not be enqueued, got %v", fs.sent)
	}
}

func TestCheckTimeoutsMarksStaleSentCommand(t *testing.T) {
	o, _, _ := newOrchestratorWithSession("IMEI1")
	cmd := o.Enqueue("IMEI1", "getver", "X")

	future := time.Now().Add(time.Hour)
	o.CheckTimeouts(future)

	got, _ := o.Get(cmd.ID)
	if got.Status != Timeout {
		t.Fatalf("got status %s, want Timeout", got.Status)
	}
	if got := testutil.ToFloat64(o.m.CommandsTimedOut); got != 1 {
		t.Errorf("CommandsTimedOut: got %v, want 1", got)
	}
}

func TestRetryEligibleReentersTimeoutCommands(t *testing.T) {
	o, fs, _ := newOrchestratorWithSession("IMEI1")
	cmd := o.Enqueue("IMEI1", "getver", "X")
	o.CheckTimeouts(time.Now().Add(time.Hour))

	o.RetryEligible()

	got, _ := o.Get(cmd.ID)
	if got.Status != Sent {
		t.Fatalf("got status %s, want Sent after retry redispatch", got.Status)
	}
	if len(fs.sent) != 2 {
		t.Fatalf("got %d sent commands, want 2 (original + retry): %v", len(fs.sent), fs.sent)
	}
	if got := testutil.ToFloat64(o.m.CommandsRetried); got != 1 {
		t.Errorf("CommandsRetried: got %v, want 1", got)
	}
}

func TestRetryEligibleStopsAfterMaxRetries(t *testing.T) {
	o, fs, _ := newOrchestratorWithSession("IMEI1")
	o.Enqueue("IMEI1", "getver", "X")
	fs.fail = true

	for i := 0; i < o.maxRetries+2; i++ {
		o.CheckTimeouts(time.Now().Add(time.Hour * time.Duration(i+1)))
		o.RetryEligible()
	}

	if got := testutil.ToFloat64(o.m.CommandsRetried); got > float64(o.maxRetries) {
		t.Errorf("CommandsRetried: got %v, want at most %d", got, o.maxRetries)
	}
}

func TestDispatchFailureIncrementsCommandsFailed(t *testing.T) {
	o, fs, _ := newOrchestratorWithSession("IMEI1")
	fs.fail = true

	o.Enqueue("IMEI1", "getver", "X")

	if got := testutil.ToFloat64(o.m.CommandsFailed); got != 1 {
		t.Errorf("CommandsFailed: got %v, want 1", got)
	}
}
