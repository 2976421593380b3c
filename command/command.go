// Package command implements the command orchestrator: a per-IMEI
// queue of operator-issued commands, dispatch onto the device's
// active session, response correlation, and the CAN-to-Digital-Output
// fallback policy.
package command

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teltonika-gw/gateway/metrics"
	"github.com/teltonika-gw/gateway/registry"
)

// Status is a Command's position in its state machine:
// Pending -> Sent -> {Success, Failed, Timeout}; a command whose send
// fails goes from Pending straight to Failed. A Failed or Timeout
// command may re-enter Pending through Retry, up to maxRetries times.
type Status int

const (
	Pending Status = iota
	Sent
	Success
	Failed
	Timeout
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Sent:
		return "sent"
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Timeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Command is one operator-issued command and its lifecycle state.
type Command struct {
	ID          string
	IMEI        string
	Text        string
	CreatedAt   time.Time
	SentAt      time.Time
	CompletedAt time.Time
	Status      Status
	Response    string
	Attempts    uint8

	// FallbackOf, if set, is the id of the CAN command this command
	// was enqueued to retry via the Digital-Output mapping.
	FallbackOf string
}

// SessionHandle is what the orchestrator needs from an active device
// session: enough to deliver a command and to identify it to the
// registry.
type SessionHandle interface {
	registry.Handle
	SendCommand(text string) error
}

// Orchestrator owns every in-flight and queued command, keyed by its
// id, plus a per-IMEI queue and the most-recently-sent-incomplete
// pointer used for response correlation.
type Orchestrator struct {
	reg *registry.Registry
	m   *metrics.Metrics

	mu       sync.Mutex
	byID     map[string]*Command
	queues   map[string][]*Command // imei -> pending queue, FIFO
	lastSent map[string]string     // imei -> most recent Sent command id

	responseTimeout time.Duration
	maxRetries      int

	// newID is overridable in tests; defaults to uuid.NewString.
	newID func() string
}

// New constructs an Orchestrator bound to reg for session lookups,
// recording every state transition against m.
func New(reg *registry.Registry, m *metrics.Metrics, responseTimeout time.Duration, maxRetries int) *Orchestrator {
	return &Orchestrator{
		reg:             reg,
		m:               m,
		byID:            make(map[string]*Command),
		queues:          make(map[string][]*Command),
		lastSent:        make(map[string]string),
		responseTimeout: responseTimeout,
		maxRetries:      maxRetries,
		newID:           uuid.NewString,
	}
}

// Enqueue adds a new command for imei, dispatching it immediately if
// the device is currently connected, otherwise leaving it Pending
// until DrainForIMEI is called. id is generated if empty.
func (o *Orchestrator) Enqueue(imei, text, id string) *Command {
	if id == "" {
		id = o.newID()
	}
	cmd := &Command{
		ID:        id,
		IMEI:      imei,
		Text:      text,
		CreatedAt: time.Now(),
		Status:    Pending,
	}

	o.mu.Lock()
	o.byID[cmd.ID] = cmd
	o.queues[imei] = append(o.queues[imei], cmd)
	o.mu.Unlock()

	o.dispatch(imei)
	return cmd
}

// DrainForIMEI attempts to send every pending command queued for
// imei; called when a session for imei becomes Authenticated.
func (o *Orchestrator) DrainForIMEI(imei string) {
	o.dispatch(imei)
}

// dispatch sends as many queued commands for imei as the active
// session will accept, in FIFO order.
func (o *Orchestrator) dispatch(imei string) {
	entry, ok := o.reg.Lookup(imei)
	if !ok {
		return
	}
	handle, ok := entry.Handle.(SessionHandle)
	if !ok {
		return
	}

	for {
		o.mu.Lock()
		q := o.queues[imei]
		if len(q) == 0 {
			o.mu.Unlock()
			return
		}
		cmd := q[0]
		o.queues[imei] = q[1:]
		o.mu.Unlock()

		if err := handle.SendCommand(cmd.Text); err != nil {
			o.mu.Lock()
			cmd.Status = Failed
			cmd.CompletedAt = time.Now()
			cmd.Attempts++
			o.mu.Unlock()
			o.m.CommandsFailed.Inc()
			continue
		}

		o.mu.Lock()
		cmd.Status = Sent
		cmd.SentAt = time.Now()
		cmd.Attempts++
		o.lastSent[imei] = cmd.ID
		o.mu.Unlock()
		o.m.CommandsSent.Inc()
	}
}

// unknownCommandMarker is the case-insensitive substring a device
// response carries when it rejected a command.
const unknownCommandMarker = "unknown command or invalid format"

// canToDigitalOutput maps a failed CAN-control command text to its
// one-shot Digital-Output fallback.
var canToDigitalOutput = map[string]string{
	"lvcanlockalldoors":  "setdigout 1?? 2??",
	"lvcanopenalldoors":  "setdigout ?1? ?2?",
	"lvcanblockengine":   "setdigout ??0",
	"lvcanunblockengine": "setdigout ??1",
}

// Deliver correlates an inbound Codec 12 response with the most
// recently sent, not-yet-completed command for imei, marks its
// outcome, and — for a failed CAN command with a known fallback —
// enqueues the Digital-Output retry exactly once.
func (o *Orchestrator) Deliver(imei, responseText string) {
	o.mu.Lock()
	id, ok := o.lastSent[imei]
	if !ok {
		o.mu.Unlock()
		return
	}
	cmd, ok := o.byID[id]
	if !ok || cmd.Status != Sent {
		o.mu.Unlock()
		return
	}
	delete(o.lastSent, imei)

	failed := strings.Contains(strings.ToLower(responseText), unknownCommandMarker)
	cmd.Response = responseText
	cmd.CompletedAt = time.Now()
	if failed {
		cmd.Status = Failed
	} else {
		cmd.Status = Success
	}
	fallbackText, hasFallback := canToDigitalOutput[cmd.Text]
	alreadyFallback := cmd.FallbackOf != ""
	o.mu.Unlock()

	if failed {
		o.m.CommandsFailed.Inc()
	} else {
		o.m.CommandsSucceeded.Inc()
	}

	if failed && hasFallback && !alreadyFallback {
		fallback := o.Enqueue(imei, fallbackText, "")
		o.mu.Lock()
		fallback.FallbackOf = cmd.ID
		o.mu.Unlock()
	}
}

// CheckTimeouts marks every Sent command whose response_timeout has
// elapsed as Timeout. Call this periodically (e.g. from a ticker in
// the process that owns the Orchestrator).
func (o *Orchestrator) CheckTimeouts(now time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, cmd := range o.byID {
		if cmd.Status != Sent || now.Sub(cmd.SentAt) < o.responseTimeout {
			continue
		}
		cmd.Status = Timeout
		cmd.CompletedAt = now
		if o.lastSent[cmd.IMEI] == cmd.ID {
			delete(o.lastSent, cmd.IMEI)
		}
		o.m.CommandsTimedOut.Inc()
	}
}

// Retry re-enters a Failed or Timeout command into Pending, up to
// maxRetries times, and re-attempts dispatch.
func (o *Orchestrator) Retry(id string) error {
	o.mu.Lock()
	cmd, ok := o.byID[id]
	if !ok {
		o.mu.Unlock()
		return fmt.Errorf("command: unknown id %q", id)
	}
	if cmd.Status != Failed && cmd.Status != Timeout {
		o.mu.Unlock()
		return fmt.Errorf("command: %q is not retryable from status %s", id, cmd.Status)
	}
	if int(cmd.Attempts) > o.maxRetries {
		o.mu.Unlock()
		return fmt.Errorf("command: %q exhausted its retry budget", id)
	}
	cmd.Status = Pending
	imei := cmd.IMEI
	o.queues[imei] = append(o.queues[imei], cmd)
	o.mu.Unlock()

	o.m.CommandsRetried.Inc()
	o.dispatch(imei)
	return nil
}

// RetryEligible re-enters every Failed or Timeout command that has not
// exhausted its retry budget into Pending. It is meant to be driven
// from the same periodic ticker that calls CheckTimeouts, so the
// Failed|Timeout -> Pending transition actually happens on a running
// gateway rather than needing an external trigger.
func (o *Orchestrator) RetryEligible() {
	o.mu.Lock()
	ids := make([]string, 0)
	for id, cmd := range o.byID {
		if (cmd.Status == Failed || cmd.Status == Timeout) && int(cmd.Attempts) <= o.maxRetries {
			ids = append(ids, id)
		}
	}
	o.mu.Unlock()

	for _, id := range ids {
		o.Retry(id)
	}
}

// Get returns a command by id.
func (o *Orchestrator) Get(id string) (*Command, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cmd, ok := o.byID[id]
	return cmd, ok
}

// PendingCount returns the number of commands not yet in a terminal
// state, for the health endpoint.
func (o *Orchestrator) PendingCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, cmd := range o.byID {
		if cmd.Status == Pending || cmd.Status == Sent {
			n++
		}
	}
	return n
}
