// Package gwconfig defines the gateway's runtime configuration and
// the default-filling validation applied to it before the gateway
// starts serving.
package gwconfig

import (
	"fmt"
	"time"

	"github.com/teltonika-gw/gateway/iodict"
)

// Config is the full set of tunables for one gateway process. The
// default (defined below) is applied for each unspecified value by
// Validate.
type Config struct {
	// ListenAddr is where the TCP acceptor (C7) listens for device
	// connections. Default "0.0.0.0:5000".
	ListenAddr string

	// ControlAddr is where the HTTP control plane (C8) listens.
	// Default "0.0.0.0:5001".
	ControlAddr string

	// MaxConnections caps concurrent device sessions; accepts beyond
	// this are closed immediately with no reply. Default 100.
	MaxConnections int

	// ReadIdleTimeout closes a session if no byte arrives from the
	// device for this long. Default 120s.
	ReadIdleTimeout time.Duration

	// WriteTimeout bounds a single outbound write (ACK or command).
	// Default 30s.
	WriteTimeout time.Duration

	// ResponseTimeout bounds how long the command orchestrator (C6)
	// waits for a device's Codec 12 response before marking a sent
	// command Timeout. Default 15s.
	ResponseTimeout time.Duration

	// MaxRetries is the number of times a Failed or Timeout command
	// may re-enter Pending. Default 3.
	MaxRetries int

	// CanAdapterFamily selects the bit-name table used to render the
	// IO 517/518/519 state-flag groups.
	CanAdapterFamily iodict.CanAdapterFamily

	// SinkURL is the base URL of the downstream storage API consumed
	// by the sink client (C9).
	SinkURL string

	// SinkToken, if set, is sent as a bearer token on every sink
	// request.
	SinkToken string

	// SinkBatchSize is the number of records buffered before a sink
	// POST. Default 50.
	SinkBatchSize int

	// SinkBatchTimeout is the maximum time a partial batch waits
	// before being flushed anyway. Default 5s.
	SinkBatchTimeout time.Duration

	// SinkQueueCapacity bounds the sink's internal queue; once full,
	// the oldest queued record is dropped to admit the newest.
	// Default 1000.
	SinkQueueCapacity int

	// LogDir, if set, is where the gateway would rotate log files.
	// Rotation itself is out of scope; the gateway always logs to
	// stderr and this field is carried through for operational
	// parity with the source system only.
	LogDir string
}

// Validate fills every unspecified field with its default and rejects
// out-of-range values. It returns an error rather than panicking,
// since a Config here is normally built from CLI flags or a file
// rather than compiled in.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = "0.0.0.0:5000"
	}
	if c.ControlAddr == "" {
		c.ControlAddr = "0.0.0.0:5001"
	}

	if c.MaxConnections == 0 {
		c.MaxConnections = 100
	} else if c.MaxConnections < 1 {
		return fmt.Errorf("gwconfig: MaxConnections must be positive, got %d", c.MaxConnections)
	}

	if c.ReadIdleTimeout == 0 {
		c.ReadIdleTimeout = 120 * time.Second
	} else if c.ReadIdleTimeout < 0 {
		return fmt.Errorf("gwconfig: ReadIdleTimeout must not be negative")
	}

	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	} else if c.WriteTimeout < 0 {
		return fmt.Errorf("gwconfig: WriteTimeout must not be negative")
	}

	if c.ResponseTimeout == 0 {
		c.ResponseTimeout = 15 * time.Second
	} else if c.ResponseTimeout < 0 {
		return fmt.Errorf("gwconfig: ResponseTimeout must not be negative")
	}

	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	} else if c.MaxRetries < 0 {
		return fmt.Errorf("gwconfig: MaxRetries must not be negative")
	}

	if c.CanAdapterFamily == "" {
		c.CanAdapterFamily = iodict.FamilyFMB
	}

	if c.SinkURL == "" {
		return fmt.Errorf("gwconfig: SinkURL is required")
	}

	if c.SinkBatchSize == 0 {
		c.SinkBatchSize = 50
	} else if c.SinkBatchSize < 1 {
		return fmt.Errorf("gwconfig: SinkBatchSize must be positive, got %d", c.SinkBatchSize)
	}

	if c.SinkBatchTimeout == 0 {
		c.SinkBatchTimeout = 5 * time.Second
	} else if c.SinkBatchTimeout < 0 {
		return fmt.Errorf("gwconfig: SinkBatchTimeout must not be negative")
	}

	if c.SinkQueueCapacity == 0 {
		c.SinkQueueCapacity = 1000
	} else if c.SinkQueueCapacity < 1 {
		return fmt.Errorf("gwconfig: SinkQueueCapacity must be positive, got %d", c.SinkQueueCapacity)
	}

	return nil
}
