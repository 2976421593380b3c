// Package sink buffers normalized records and device-connection
// events and delivers them to the downstream storage API in batches,
// with bounded-backoff retry and oldest-drop backpressure.
package sink

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/teltonika-gw/gateway/metrics"
	"github.com/teltonika-gw/gateway/normalize"
)

// renderTZ is the fixed offset the sink renders record timestamps
// under, per the storage API's wire contract.
var renderTZ = time.FixedZone("", 3*60*60)

// Record is the wire shape posted to the sink's /gps endpoint.
type Record struct {
	IMEI      string         `json:"imei"`
	Timestamp string         `json:"timestamp"`
	Priority  uint8          `json:"priority"`
	GPS       GPS            `json:"gps"`
	IO        map[string]any `json:"io"`
	EventIoID uint16         `json:"event_io_id"`
}

// GPS is the rendered positional fix of a Record.
type GPS struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	AltitudeM  int16   `json:"altitude_m"`
	SpeedKmh   uint16  `json:"speed_kmh"`
	HeadingDeg uint16  `json:"heading_deg"`
	Satellites uint8   `json:"satellites"`
}

// ToRecord converts a normalized telemetry record into the sink wire
// shape for imei. The timestamp is rendered in ISO-8601 under a fixed
// +03:00 offset; I/O values carry their raw form (a number for every
// fixed-width group, hex text for Codec 8 Extended's NX byte group) so
// the sink can apply its own display rules independently.
func ToRecord(imei string, rec normalize.Record) Record {
	io := make(map[string]any, len(rec.IO))
	for id, v := range rec.IO {
		key := fmt.Sprintf("%d", id)
		if len(v.RawBytes) > 0 {
			io[key] = hex.EncodeToString(v.RawBytes)
		} else {
			io[key] = v.RawUint
		}
	}
	return Record{
		IMEI:      imei,
		Timestamp: time.UnixMilli(int64(rec.TimestampMs)).In(renderTZ).Format("2006-01-02T15:04:05.000-07:00"),
		Priority:  rec.Priority,
		EventIoID: rec.EventIoID,
		IO:        io,
		GPS: GPS{
			Latitude:   float64(rec.GPS.LatitudeE7) / 1e7,
			Longitude:  float64(rec.GPS.LongitudeE7) / 1e7,
			AltitudeM:  rec.GPS.AltitudeM,
			SpeedKmh:   rec.GPS.SpeedKmh,
			HeadingDeg: rec.GPS.HeadingDeg,
			Satellites: rec.GPS.Satellites,
		},
	}
}

// Counters are the sink's at-least-once delivery bookkeeping, read
// through Client.Counters; the metrics bundle carries the matching
// Prometheus counters.
type Counters struct {
	TotalSent    int64
	TotalFailed  int64
	TotalDropped int64
	LastError    string
}

// Client batches records in memory and flushes them to baseURL on a
// single background worker. A full queue drops its oldest record to
// admit the newest; queue overflow and post failures are observable
// but never block or fail the caller.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	m          *metrics.Metrics
	log        *zap.Logger

	batchSize    int
	batchTimeout time.Duration

	mu       sync.Mutex
	counters Counters

	queue chan Record
	stop  chan struct{}
	done  chan struct{}
}

// New constructs a sink client, recording every queue drop, delivered
// batch, and retry attempt against m. Call Run to start its worker; Run
// blocks until ctx is done, so callers typically `go client.Run(ctx)`.
func New(baseURL, token string, queueCapacity, batchSize int, batchTimeout time.Duration, m *metrics.Metrics, log *zap.Logger) *Client {
	return &Client{
		baseURL:      baseURL,
		token:        token,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		m:            m,
		log:          log,
		batchSize:    batchSize,
		batchTimeout: batchTimeout,
		queue:        make(chan Record, queueCapacity),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Submit enqueues rec for delivery. If the queue is full, the oldest
// queued record is dropped to make room — backpressure is applied by
// dropping, never by blocking the caller (the session goroutine).
func (c *Client) Submit(rec Record) {
	select {
	case c.queue <- rec:
		return
	default:
	}

	select {
	case <-c.queue:
		c.mu.Lock()
		c.counters.TotalDropped++
		c.mu.Unlock()
		c.m.SinkDrops.Inc()
		if c.log != nil {
			c.log.Warn("sink queue full, dropped oldest record")
		}
	default:
	}

	select {
	case c.queue <- rec:
	default:
		c.mu.Lock()
		c.counters.TotalDropped++
		c.mu.Unlock()
		c.m.SinkDrops.Inc()
	}
}

// Counters returns a snapshot of the delivery counters.
func (c *Client) Counters() Counters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters
}

// Run drains the queue, batching by size or by batchTimeout, whichever
// comes first, until ctx is canceled; it then flushes whatever remains
// once more before returning.
func (c *Client) Run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(c.batchTimeout)
	defer ticker.Stop()

	batch := make([]Record, 0, c.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		c.send(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-c.queue:
			batch = append(batch, rec)
			if len(batch) >= c.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-c.stop:
			c.drainAndFlush(ctx, &batch)
			flush()
			return
		case <-ctx.Done():
			c.drainAndFlush(ctx, &batch)
			// the final flush must not inherit ctx's cancellation, or
			// every request in it fails before being sent
			ctx = context.WithoutCancel(ctx)
			flush()
			return
		}
	}
}

func (c *Client) drainAndFlush(ctx context.Context, batch *[]Record) {
	for {
		select {
		case rec := <-c.queue:
			*batch = append(*batch, rec)
		default:
			return
		}
	}
}

// Stop requests Run to flush and return; it blocks until Run has
// exited.
func (c *Client) Stop() {
	close(c.stop)
	<-c.done
}

func (c *Client) send(ctx context.Context, batch []Record) {
	body, err := json.Marshal(batch)
	if err != nil {
		if c.log != nil {
			c.log.Error("failed to marshal sink batch", zap.Error(err))
		}
		return
	}

	var policy backoff.BackOff = backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	policy = backoff.WithContext(policy, ctx)

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/gps", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode/100 != 2 {
			return fmt.Errorf("sink: unexpected status %d", resp.StatusCode)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		c.m.SinkRetries.Inc()
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		c.mu.Lock()
		c.counters.TotalFailed += int64(len(batch))
		c.counters.LastError = err.Error()
		c.mu.Unlock()
		if c.log != nil {
			c.log.Warn("sink delivery failed after retries", zap.Error(err), zap.Int("batch_size", len(batch)))
		}
		return
	}

	c.mu.Lock()
	c.counters.TotalSent += int64(len(batch))
	c.mu.Unlock()
	c.m.SinkPosts.Inc()
}

// NotifyDeviceStatus posts a fire-and-forget connection status event.
// Failure to notify never affects command or session state.
func (c *Client) NotifyDeviceStatus(ctx context.Context, imei string, connected bool, ipAddress string) {
	body, _ := json.Marshal(map[string]any{
		"is_connected": connected,
		"ip_address":   ipAddress,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/devices/%s/status", c.baseURL, imei), bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.log != nil {
			c.log.Warn("device status notification failed", zap.String("imei", imei), zap.Error(err))
		}
		return
	}
	resp.Body.Close()
}
