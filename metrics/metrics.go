// Package metrics bundles the process's Prometheus collectors. A
// single Metrics value is constructed once at startup and shared by
// pointer with every component that observes it — no package-level
// registry and no global mutable state.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics is the gateway's full collector bundle, registered against
// its own private registry rather than the default global one.
type Metrics struct {
	registry *prometheus.Registry

	FramesDecoded  prometheus.Counter
	FramesRejected prometheus.Counter

	CommandsSent       prometheus.Counter
	CommandsSucceeded  prometheus.Counter
	CommandsFailed     prometheus.Counter
	CommandsTimedOut   prometheus.Counter
	CommandsRetried    prometheus.Counter

	SinkPosts   prometheus.Counter
	SinkRetries prometheus.Counter
	SinkDrops   prometheus.Counter

	ConnectedDevices prometheus.Gauge
}

// New constructs and registers the full collector bundle.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		FramesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_frames_decoded_total",
			Help: "AVL frames successfully decoded from device connections.",
		}),
		FramesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_frames_rejected_total",
			Help: "Inbound frames dropped for a CRC mismatch or malformed envelope.",
		}),
		CommandsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_commands_sent_total",
			Help: "Operator commands dispatched to a device session.",
		}),
		CommandsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_commands_succeeded_total",
			Help: "Commands that received a non-rejection device response.",
		}),
		CommandsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_commands_failed_total",
			Help: "Commands the device rejected as unknown or malformed.",
		}),
		CommandsTimedOut: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_commands_timed_out_total",
			Help: "Sent commands that never received a correlated response.",
		}),
		CommandsRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_commands_retried_total",
			Help: "Commands re-entered into Pending after a Failed or Timeout outcome.",
		}),
		SinkPosts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_sink_posts_total",
			Help: "Batches successfully delivered to the downstream storage API.",
		}),
		SinkRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_sink_retries_total",
			Help: "Backoff retry attempts made while delivering a batch to the sink.",
		}),
		SinkDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gateway_sink_drops_total",
			Help: "Records dropped because the sink's bounded queue was full.",
		}),
		ConnectedDevices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gateway_connected_devices",
			Help: "Devices currently holding an authenticated session.",
		}),
	}

	m.registry.MustRegister(
		m.FramesDecoded,
		m.FramesRejected,
		m.CommandsSent,
		m.CommandsSucceeded,
		m.CommandsFailed,
		m.CommandsTimedOut,
		m.CommandsRetried,
		m.SinkPosts,
		m.SinkRetries,
		m.SinkDrops,
		m.ConnectedDevices,
	)
	return m
}

// Registry returns the private registry these collectors were
// registered against, for mounting a /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
