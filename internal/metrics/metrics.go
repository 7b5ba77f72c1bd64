// Package metrics exposes the bridge's Prometheus collectors and the HTTP
// endpoint that serves them.
package metrics

import (
	"strconv"
	"time"

	"github.com/ibs-source/rc-bridge/internal/rpc"
	"github.com/ibs-source/rc-bridge/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the bridge collectors. It implements rpc.Observer and
// provides telemetry.Hooks.
type Metrics struct {
	reg prometheus.Registerer

	CommandsServed   *prometheus.CounterVec
	CommandDuration  *prometheus.HistogramVec
	Requests         *prometheus.CounterVec
	TelemetrySamples *prometheus.CounterVec
	TelemetryErrors  *prometheus.CounterVec
}

var _ rpc.Observer = (*Metrics)(nil)

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		CommandsServed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcbridge_commands_served_total",
				Help: "Total number of commands answered by status",
			},
			[]string{"command", "status"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rcbridge_command_duration_seconds",
				Help:    "Duration of command handling",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcbridge_requests_total",
				Help: "Total number of outbound requests by outcome",
			},
			[]string{"topic", "outcome"},
		),
		TelemetrySamples: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcbridge_telemetry_samples_total",
				Help: "Total number of telemetry samples published by target",
			},
			[]string{"target"},
		),
		TelemetryErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcbridge_telemetry_failures_total",
				Help: "Total number of failed telemetry cycles by target",
			},
			[]string{"target"},
		),
	}
}

// Served records one answered command.
func (m *Metrics) Served(s rpc.Served) {
	m.CommandsServed.WithLabelValues(s.Command, strconv.Itoa(s.Status)).Inc()
	m.CommandDuration.WithLabelValues(s.Command).Observe(s.Duration.Seconds())
}

// Requested records one outbound request outcome.
func (m *Metrics) Requested(topic, outcome string, _ time.Duration) {
	m.Requests.WithLabelValues(topic, outcome).Inc()
}

// Hooks returns session hooks that count samples and failures per target.
// Application ids are not used as labels to keep cardinality bounded.
func (m *Metrics) Hooks() telemetry.Hooks {
	return telemetry.Hooks{
		OnSample: func(key telemetry.Key) {
			m.TelemetrySamples.WithLabelValues(key.Target().String()).Inc()
		},
		OnFailure: func(key telemetry.Key, _ error) {
			m.TelemetryErrors.WithLabelValues(key.Target().String()).Inc()
		},
	}
}

// TrackSessions exposes the number of running sessions as a gauge.
func (m *Metrics) TrackSessions(count func() int) {
	promauto.With(m.reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "rcbridge_telemetry_sessions",
			Help: "Number of running telemetry sessions",
		},
		func() float64 { return float64(count()) },
	)
}
