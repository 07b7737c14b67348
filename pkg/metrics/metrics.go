package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics for the recognition adapter.
type Metrics struct {
	// Audio path
	Transmissions    prometheus.Counter
	BytesTransmitted prometheus.Counter
	Flushes          prometheus.Counter

	// Dispatcher
	EventsDispatched *prometheus.CounterVec
	MessagesDropped  prometheus.Counter

	// Lifecycle
	ActiveSessions  prometheus.Gauge
	ConnectFailures prometheus.Counter
}

// New creates and registers all adapter metrics. Passing nil registers
// on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Transmissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "speech_audio_transmissions_total",
			Help: "Total number of audio payload transmissions",
		}),
		BytesTransmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "speech_audio_bytes_transmitted_total",
			Help: "Total audio bytes transmitted to the service",
		}),
		Flushes: factory.NewCounter(prometheus.CounterOpts{
			Name: "speech_audio_flushes_total",
			Help: "Total number of accumulation buffer flushes",
		}),
		EventsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "speech_events_dispatched_total",
			Help: "Total recognition events dispatched to the consumer",
		}, []string{"kind"}),
		MessagesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "speech_messages_dropped_total",
			Help: "Total inbound messages dropped after termination",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "speech_active_sessions",
			Help: "Current number of connected recognition sessions",
		}),
		ConnectFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "speech_connect_failures_total",
			Help: "Total failed connection attempts",
		}),
	}
}
