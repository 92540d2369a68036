package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serverMetrics holds the Prometheus metrics for the streaming server.
type serverMetrics struct {
	chunksEmitted  prometheus.Counter
	bytesStreamed  prometheus.Counter
	renderErrors   *prometheus.CounterVec
	eventsRecorded prometheus.Counter
	eventsReplayed prometheus.Counter
	activeSessions prometheus.Gauge
}

func newServerMetrics(registry prometheus.Registerer) *serverMetrics {
	factory := promauto.With(registry)

	return &serverMetrics{
		chunksEmitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "glint",
			Subsystem: "server",
			Name:      "chunks_emitted_total",
			Help:      "Total stream chunks written to responses",
		}),
		bytesStreamed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "glint",
			Subsystem: "server",
			Name:      "bytes_streamed_total",
			Help:      "Total chunk payload bytes written to responses",
		}),
		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "glint",
			Subsystem: "server",
			Name:      "render_errors_total",
			Help:      "Total render failures and warnings by category",
		}, []string{"category"}),
		eventsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "glint",
			Subsystem: "server",
			Name:      "events_recorded_total",
			Help:      "Total interaction events buffered before activation",
		}),
		eventsReplayed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "glint",
			Subsystem: "server",
			Name:      "events_replayed_total",
			Help:      "Total buffered events replayed after activation",
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "glint",
			Subsystem: "server",
			Name:      "active_sessions",
			Help:      "Number of live document sessions",
		}),
	}
}
