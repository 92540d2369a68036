package hydrate

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the scheduler's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "glint").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for activation duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the scheduler metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the activation duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// Metrics holds the scheduler's Prometheus metrics. All record methods are
// nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	islandsScheduled   prometheus.Counter
	islandsByState     *prometheus.GaugeVec
	activationDuration prometheus.Histogram
	activationErrors   *prometheus.CounterVec
}

// NewMetrics registers and returns the scheduler metrics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := MetricsConfig{
		Namespace: "glint",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		islandsScheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "hydrate",
			Name:        "islands_scheduled_total",
			Help:        "Total number of islands handed to the scheduler",
			ConstLabels: config.ConstLabels,
		}),

		islandsByState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   "hydrate",
			Name:        "islands",
			Help:        "Current number of islands by activation state",
			ConstLabels: config.ConstLabels,
		}, []string{"state"}),

		activationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   "hydrate",
			Name:        "activation_duration_seconds",
			Help:        "Island activation duration in seconds, including dependency waits",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		activationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   "hydrate",
			Name:        "activation_errors_total",
			Help:        "Total island activation failures by category",
			ConstLabels: config.ConstLabels,
		}, []string{"category"}),
	}
}

func (m *Metrics) recordScheduled() {
	if m == nil {
		return
	}
	m.islandsScheduled.Inc()
	m.islandsByState.WithLabelValues(StatePending.String()).Inc()
}

func (m *Metrics) recordTransition(from, to State) {
	if m == nil {
		return
	}
	m.islandsByState.WithLabelValues(from.String()).Dec()
	m.islandsByState.WithLabelValues(to.String()).Inc()
}

func (m *Metrics) recordActivation(d time.Duration) {
	if m == nil {
		return
	}
	m.activationDuration.Observe(d.Seconds())
}

func (m *Metrics) recordError(category string) {
	if m == nil {
		return
	}
	m.activationErrors.WithLabelValues(category).Inc()
}
