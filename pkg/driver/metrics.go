package driver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for one driver. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	cyclesTotal    prometheus.Counter
	opsTotal       prometheus.Counter
	patchBytes     prometheus.Counter
	messagesQueued prometheus.Gauge
	droppedTotal   prometheus.Counter
	decodeErrors   prometheus.Counter
	cycleDuration  prometheus.Histogram
}

// MetricsConfig configures driver metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "loom").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for cycle duration.
	// Default: prometheus.DefBuckets.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// NewMetrics registers and returns driver metrics.
func NewMetrics(config MetricsConfig) *Metrics {
	if config.Namespace == "" {
		config.Namespace = "loom"
	}
	if config.Buckets == nil {
		config.Buckets = prometheus.DefBuckets
	}
	if config.Registry == nil {
		config.Registry = prometheus.DefaultRegisterer
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		cyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "cycles_total",
			Help:        "Total number of update cycles processed",
			ConstLabels: config.ConstLabels,
		}),
		opsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "patch_ops_total",
			Help:        "Total number of edit ops applied to the surface",
			ConstLabels: config.ConstLabels,
		}),
		patchBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "patch_bytes_total",
			Help:        "Total encoded patch bytes flushed to remote displays",
			ConstLabels: config.ConstLabels,
		}),
		messagesQueued: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "messages_queued",
			Help:        "Messages currently waiting in the driver queue",
			ConstLabels: config.ConstLabels,
		}),
		droppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "messages_dropped_total",
			Help:        "Messages dropped because the driver queue was full",
			ConstLabels: config.ConstLabels,
		}),
		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "decode_errors_total",
			Help:        "Listener event decode failures",
			ConstLabels: config.ConstLabels,
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "cycle_duration_seconds",
			Help:        "Update cycle duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// ObservePatchBytes records encoded patch bytes flushed to a display.
// Exposed for surfaces that serialize ops.
func (m *Metrics) ObservePatchBytes(n int) {
	if m == nil {
		return
	}
	m.patchBytes.Add(float64(n))
}

func (m *Metrics) cycle(ops int, seconds float64) {
	if m == nil {
		return
	}
	m.cyclesTotal.Inc()
	m.opsTotal.Add(float64(ops))
	m.cycleDuration.Observe(seconds)
}

func (m *Metrics) dropped() {
	if m == nil {
		return
	}
	m.droppedTotal.Inc()
}

func (m *Metrics) queued(delta float64) {
	if m == nil {
		return
	}
	m.messagesQueued.Add(delta)
}

func (m *Metrics) decodeError() {
	if m == nil {
		return
	}
	m.decodeErrors.Inc()
}
