package monitor

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/reactive/pkg/reactive"
)

// MetricsConfig configures the Prometheus monitor.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush and node durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus monitor.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
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

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactive",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics is a reactive.Monitor backed by Prometheus collectors.
type Metrics struct {
	flushesTotal    *prometheus.CounterVec
	flushDuration   prometheus.Histogram
	nodeRunsTotal   *prometheus.CounterVec
	nodeRunDuration *prometheus.HistogramVec
	discardedTotal  prometheus.Counter
	uncaughtTotal   *prometheus.CounterVec
	pendingNodes    prometheus.Gauge
}

var _ reactive.Monitor = (*Metrics)(nil)

// Prometheus creates a monitor that records scheduler metrics.
//
// Metrics collected:
//   - reactive_flushes_total: Counter of flushes by status (ok, failed)
//   - reactive_flush_duration_seconds: Histogram of flush wall time
//   - reactive_node_runs_total: Counter of computation runs by kind
//   - reactive_node_run_duration_seconds: Histogram of run time by kind
//   - reactive_discarded_nodes_total: Counter of pending nodes dropped by failed flushes
//   - reactive_uncaught_errors_total: Counter of errors no handler caught, by type
//   - reactive_pending_nodes: Gauge of queued nodes when the last flush started
//
// Example:
//
//	reactive.Configure(reactive.Config{
//	    Monitor: monitor.Prometheus(monitor.WithNamespace("myapp")),
//	})
//
//	// Expose metrics endpoint
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		flushesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flushes_total",
			Help:        "Total number of scheduler flushes",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_duration_seconds",
			Help:        "Flush duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		nodeRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "node_runs_total",
			Help:        "Total number of computation runs",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		nodeRunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "node_run_duration_seconds",
			Help:        "Computation run duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		discardedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "discarded_nodes_total",
			Help:        "Total number of pending computations dropped by failed flushes",
			ConstLabels: config.ConstLabels,
		}),

		uncaughtTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "uncaught_errors_total",
			Help:        "Total errors that reached no error handler",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		pendingNodes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "pending_nodes",
			Help:        "Number of queued computations when the last flush started",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// FlushStarted implements reactive.Monitor.
func (m *Metrics) FlushStarted(pending int) {
	m.pendingNodes.Set(float64(pending))
}

// NodeRan implements reactive.Monitor.
func (m *Metrics) NodeRan(kind string, d time.Duration) {
	m.nodeRunsTotal.WithLabelValues(kind).Inc()
	m.nodeRunDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// FlushFinished implements reactive.Monitor.
func (m *Metrics) FlushFinished(stats reactive.FlushStats) {
	status := "ok"
	if stats.Failed {
		status = "failed"
	}
	m.flushesTotal.WithLabelValues(status).Inc()
	m.flushDuration.Observe(stats.Duration.Seconds())
	if stats.Discarded > 0 {
		m.discardedTotal.Add(float64(stats.Discarded))
	}
}

// Uncaught implements reactive.Monitor.
func (m *Metrics) Uncaught(err error) {
	m.uncaughtTotal.WithLabelValues(categorizeError(err)).Inc()
}

// categorizeError returns a category for the error type.
// This prevents high-cardinality labels from error messages.
func categorizeError(err error) string {
	var pe *reactive.PanicError
	switch {
	case errors.Is(err, reactive.ErrRunawayFlush):
		return "runaway"
	case errors.Is(err, reactive.ErrCycle):
		return "cycle"
	case errors.As(err, &pe):
		return "panic"
	default:
		return "error"
	}
}
