package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects counters for a single benchtrim invocation. Each instance
// owns its registry so tests and repeated runs never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	DocumentsProcessed      *prometheus.CounterVec
	ResultsTransformed      prometheus.Counter
	MeasurementsTransformed prometheus.Counter
	NonFiniteValues         prometheus.Counter
	BytesWritten            prometheus.Counter
	PipelineDuration        prometheus.Gauge
	LastSuccess             prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.DocumentsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "benchtrim",
			Name:      "documents_processed_total",
			Help:      "Benchmark documents processed, by outcome",
		},
		[]string{"status"},
	)

	m.ResultsTransformed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "benchtrim",
			Name:      "results_transformed_total",
			Help:      "Result entries whose median(elapsed) was rescaled",
		},
	)

	m.MeasurementsTransformed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "benchtrim",
			Name:      "measurements_transformed_total",
			Help:      "Measurements whose elapsed value was rescaled",
		},
	)

	m.NonFiniteValues = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "benchtrim",
			Name:      "nonfinite_values_total",
			Help:      "Rescaled values that overflowed to infinity",
		},
	)

	m.BytesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "benchtrim",
			Name:      "output_bytes_total",
			Help:      "Bytes written to the output document",
		},
	)

	m.PipelineDuration = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "benchtrim",
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of the last pipeline run",
		},
	)

	m.LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "benchtrim",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		},
	)

	m.registry.MustRegister(
		m.DocumentsProcessed,
		m.ResultsTransformed,
		m.MeasurementsTransformed,
		m.NonFiniteValues,
		m.BytesWritten,
		m.PipelineDuration,
		m.LastSuccess,
	)

	return m
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSuccess records a completed run.
func (m *Metrics) ObserveSuccess(results, measurements, nonFinite, bytes int, took time.Duration, at time.Time) {
	m.DocumentsProcessed.WithLabelValues("ok").Inc()
	m.ResultsTransformed.Add(float64(results))
	m.MeasurementsTransformed.Add(float64(measurements))
	m.NonFiniteValues.Add(float64(nonFinite))
	m.BytesWritten.Add(float64(bytes))
	m.PipelineDuration.Set(took.Seconds())
	m.LastSuccess.Set(float64(at.Unix()))
}

// ObserveFailure records a failed run under the given error kind.
func (m *Metrics) ObserveFailure(kind string, took time.Duration) {
	m.DocumentsProcessed.WithLabelValues(kind).Inc()
	m.PipelineDuration.Set(took.Seconds())
}

// WriteTextfile writes all metrics in the Prometheus text format, suitable for
// the node exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
