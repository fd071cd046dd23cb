package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// calibration pipeline.
type Metrics struct {
	RecordsProcessed prometheus.Counter
	RecordsRejected  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	VWCValues   prometheus.Histogram
	RunDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RecordsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vwc",
			Name:      "records_processed_total",
			Help:      "Total sensor records parsed, calibrated, and emitted.",
		}),
		RecordsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vwc",
			Name:      "records_rejected_total",
			Help:      "Total records rejected by the parser or engine.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vwc",
			Name:      "pipeline_running",
			Help:      "1 while a calibration run is active, 0 otherwise.",
		}),
		VWCValues: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vwc",
			Name:      "moisture_fraction",
			Help:      "Distribution of calibrated VWC values.",
			Buckets:   []float64{0.05, 0.1, 0.15, 0.2, 0.25, 0.3, 0.35, 0.4, 0.5, 0.6, 0.8, 1},
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vwc",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete calibration run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
	}

	prometheus.MustRegister(
		m.RecordsProcessed,
		m.RecordsRejected,
		m.PipelineRunning,
		m.VWCValues,
		m.RunDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registry registration to
// avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RecordsProcessed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "vwc", Name: "records_processed_total"}),
		RecordsRejected:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "vwc", Name: "records_rejected_total"}),
		PipelineRunning:  prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "vwc", Name: "pipeline_running"}),
		VWCValues:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "vwc", Name: "moisture_fraction"}),
		RunDuration:      prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "vwc", Name: "run_duration_seconds"}),
	}
}
