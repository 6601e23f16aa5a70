// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run status labels.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusInvalid = "invalid"
)

// Metric labels for per-series failures.
const (
	MetricIRR = "irr"
	MetricDPI = "dpi"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Simulation metrics
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	TrialsSimulated prometheus.Counter
	TrialDuration   prometheus.Histogram

	// Aggregation metrics
	AggregatesComputed prometheus.Counter
	SchedulesGenerated *prometheus.CounterVec

	// Performance metrics
	MetricFailures *prometheus.CounterVec

	// Reporting
	ReportsGenerated prometheus.Counter

	// API
	HTTPRequests *prometheus.CounterVec
	StreamsOpen  prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered on reg.
// A nil reg registers on the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "jcurve_lab"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "runs_total",
			Help:      "Total number of Monte Carlo runs by status",
		}, []string{"status"}),
		RunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "run_duration_seconds",
			Help:      "Monte Carlo run duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
		TrialsSimulated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "trials_simulated_total",
			Help:      "Total number of trials simulated",
		}),
		TrialDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "montecarlo",
			Name:      "trial_duration_seconds",
			Help:      "Single trial generation time in seconds",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),

		AggregatesComputed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregate",
			Name:      "aggregates_computed_total",
			Help:      "Total number of percentile aggregates computed",
		}),
		SchedulesGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "schedules_generated_total",
			Help:      "Total number of deterministic schedules generated by mode",
		}, []string{"mode"}),

		MetricFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "performance",
			Name:      "metric_failures_total",
			Help:      "Total number of series whose metric was undefined",
		}, []string{"metric"}),

		ReportsGenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reporting",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status code",
		}, []string{"route", "code"}),
		StreamsOpen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "streams_open",
			Help:      "Number of open simulation streams",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns an HTTP handler serving the metrics of a specific gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// RecordRun records a finished Monte Carlo run.
// Safe to call on a nil receiver.
func (m *Metrics) RecordRun(status string, trials int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(durationSeconds)
	m.TrialsSimulated.Add(float64(trials))
}

// RecordTrial records the generation time of one trial.
func (m *Metrics) RecordTrial(seconds float64) {
	if m == nil {
		return
	}
	m.TrialDuration.Observe(seconds)
}

// RecordAggregate increments the aggregates computed counter.
func (m *Metrics) RecordAggregate() {
	if m == nil {
		return
	}
	m.AggregatesComputed.Inc()
}

// RecordSchedule records a generated deterministic schedule.
func (m *Metrics) RecordSchedule(mode string) {
	if m == nil {
		return
	}
	m.SchedulesGenerated.WithLabelValues(mode).Inc()
}

// RecordMetricFailure records an undefined IRR or DPI.
func (m *Metrics) RecordMetricFailure(metric string) {
	if m == nil {
		return
	}
	m.MetricFailures.WithLabelValues(metric).Inc()
}

// RecordReport increments the reports generated counter.
func (m *Metrics) RecordReport() {
	if m == nil {
		return
	}
	m.ReportsGenerated.Inc()
}

// RecordRequest records an API request.
func (m *Metrics) RecordRequest(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}
