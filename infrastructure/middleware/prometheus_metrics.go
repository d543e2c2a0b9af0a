// Package middleware provides cross-cutting concerns for the
// quality-control pipeline.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides monitoring of record throughput, drop reasons,
// and per-stage execution performance.
type PrometheusMetrics struct {
	recordsProcessed *prometheus.CounterVec
	stageExecutions  *prometheus.CounterVec
	stageLatency     *prometheus.HistogramVec
	runGauges        *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and
// registers all required metrics in the global Prometheus registry.
// It must be constructed at most once per process.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		recordsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotqc_records_total",
				Help: "Total number of annotation records processed, by stage and outcome.",
			},
			[]string{"run_id", "stage", "outcome"},
		),
		stageExecutions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotqc_stage_executions_total",
				Help: "Total number of stage executions, by stage and status.",
			},
			[]string{"stage", "status"},
		),
		stageLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "annotqc_stage_duration_seconds",
				Help:    "Execution time of pipeline stages.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		runGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "annotqc_run_state",
				Help: "Headline counts of the most recent pipeline run.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	stage, ok := labels["stage"]
	if !ok {
		stage = operation
	}
	pm.stageLatency.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	stage, ok := labels["stage"]
	if !ok {
		stage = "unknown"
	}

	switch metric {
	case "records_total":
		pm.recordsProcessed.WithLabelValues(
			labels["run_id"],
			stage,
			labels["outcome"],
		).Add(value)
	case "stage_executions_total":
		status, ok := labels["status"]
		if !ok {
			status = "success"
		}
		pm.stageExecutions.WithLabelValues(stage, status).Add(value)
	default:
		pm.stageExecutions.WithLabelValues(stage, metric).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	pm.runGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in the stage latency histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	stage, ok := labels["stage"]
	if !ok {
		stage = "unknown"
	}
	pm.stageLatency.WithLabelValues(stage).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
