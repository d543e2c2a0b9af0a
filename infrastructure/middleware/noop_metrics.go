package middleware

import (
	"time"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

// NoopMetrics is a MetricsCollector that discards everything. It is the
// default collector when metrics are disabled and keeps callers free of
// nil checks.
type NoopMetrics struct{}

// NewNoopMetrics returns a collector that records nothing.
func NewNoopMetrics() *NoopMetrics { return &NoopMetrics{} }

// RecordLatency implements MetricsCollector.
func (NoopMetrics) RecordLatency(string, time.Duration, map[string]string) {}

// RecordCounter implements MetricsCollector.
func (NoopMetrics) RecordCounter(string, float64, map[string]string) {}

// RecordGauge implements MetricsCollector.
func (NoopMetrics) RecordGauge(string, float64, map[string]string) {}

// RecordHistogram implements MetricsCollector.
func (NoopMetrics) RecordHistogram(string, float64, map[string]string) {}

var _ ports.MetricsCollector = (*NoopMetrics)(nil)
