package stages

import (
	"context"
	"time"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

// metricsStage implements per-stage metrics collection.
// It wraps another stage and records execution latency and status for
// operational monitoring without the stage knowing about metrics.
type metricsStage struct {
	next      ports.Stage
	collector ports.MetricsCollector
}

// WithMetrics wraps a stage so that every execution records a latency
// observation and a status counter through the collector. A nil
// collector returns the stage unwrapped.
func WithMetrics(stage ports.Stage, collector ports.MetricsCollector) ports.Stage {
	if collector == nil {
		return stage
	}
	return &metricsStage{next: stage, collector: collector}
}

// Name returns the wrapped stage's identifier.
func (m *metricsStage) Name() string { return m.next.Name() }

// Execute runs the wrapped stage while collecting metrics.
func (m *metricsStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	start := time.Now()
	newState, err := m.next.Execute(ctx, state)

	labels := map[string]string{
		"stage":  m.next.Name(),
		"status": "success",
	}
	if err != nil {
		labels["status"] = "error"
	}

	m.collector.RecordLatency("stage_execute", time.Since(start), labels)
	m.collector.RecordCounter("stage_executions_total", 1, labels)

	return newState, err
}

// Validate delegates to the wrapped stage.
func (m *metricsStage) Validate() error { return m.next.Validate() }
