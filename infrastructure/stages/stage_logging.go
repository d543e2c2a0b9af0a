package stages

import (
	"context"
	"log/slog"
	"time"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

// loggingStage wraps another stage with structured progress logging.
// Stages themselves stay logger-free; the wrapper emits one line when a
// stage starts and one when it finishes, which replaces the original
// tool's step-by-step console prints.
type loggingStage struct {
	next   ports.Stage
	logger *slog.Logger
}

// WithLogging wraps a stage so that executions are logged through the
// given logger. A nil logger returns the stage unwrapped.
func WithLogging(stage ports.Stage, logger *slog.Logger) ports.Stage {
	if logger == nil {
		return stage
	}
	return &loggingStage{next: stage, logger: logger}
}

// Name returns the wrapped stage's identifier.
func (l *loggingStage) Name() string { return l.next.Name() }

// Execute runs the wrapped stage, logging start, completion, and failure.
func (l *loggingStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	l.logger.Debug("stage starting", "stage", l.next.Name())

	start := time.Now()
	newState, err := l.next.Execute(ctx, state)
	if err != nil {
		l.logger.Error("stage failed", "stage", l.next.Name(), "error", err)
		return newState, err
	}

	l.logger.Info("stage complete", "stage", l.next.Name(), "duration", time.Since(start))
	return newState, nil
}

// Validate delegates to the wrapped stage.
func (l *loggingStage) Validate() error { return l.next.Validate() }
