package application

import (
	"context"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

// StageAdapter is an adapter that wraps a ports.Stage to implement the
// ports.Executable interface, enabling stages to participate in pipeline
// execution.
type StageAdapter struct {
	// stage is the underlying stage that performs the actual work when
	// Execute is called.
	stage ports.Stage
	// id is the unique identifier for this adapter within the pipeline
	// scope, used for referencing and error reporting.
	id string
}

// NewStageAdapter creates a new adapter that wraps a ports.Stage to
// implement the ports.Executable interface. NewStageAdapter preserves
// the stage's functionality while providing the interface expected by
// pipelines.
func NewStageAdapter(stage ports.Stage, id string) *StageAdapter {
	return &StageAdapter{
		stage: stage,
		id:    id,
	}
}

// Execute delegates to the underlying stage's Execute method,
// providing transparent pass-through of context, state, and results.
func (sa *StageAdapter) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	return sa.stage.Execute(ctx, state)
}

// ID returns the unique string identifier for this adapter.
func (sa *StageAdapter) ID() string { return sa.id }
