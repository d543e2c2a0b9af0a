package ports

import (
	"context"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
)

// Executable defines the core contract for components that participate
// in pipeline execution: individual stages, middleware-wrapped stages,
// or whole pipelines.
type Executable interface {
	// Execute processes the given state and returns the updated state
	// along with any execution error. The context allows for cancellation
	// control during execution.
	//
	// IMPORTANT: The input state is immutable and MUST NOT be modified.
	// domain.State uses copy-on-write semantics - use domain.With or
	// state.WithMultiple to create a new state with modifications.
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// ID returns the unique string identifier for this executable
	// component. The ID must remain constant throughout the executable's
	// lifetime and should be unique within the containing pipeline.
	ID() string
}

// Pipeline defines a sequential execution container that runs multiple
// executables in strict order, where each executable's output becomes
// the input for the next executable in the sequence.
type Pipeline interface {
	Executable

	// Add appends an executable to the end of this pipeline's execution
	// sequence, maintaining the order in which executables will be
	// processed. Add returns an error if the executable cannot be added,
	// for example because its ID duplicates an existing one.
	Add(exec Executable) error

	// Executables returns the complete ordered list of executables
	// in this pipeline, preserving the sequence in which they will execute.
	// The returned slice should not be modified by callers.
	Executables() []Executable
}
