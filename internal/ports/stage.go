// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
)

// Stage represents the fundamental building block of the quality-control
// pipeline. Each Stage performs a specific transformation on the pipeline
// State, enabling composable and reusable processing logic.
// Stages should not retain references to the States they receive.
type Stage interface {
	// Name returns a unique identifier for this stage.
	// The name is used for logging, debugging, and configuration.
	Name() string

	// Execute performs the stage's transformation on the provided State.
	// It returns a new State containing the results of the transformation.
	// The original State must not be modified (immutability principle).
	// Any errors during execution should be returned rather than panicking.
	//
	// The context parameter allows for cancellation propagation; stages
	// should respect it and return promptly when cancelled.
	//
	// Example:
	//
	//	newState, err := stage.Execute(ctx, state)
	//	if err != nil {
	//	    return state, fmt.Errorf("stage %s failed: %w", stage.Name(), err)
	//	}
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate checks if the stage is properly configured and ready for
	// execution. It is typically called during pipeline construction.
	// Return nil if validation passes, or an error describing what is invalid.
	Validate() error
}

// StageFactory creates a Stage of a particular type from a flexible
// configuration map, typically decoded from YAML. Factories are looked
// up by type name in a StageRegistry.
type StageFactory func(id string, config map[string]any) (Stage, error)

// StageRegistry provides dynamic stage construction by type name.
// It decouples pipeline assembly from concrete stage implementations.
type StageRegistry interface {
	// CreateStage instantiates a stage of the given type with the given
	// identifier and configuration. It returns an error for unknown types,
	// empty identifiers, or configurations the stage rejects.
	CreateStage(stageType, id string, config map[string]any) (Stage, error)

	// RegisterStageFactory registers a factory for a stage type, replacing
	// any existing registration for that type.
	RegisterStageFactory(stageType string, factory StageFactory)

	// ListStageTypes returns the registered type names in no particular order.
	ListStageTypes() []string
}
