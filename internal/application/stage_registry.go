package application

import (
	"fmt"
	"sync"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/infrastructure/stages"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

// Verify interface compliance at compile time.
var _ ports.StageRegistry = (*DefaultStageRegistry)(nil)

// DefaultStageRegistry implements the StageRegistry interface providing
// a factory for creating pipeline stages based on type and configuration.
// It supports dynamic registration of stage factories so callers can add
// custom stages alongside the built-in ones.
type DefaultStageRegistry struct {
	// factories maps stage type strings to their factory functions.
	factories map[string]ports.StageFactory
	// mu protects concurrent access to the factories map.
	mu sync.RWMutex
}

// NewDefaultStageRegistry creates a new stage registry with the standard
// stage types pre-registered: csv_loader, confidence_filter,
// text_grouper, agreement_resolver, and report_writer.
func NewDefaultStageRegistry() *DefaultStageRegistry {
	registry := &DefaultStageRegistry{
		factories: make(map[string]ports.StageFactory),
	}

	registry.registerBuiltinFactories()

	return registry
}

// registerBuiltinFactories registers the standard stage types provided
// by the pipeline.
func (r *DefaultStageRegistry) registerBuiltinFactories() {
	r.factories["csv_loader"] = stages.NewCSVLoaderFromConfig
	r.factories["confidence_filter"] = stages.NewConfidenceFilterFromConfig
	r.factories["text_grouper"] = stages.NewTextGrouperFromConfig
	r.factories["agreement_resolver"] = stages.NewAgreementResolverFromConfig
	r.factories["report_writer"] = stages.NewReportWriterFromConfig
}

// CreateStage creates a new stage instance based on the provided type,
// identifier, and configuration. It looks up the appropriate factory
// function and delegates stage creation.
func (r *DefaultStageRegistry) CreateStage(
	stageType string,
	id string,
	config map[string]any,
) (ports.Stage, error) {
	r.mu.RLock()
	factory, exists := r.factories[stageType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unsupported stage type: %s", stageType)
	}

	if id == "" {
		return nil, fmt.Errorf("stage ID cannot be empty")
	}

	if config == nil {
		config = make(map[string]any)
	}

	stage, err := factory(id, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s stage %s: %w", stageType, id, err)
	}

	return stage, nil
}

// RegisterStageFactory registers a new factory function for a specific
// stage type, replacing any existing registration for that type.
func (r *DefaultStageRegistry) RegisterStageFactory(
	stageType string,
	factory ports.StageFactory,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[stageType] = factory
}

// ListStageTypes returns the registered type names in no particular order.
func (r *DefaultStageRegistry) ListStageTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}
