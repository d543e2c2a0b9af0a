package stages

import (
	"context"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

var _ ports.Stage = (*ConfidenceFilterStage)(nil)

// DefaultConfidenceThreshold is the minimum acceptable confidence score
// when no threshold is configured. The comparison is inclusive.
const DefaultConfidenceThreshold = 0.8

// ConfidenceFilterStage applies the confidence quality check (QC1) to the
// raw records: every record whose confidence_score field is present,
// parses as a float, and is at or above the threshold becomes a
// domain.Annotation; everything else is dropped.
//
// Dropping is silent by design - per-record problems never abort the run
// and are not individually logged. The stage does keep an exact
// accounting in domain.FilterStats, so accepted plus dropped always
// reconciles with the raw record count.
//
// Records whose text or label field is absent or empty are also dropped
// and counted under MissingField; passing them through would poison the
// grouping key or the emitted dataset.
//
// Output preserves input order.
type ConfidenceFilterStage struct {
	// name is the unique identifier for this stage instance.
	name string
	// config contains the validated configuration parameters.
	config ConfidenceFilterConfig
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// ConfidenceFilterConfig defines the configuration parameters for the
// ConfidenceFilterStage.
type ConfidenceFilterConfig struct {
	// Threshold is the minimum acceptable confidence score, inclusive:
	// a record exactly at the threshold is accepted.
	//
	// Range: 0.0 to 1.0 (inclusive)
	// Default: DefaultConfidenceThreshold.
	Threshold float64 `yaml:"threshold" json:"threshold" validate:"min=0,max=1"`
}

// DefaultConfidenceFilterConfig returns a ConfidenceFilterConfig with the
// default threshold.
func DefaultConfidenceFilterConfig() ConfidenceFilterConfig {
	return ConfidenceFilterConfig{Threshold: DefaultConfidenceThreshold}
}

// NewConfidenceFilterStage creates a new ConfidenceFilterStage with
// validated configuration. Returns ErrEmptyStageName if name is empty,
// or a configuration validation error if the threshold is out of range.
func NewConfidenceFilterStage(name string, config ConfidenceFilterConfig) (*ConfidenceFilterStage, error) {
	if name == "" {
		return nil, ErrEmptyStageName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &ConfidenceFilterStage{
		name:   name,
		config: config,
		tracer: otel.Tracer("confidence-filter-stage"),
	}, nil
}

// Name returns the unique identifier for this stage instance.
func (cfs *ConfidenceFilterStage) Name() string { return cfs.name }

// Execute applies QC1 to the raw records in the state and stores the
// surviving annotations under domain.KeyAnnotations along with the
// accounting under domain.KeyFilterStats.
//
// Drop reasons, checked in order for each record:
//  1. confidence_score missing or not a float -> InvalidConfidence
//  2. parsed value below the threshold -> BelowThreshold
//  3. text or label absent or empty -> MissingField
//
// Returns an error only when the loader has not run (no raw records in
// the state); per-record problems never produce an error.
func (cfs *ConfidenceFilterStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := cfs.tracer.Start(ctx, "ConfidenceFilterStage.Execute",
		trace.WithAttributes(
			attribute.String("stage.type", "confidence_filter"),
			attribute.String("stage.id", cfs.name),
			attribute.Float64("config.threshold", cfs.config.Threshold),
		),
	)
	defer span.End()

	records, ok := domain.Get(state, domain.KeyRawRecords)
	if !ok {
		span.RecordError(ErrNoRawRecords)
		return state, ErrNoRawRecords
	}

	accepted := make([]domain.Annotation, 0, len(records))
	var stats domain.FilterStats

	for _, record := range records {
		raw, present := record[domain.FieldConfidenceScore]
		if !present {
			stats.InvalidConfidence++
			continue
		}

		confidence, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			stats.InvalidConfidence++
			continue
		}

		if !(confidence >= cfs.config.Threshold) {
			// The negated comparison also routes NaN here.
			stats.BelowThreshold++
			continue
		}

		text := record[domain.FieldText]
		label := record[domain.FieldLabel]
		if text == "" || label == "" {
			stats.MissingField++
			continue
		}

		accepted = append(accepted, domain.Annotation{
			Text:            text,
			AnnotatorID:     record[domain.FieldAnnotatorID],
			Label:           label,
			ConfidenceScore: confidence,
		})
		stats.Accepted++
	}

	span.SetAttributes(
		attribute.Int("filter.accepted", stats.Accepted),
		attribute.Int("filter.below_threshold", stats.BelowThreshold),
		attribute.Int("filter.invalid_confidence", stats.InvalidConfidence),
		attribute.Int("filter.missing_field", stats.MissingField),
	)

	state = domain.With(state, domain.KeyAnnotations, accepted)
	return domain.With(state, domain.KeyFilterStats, stats), nil
}

// Validate verifies the stage is properly configured and ready for
// execution.
func (cfs *ConfidenceFilterStage) Validate() error {
	if err := validate.Struct(cfs.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration into the stage's
// config. The stage's configuration remains unchanged on error.
func (cfs *ConfidenceFilterStage) UnmarshalParameters(params yaml.Node) error {
	config := DefaultConfidenceFilterConfig()

	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}

	cfs.config = config
	return nil
}

// NewConfidenceFilterFromConfig creates a ConfidenceFilterStage from a
// configuration map. Missing keys keep their default values.
func NewConfidenceFilterFromConfig(id string, config map[string]any) (ports.Stage, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	cfg := DefaultConfidenceFilterConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return NewConfidenceFilterStage(id, cfg)
}
