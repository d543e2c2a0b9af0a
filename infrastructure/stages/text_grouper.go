package stages

import (
	"context"
	"fmt"

	"github.com/agnivade/levenshtein"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

var _ ports.Stage = (*TextGrouperStage)(nil)

// TextGrouperStage partitions the accepted annotations by their text
// value using exact string equality, preserving first-seen order for
// both the key set and the members within each group. Grouping is O(n)
// in the number of accepted annotations.
//
// The stage can optionally scan the resulting key set for pairs of
// distinct texts within a small edit distance of each other. Such pairs
// usually mean the same sample was ingested twice with a typo and will
// be judged as two independent groups. The scan is advisory only: it
// counts pairs into domain.KeyNearDuplicatePairs and never changes the
// grouping itself.
type TextGrouperStage struct {
	// name is the unique identifier for this stage instance.
	name string
	// config contains the validated configuration parameters.
	config TextGrouperConfig
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// NearDuplicateConfig controls the optional near-duplicate key scan.
type NearDuplicateConfig struct {
	// Enabled turns the scan on. The scan compares every pair of distinct
	// text keys, so leave it off for very large key sets.
	// Default: false.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// MaxDistance is the largest Levenshtein distance at which two
	// distinct keys are reported as near duplicates.
	// Default: 2.
	MaxDistance int `yaml:"max_distance" json:"max_distance" validate:"omitempty,min=1,max=16"`
}

// TextGrouperConfig defines the configuration parameters for the
// TextGrouperStage.
type TextGrouperConfig struct {
	// NearDuplicate configures the advisory near-duplicate key scan.
	NearDuplicate NearDuplicateConfig `yaml:"near_duplicate" json:"near_duplicate"`
}

// DefaultTextGrouperConfig returns a TextGrouperConfig with the
// near-duplicate scan disabled.
func DefaultTextGrouperConfig() TextGrouperConfig {
	return TextGrouperConfig{
		NearDuplicate: NearDuplicateConfig{
			Enabled:     false,
			MaxDistance: 2,
		},
	}
}

// NewTextGrouperStage creates a new TextGrouperStage with validated
// configuration.
func NewTextGrouperStage(name string, config TextGrouperConfig) (*TextGrouperStage, error) {
	if name == "" {
		return nil, ErrEmptyStageName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &TextGrouperStage{
		name:   name,
		config: config,
		tracer: otel.Tracer("text-grouper-stage"),
	}, nil
}

// Name returns the unique identifier for this stage instance.
func (tgs *TextGrouperStage) Name() string { return tgs.name }

// Execute groups the accepted annotations by text and stores the result
// under domain.KeyGroups. Every annotation lands in exactly one group,
// keyed by its text.
//
// Returns an error only when the confidence filter has not run.
func (tgs *TextGrouperStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := tgs.tracer.Start(ctx, "TextGrouperStage.Execute",
		trace.WithAttributes(
			attribute.String("stage.type", "text_grouper"),
			attribute.String("stage.id", tgs.name),
			attribute.Bool("config.near_duplicate", tgs.config.NearDuplicate.Enabled),
		),
	)
	defer span.End()

	annotations, ok := domain.Get(state, domain.KeyAnnotations)
	if !ok {
		span.RecordError(ErrNoAnnotations)
		return state, ErrNoAnnotations
	}

	groups := domain.NewGroupedAnnotations()
	for _, annotation := range annotations {
		groups.Add(annotation)
	}

	nearDuplicates := 0
	if tgs.config.NearDuplicate.Enabled {
		nearDuplicates = tgs.countNearDuplicates(groups.Texts)
	}

	span.SetAttributes(
		attribute.Int("group.distinct_texts", groups.Len()),
		attribute.Int("group.near_duplicate_pairs", nearDuplicates),
	)

	state = domain.With(state, domain.KeyGroups, groups)
	return domain.With(state, domain.KeyNearDuplicatePairs, nearDuplicates), nil
}

// countNearDuplicates reports how many pairs of distinct keys fall
// within the configured edit distance. Quadratic in the key count.
func (tgs *TextGrouperStage) countNearDuplicates(texts []string) int {
	pairs := 0
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			if levenshtein.ComputeDistance(texts[i], texts[j]) <= tgs.config.NearDuplicate.MaxDistance {
				pairs++
			}
		}
	}
	return pairs
}

// Validate verifies the stage is properly configured and ready for
// execution.
func (tgs *TextGrouperStage) Validate() error {
	if err := validate.Struct(tgs.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration into the stage's
// config. The stage's configuration remains unchanged on error.
func (tgs *TextGrouperStage) UnmarshalParameters(params yaml.Node) error {
	config := DefaultTextGrouperConfig()

	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}

	tgs.config = config
	return nil
}

// NewTextGrouperFromConfig creates a TextGrouperStage from a
// configuration map. Missing keys keep their default values.
func NewTextGrouperFromConfig(id string, config map[string]any) (ports.Stage, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	cfg := DefaultTextGrouperConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return NewTextGrouperStage(id, cfg)
}
