package stages

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

var _ ports.Stage = (*AgreementResolverStage)(nil)

// AgreementResolverStage applies the agreement quality check (QC2): for
// each text group it computes the set of distinct labels. A group with
// exactly one distinct label becomes a domain.AgreedSample; a group with
// two or more becomes a domain.Disagreement carrying the sorted distinct
// labels. The two result sets are disjoint and together cover every
// group. A single-annotation group trivially agrees with itself.
//
// By default labels are compared verbatim. Comparison can optionally
// trim surrounding whitespace or fold case (Unicode-aware) before
// counting distinct labels; emitted labels always keep the first-seen
// original spelling so normalization never invents a label that no
// annotator wrote.
//
// Groups are processed in first-seen order and label sets are sorted
// lexicographically, so output is deterministic for identical input.
type AgreementResolverStage struct {
	// name is the unique identifier for this stage instance.
	name string
	// config contains the validated configuration parameters.
	config AgreementResolverConfig
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// AgreementResolverConfig controls label comparison during agreement
// resolution. The zero value compares labels verbatim, which is the
// contract's default.
type AgreementResolverConfig struct {
	// TrimWhitespace trims surrounding whitespace from labels before
	// comparison. Default: false.
	TrimWhitespace bool `yaml:"trim_whitespace" json:"trim_whitespace"`

	// CaseInsensitive folds case (Unicode-aware) before comparison.
	// Default: false.
	CaseInsensitive bool `yaml:"case_insensitive" json:"case_insensitive"`
}

// DefaultAgreementResolverConfig returns an AgreementResolverConfig that
// compares labels verbatim.
func DefaultAgreementResolverConfig() AgreementResolverConfig {
	return AgreementResolverConfig{}
}

// NewAgreementResolverStage creates a new AgreementResolverStage with
// validated configuration.
func NewAgreementResolverStage(name string, config AgreementResolverConfig) (*AgreementResolverStage, error) {
	if name == "" {
		return nil, ErrEmptyStageName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &AgreementResolverStage{
		name:   name,
		config: config,
		tracer: otel.Tracer("agreement-resolver-stage"),
	}, nil
}

// Name returns the unique identifier for this stage instance.
func (ars *AgreementResolverStage) Name() string { return ars.name }

// Execute resolves agreement for every group in the state and stores the
// two disjoint result sets under domain.KeyAgreedSamples and
// domain.KeyDisagreements.
//
// Returns an error only when the grouper has not run. A group can never
// have zero labels, since it only exists because at least one accepted
// annotation produced it.
func (ars *AgreementResolverStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := ars.tracer.Start(ctx, "AgreementResolverStage.Execute",
		trace.WithAttributes(
			attribute.String("stage.type", "agreement_resolver"),
			attribute.String("stage.id", ars.name),
			attribute.Bool("config.trim_whitespace", ars.config.TrimWhitespace),
			attribute.Bool("config.case_insensitive", ars.config.CaseInsensitive),
		),
	)
	defer span.End()

	groups, ok := domain.Get(state, domain.KeyGroups)
	if !ok {
		span.RecordError(ErrNoGroups)
		return state, ErrNoGroups
	}

	agreed := make([]domain.AgreedSample, 0, groups.Len())
	disagreements := make([]domain.Disagreement, 0)

	for _, text := range groups.Texts {
		members, _ := groups.Group(text)
		labels := ars.distinctLabels(members)

		if len(labels) == 1 {
			agreed = append(agreed, domain.AgreedSample{
				Text:  text,
				Label: labels[0],
			})
			continue
		}

		disagreements = append(disagreements, domain.Disagreement{
			Text:   text,
			Labels: labels,
		})
	}

	span.SetAttributes(
		attribute.Int("resolve.agreed", len(agreed)),
		attribute.Int("resolve.disagreed", len(disagreements)),
	)

	state = domain.With(state, domain.KeyAgreedSamples, agreed)
	return domain.With(state, domain.KeyDisagreements, disagreements), nil
}

// distinctLabels returns the group's distinct labels sorted
// lexicographically. With normalization enabled, distinctness is decided
// on the normalized form while the returned value is the first-seen
// original spelling of each class.
func (ars *AgreementResolverStage) distinctLabels(members []domain.Annotation) []string {
	seen := make(map[string]struct{}, len(members))
	labels := make([]string, 0, len(members))

	for _, member := range members {
		key := ars.prepareLabel(member.Label)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		labels = append(labels, member.Label)
	}

	sort.Strings(labels)
	return labels
}

// prepareLabel normalizes a label according to the stage's configuration.
// Applies transformations in order: whitespace trimming, then case folding.
func (ars *AgreementResolverStage) prepareLabel(label string) string {
	result := label

	if ars.config.TrimWhitespace {
		result = strings.TrimSpace(result)
	}

	if ars.config.CaseInsensitive {
		// Unicode-aware case folding handles characters that
		// strings.ToLower gets wrong.
		caser := cases.Fold()
		result = caser.String(result)
	}

	return result
}

// Validate verifies the stage is properly configured and ready for
// execution.
func (ars *AgreementResolverStage) Validate() error {
	if err := validate.Struct(ars.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration into the stage's
// config. The stage's configuration remains unchanged on error.
func (ars *AgreementResolverStage) UnmarshalParameters(params yaml.Node) error {
	config := DefaultAgreementResolverConfig()

	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}

	ars.config = config
	return nil
}

// NewAgreementResolverFromConfig creates an AgreementResolverStage from
// a configuration map. Missing keys keep their default values.
func NewAgreementResolverFromConfig(id string, config map[string]any) (ports.Stage, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	cfg := DefaultAgreementResolverConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return NewAgreementResolverStage(id, cfg)
}
