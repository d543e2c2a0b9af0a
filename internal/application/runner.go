package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/infrastructure/stages"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

// RunOptions carries the optional collaborators for a pipeline run.
// Zero values select sensible defaults: the process-wide slog logger,
// no metrics, and the built-in stage registry.
type RunOptions struct {
	// Logger receives structured progress lines. Defaults to slog.Default.
	Logger *slog.Logger

	// Metrics receives stage latency and record counts. Nil disables
	// metrics collection entirely.
	Metrics ports.MetricsCollector

	// Registry supplies the stage factories. Defaults to the built-in
	// registry with the five standard stages.
	Registry ports.StageRegistry
}

// stageSpec describes one stage of the default pipeline: its registry
// type, its identifier in the pipeline, and its configuration map.
type stageSpec struct {
	stageType string
	id        string
	config    map[string]any
}

// Run executes the complete quality-control pipeline for the given
// configuration: load, confidence-filter, group, resolve agreement,
// write outputs. It returns the run's headline counts.
//
// The run either completes with both outputs written or fails fast on
// the first unrecoverable error; record-level data problems never abort
// the run and are reported through the returned summary instead.
func Run(ctx context.Context, cfg Config, opts RunOptions) (domain.RunSummary, error) {
	if err := ValidateConfig(cfg); err != nil {
		return domain.RunSummary{}, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := opts.Registry
	if registry == nil {
		registry = NewDefaultStageRegistry()
	}

	pipeline, err := buildPipeline(cfg, registry, logger, opts.Metrics)
	if err != nil {
		return domain.RunSummary{}, err
	}

	rc := domain.RunContext{RunID: uuid.NewString(), StartedAt: time.Now()}
	logger.Info("starting annotation quality-control run",
		"run_id", rc.RunID,
		"input", cfg.InputPath,
		"threshold", cfg.ConfidenceThreshold,
	)

	finalState, err := pipeline.Execute(ctx, domain.NewState().WithRunContext(rc))
	if err != nil {
		return domain.RunSummary{RunID: rc.RunID}, err
	}

	summary := summarize(rc.RunID, finalState)
	recordRunMetrics(opts.Metrics, summary)

	logger.Info("run complete",
		"run_id", summary.RunID,
		"raw_records", summary.RawRecords,
		"accepted", summary.Filter.Accepted,
		"dropped", summary.Filter.Dropped(),
		"groups", summary.Groups,
		"agreed", summary.Agreed,
		"disagreed", summary.Disagreed,
		"duration", time.Since(rc.StartedAt),
	)

	if summary.NearDuplicatePairs > 0 {
		logger.Warn("near-duplicate text keys detected",
			"run_id", summary.RunID,
			"pairs", summary.NearDuplicatePairs,
		)
	}

	return summary, nil
}

// buildPipeline assembles the default five-stage pipeline from the
// configuration, wrapping each stage with logging and, when a collector
// is supplied, metrics.
func buildPipeline(
	cfg Config,
	registry ports.StageRegistry,
	logger *slog.Logger,
	collector ports.MetricsCollector,
) (*Pipeline, error) {
	nearDuplicate := map[string]any{"enabled": cfg.NearDuplicate.Enabled}
	if cfg.NearDuplicate.MaxDistance > 0 {
		nearDuplicate["max_distance"] = cfg.NearDuplicate.MaxDistance
	}

	specs := []stageSpec{
		{"csv_loader", "loader", map[string]any{
			"path": cfg.InputPath,
		}},
		{"confidence_filter", "filter", map[string]any{
			"threshold": cfg.ConfidenceThreshold,
		}},
		{"text_grouper", "grouper", map[string]any{
			"near_duplicate": nearDuplicate,
		}},
		{"agreement_resolver", "resolver", map[string]any{
			"trim_whitespace":  cfg.Normalize.TrimWhitespace,
			"case_insensitive": cfg.Normalize.CaseInsensitive,
		}},
		{"report_writer", "writer", map[string]any{
			"clean_path":         cfg.CleanOutputPath,
			"disagreements_path": cfg.DisagreementsOutputPath,
		}},
	}

	pipeline := NewPipeline("annotation_qc")
	for _, spec := range specs {
		stage, err := registry.CreateStage(spec.stageType, spec.id, spec.config)
		if err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}

		if err := stage.Validate(); err != nil {
			return nil, fmt.Errorf("build pipeline: stage %s invalid: %w", spec.id, err)
		}

		wrapped := stages.WithMetrics(stages.WithLogging(stage, logger), collector)
		if err := pipeline.Add(NewStageAdapter(wrapped, spec.id)); err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
	}

	return pipeline, nil
}

// summarize assembles the run's headline counts from the final state.
func summarize(runID string, state domain.State) domain.RunSummary {
	summary := domain.RunSummary{RunID: runID}

	if records, ok := domain.Get(state, domain.KeyRawRecords); ok {
		summary.RawRecords = len(records)
	}
	if stats, ok := domain.Get(state, domain.KeyFilterStats); ok {
		summary.Filter = stats
	}
	if groups, ok := domain.Get(state, domain.KeyGroups); ok {
		summary.Groups = groups.Len()
	}
	if agreed, ok := domain.Get(state, domain.KeyAgreedSamples); ok {
		summary.Agreed = len(agreed)
	}
	if disagreements, ok := domain.Get(state, domain.KeyDisagreements); ok {
		summary.Disagreed = len(disagreements)
	}
	if pairs, ok := domain.Get(state, domain.KeyNearDuplicatePairs); ok {
		summary.NearDuplicatePairs = pairs
	}

	return summary
}

// recordRunMetrics publishes the record-level counts of a completed run.
// Stage latency is handled separately by the metrics stage wrapper.
func recordRunMetrics(collector ports.MetricsCollector, summary domain.RunSummary) {
	if collector == nil {
		return
	}

	counts := map[string]float64{
		"raw_records": float64(summary.RawRecords),
		"accepted":    float64(summary.Filter.Accepted),
		"dropped":     float64(summary.Filter.Dropped()),
		"groups":      float64(summary.Groups),
		"agreed":      float64(summary.Agreed),
		"disagreed":   float64(summary.Disagreed),
	}
	for metric, value := range counts {
		collector.RecordGauge(metric, value, nil)
	}

	outcomes := map[string]int{
		"accepted":           summary.Filter.Accepted,
		"below_threshold":    summary.Filter.BelowThreshold,
		"invalid_confidence": summary.Filter.InvalidConfidence,
		"missing_field":      summary.Filter.MissingField,
	}
	for outcome, count := range outcomes {
		collector.RecordCounter("records_total", float64(count), map[string]string{
			"run_id":  summary.RunID,
			"stage":   "filter",
			"outcome": outcome,
		})
	}
}
