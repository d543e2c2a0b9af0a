package stages

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

var _ ports.Stage = (*ReportWriterStage)(nil)

// ReportWriterStage serializes the two QC2 result sets to their
// destinations: the agreed samples as a compact UTF-8 JSONL clean
// dataset (one self-contained {"text","label"} record per line) and the
// disagreements as a human-readable report with one line per conflict:
//
//	TEXT: <text> | LABELS: <label1>, <label2>, ...
//
// Writing is all-or-nothing per destination: content goes to a temporary
// file in the destination directory and is renamed into place only after
// a successful flush, so a failed run never leaves a truncated file that
// looks like a complete one. Failures surface as a ports.OutputError
// wrapping ports.ErrOutputWrite.
type ReportWriterStage struct {
	// name is the unique identifier for this stage instance.
	name string
	// config contains the validated configuration parameters.
	config ReportWriterConfig
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// ReportWriterConfig names the two output destinations.
type ReportWriterConfig struct {
	// CleanPath is the destination of the clean training dataset.
	// Default: "clean_training_dataset.jsonl".
	CleanPath string `yaml:"clean_path" json:"clean_path" validate:"required"`

	// DisagreementsPath is the destination of the disagreement report.
	// Default: "disagreements.log".
	DisagreementsPath string `yaml:"disagreements_path" json:"disagreements_path" validate:"required"`
}

// DefaultReportWriterConfig returns a ReportWriterConfig with the default
// output file names.
func DefaultReportWriterConfig() ReportWriterConfig {
	return ReportWriterConfig{
		CleanPath:         "clean_training_dataset.jsonl",
		DisagreementsPath: "disagreements.log",
	}
}

// NewReportWriterStage creates a new ReportWriterStage with validated
// configuration.
func NewReportWriterStage(name string, config ReportWriterConfig) (*ReportWriterStage, error) {
	if name == "" {
		return nil, ErrEmptyStageName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &ReportWriterStage{
		name:   name,
		config: config,
		tracer: otel.Tracer("report-writer-stage"),
	}, nil
}

// Name returns the unique identifier for this stage instance.
func (rws *ReportWriterStage) Name() string { return rws.name }

// Execute writes both destinations. The clean dataset is written first;
// if it fails, the disagreement report is not attempted and the previous
// contents of both destinations are left untouched.
//
// The state passes through unchanged: this stage exists for its side
// effects.
func (rws *ReportWriterStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := rws.tracer.Start(ctx, "ReportWriterStage.Execute",
		trace.WithAttributes(
			attribute.String("stage.type", "report_writer"),
			attribute.String("stage.id", rws.name),
			attribute.String("config.clean_path", rws.config.CleanPath),
			attribute.String("config.disagreements_path", rws.config.DisagreementsPath),
		),
	)
	defer span.End()

	agreed, ok := domain.Get(state, domain.KeyAgreedSamples)
	if !ok {
		span.RecordError(ErrNoResults)
		return state, ErrNoResults
	}

	disagreements, ok := domain.Get(state, domain.KeyDisagreements)
	if !ok {
		span.RecordError(ErrNoResults)
		return state, ErrNoResults
	}

	if err := writeAtomic(rws.config.CleanPath, func(w io.Writer) error {
		return writeCleanDataset(w, agreed)
	}); err != nil {
		outputErr := ports.NewOutputError(rws.config.CleanPath, fmt.Errorf("%w: %v", ports.ErrOutputWrite, err))
		span.RecordError(outputErr)
		return state, outputErr
	}

	if err := writeAtomic(rws.config.DisagreementsPath, func(w io.Writer) error {
		return writeDisagreementReport(w, disagreements)
	}); err != nil {
		outputErr := ports.NewOutputError(rws.config.DisagreementsPath, fmt.Errorf("%w: %v", ports.ErrOutputWrite, err))
		span.RecordError(outputErr)
		return state, outputErr
	}

	span.SetAttributes(
		attribute.Int("write.agreed_samples", len(agreed)),
		attribute.Int("write.disagreements", len(disagreements)),
	)

	return state, nil
}

// writeCleanDataset emits one compact JSON record per agreed sample.
// Every agreed sample appears exactly once, in the order given.
func writeCleanDataset(w io.Writer, agreed []domain.AgreedSample) error {
	for _, sample := range agreed {
		line, err := json.Marshal(sample)
		if err != nil {
			return fmt.Errorf("marshal sample %q: %w", sample.Text, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// writeDisagreementReport emits the fixed literal report format, one
// line per disagreement. Labels arrive already sorted from the resolver.
func writeDisagreementReport(w io.Writer, disagreements []domain.Disagreement) error {
	for _, d := range disagreements {
		if _, err := fmt.Fprintf(w, "TEXT: %s | LABELS: %s\n", d.Text, strings.Join(d.Labels, ", ")); err != nil {
			return err
		}
	}
	return nil
}

// writeAtomic writes through a temporary file in the destination
// directory and renames it into place after a successful flush. On any
// failure the temporary file is removed and the destination is left as
// it was.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		cleanup()
		return err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return fmt.Errorf("flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// Validate verifies the stage is properly configured and ready for
// execution.
func (rws *ReportWriterStage) Validate() error {
	if err := validate.Struct(rws.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration into the stage's
// config. The stage's configuration remains unchanged on error.
func (rws *ReportWriterStage) UnmarshalParameters(params yaml.Node) error {
	config := DefaultReportWriterConfig()

	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}

	rws.config = config
	return nil
}

// NewReportWriterFromConfig creates a ReportWriterStage from a
// configuration map. Missing keys keep their default values.
func NewReportWriterFromConfig(id string, config map[string]any) (ports.Stage, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	cfg := DefaultReportWriterConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return NewReportWriterStage(id, cfg)
}
