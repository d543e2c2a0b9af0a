package stages

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

var _ ports.Stage = (*CSVLoaderStage)(nil)

// CSVLoaderStage reads a delimited tabular file whose first row is a
// header and turns each data row into a domain.RawRecord keyed by the
// header's column names, preserving input order.
//
// Rows shorter than the header carry empty strings for the missing
// trailing fields; cells beyond the header are ignored. The stage does
// not interpret any field values - that is the confidence filter's job.
//
// A missing or unreadable input file is fatal and surfaces as a
// ports.InputError wrapping ports.ErrInputNotFound.
type CSVLoaderStage struct {
	// name is the unique identifier for this stage instance.
	name string
	// config contains the validated configuration parameters.
	config CSVLoaderConfig
	// tracer is the OpenTelemetry tracer for observability.
	tracer trace.Tracer
}

// CSVLoaderConfig controls how the input file is located and parsed.
type CSVLoaderConfig struct {
	// Path is the input file to read.
	Path string `yaml:"path" json:"path" validate:"required"`

	// Comma is the field delimiter, a single character.
	// Default: "," (standard CSV).
	Comma string `yaml:"comma" json:"comma" validate:"omitempty,len=1"`

	// LazyQuotes permits bare quotes inside unquoted fields, matching the
	// tolerant behavior of most spreadsheet exports.
	// Default: true.
	LazyQuotes bool `yaml:"lazy_quotes" json:"lazy_quotes"`
}

// DefaultCSVLoaderConfig returns a CSVLoaderConfig with the default input
// file name and tolerant CSV parsing.
func DefaultCSVLoaderConfig() CSVLoaderConfig {
	return CSVLoaderConfig{
		Path:       "raw_annotations.csv",
		Comma:      ",",
		LazyQuotes: true,
	}
}

// NewCSVLoaderStage creates a new CSVLoaderStage with validated
// configuration. Returns ErrEmptyStageName if name is empty, or a
// configuration validation error if the config fails its constraints.
func NewCSVLoaderStage(name string, config CSVLoaderConfig) (*CSVLoaderStage, error) {
	if name == "" {
		return nil, ErrEmptyStageName
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &CSVLoaderStage{
		name:   name,
		config: config,
		tracer: otel.Tracer("csv-loader-stage"),
	}, nil
}

// Name returns the unique identifier for this stage instance.
func (cls *CSVLoaderStage) Name() string { return cls.name }

// Execute reads the configured input file and stores its rows in the
// state under domain.KeyRawRecords.
//
// Errors:
//   - ports.InputError wrapping ports.ErrInputNotFound when the file is
//     missing or cannot be opened
//   - ports.InputError when the file cannot be parsed as CSV
func (cls *CSVLoaderStage) Execute(ctx context.Context, state domain.State) (domain.State, error) {
	_, span := cls.tracer.Start(ctx, "CSVLoaderStage.Execute",
		trace.WithAttributes(
			attribute.String("stage.type", "csv_loader"),
			attribute.String("stage.id", cls.name),
			attribute.String("config.path", cls.config.Path),
		),
	)
	defer span.End()

	f, err := os.Open(cls.config.Path)
	if err != nil {
		inputErr := ports.NewInputError(cls.config.Path, fmt.Errorf("%w: %v", ports.ErrInputNotFound, err))
		span.RecordError(inputErr)
		return state, inputErr
	}
	defer f.Close()

	records, err := cls.readRecords(f)
	if err != nil {
		inputErr := ports.NewInputError(cls.config.Path, err)
		span.RecordError(inputErr)
		return state, inputErr
	}

	span.SetAttributes(attribute.Int("load.records_count", len(records)))

	return domain.With(state, domain.KeyRawRecords, records), nil
}

// readRecords consumes the reader and maps each data row onto the header.
func (cls *CSVLoaderStage) readRecords(r io.Reader) ([]domain.RawRecord, error) {
	reader := csv.NewReader(r)
	if cls.config.Comma != "" {
		reader.Comma = rune(cls.config.Comma[0])
	}
	reader.LazyQuotes = cls.config.LazyQuotes
	// Rows may be ragged; short rows are padded against the header below.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		// An empty file has no header and therefore no records.
		return []domain.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	records := make([]domain.RawRecord, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records)+2, err)
		}

		record := make(domain.RawRecord, len(header))
		for i, column := range header {
			if i < len(row) {
				record[column] = row[i]
			} else {
				record[column] = ""
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// Validate verifies the stage is properly configured and ready for
// execution. It does not touch the filesystem; a missing input file is
// reported at execution time.
func (cls *CSVLoaderStage) Validate() error {
	if err := validate.Struct(cls.config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// UnmarshalParameters deserializes YAML configuration into the stage's
// config. The stage's configuration remains unchanged on error.
func (cls *CSVLoaderStage) UnmarshalParameters(params yaml.Node) error {
	config := DefaultCSVLoaderConfig()

	if err := params.Decode(&config); err != nil {
		return fmt.Errorf("failed to decode parameters: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("parameter validation failed: %w", err)
	}

	cls.config = config
	return nil
}

// NewCSVLoaderFromConfig creates a CSVLoaderStage from a configuration
// map. This is the boundary adapter for YAML configuration; missing keys
// keep their DefaultCSVLoaderConfig values.
func NewCSVLoaderFromConfig(id string, config map[string]any) (ports.Stage, error) {
	data, err := yaml.Marshal(config)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	cfg := DefaultCSVLoaderConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return NewCSVLoaderStage(id, cfg)
}
