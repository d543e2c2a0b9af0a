// Package application assembles and runs the annotation quality-control
// pipeline: configuration, stage registry, sequential execution, and the
// run orchestrator.
package application

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

// Config is the complete runtime configuration for one pipeline run.
// The zero value is not usable; start from DefaultConfig so that running
// with no configuration at all reproduces the original fixed file names
// and threshold.
type Config struct {
	// InputPath is the tabular input file of raw annotations.
	InputPath string `yaml:"input_path" validate:"required"`

	// CleanOutputPath is the destination of the clean training dataset
	// (newline-delimited JSON records).
	CleanOutputPath string `yaml:"clean_output_path" validate:"required"`

	// DisagreementsOutputPath is the destination of the human-readable
	// disagreement report.
	DisagreementsOutputPath string `yaml:"disagreements_output_path" validate:"required"`

	// ConfidenceThreshold is the minimum acceptable confidence score,
	// inclusive.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" validate:"probability"`

	// Normalize configures optional label normalization during agreement
	// resolution. Defaults compare labels verbatim.
	Normalize NormalizeConfig `yaml:"normalize"`

	// NearDuplicate configures the advisory near-duplicate text-key scan.
	// Default: disabled.
	NearDuplicate NearDuplicateConfig `yaml:"near_duplicate"`

	// Logging configures the structured logger.
	Logging LoggingConfig `yaml:"logging"`
}

// NormalizeConfig mirrors the agreement resolver's comparison options.
type NormalizeConfig struct {
	// TrimWhitespace trims surrounding whitespace from labels before
	// comparison.
	TrimWhitespace bool `yaml:"trim_whitespace"`

	// CaseInsensitive folds case before comparison.
	CaseInsensitive bool `yaml:"case_insensitive"`
}

// NearDuplicateConfig mirrors the grouper's advisory scan options.
type NearDuplicateConfig struct {
	// Enabled turns the scan on.
	Enabled bool `yaml:"enabled"`

	// MaxDistance is the largest edit distance reported as a near
	// duplicate. Zero means "use the stage default".
	MaxDistance int `yaml:"max_distance" validate:"omitempty,min=1,max=16"`
}

// LoggingConfig selects the log level and output format.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Format is one of text, json. Default: text.
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns the configuration the pipeline runs with when no
// file or flags are supplied: the original fixed file names and the 0.8
// confidence threshold.
func DefaultConfig() Config {
	return Config{
		InputPath:               "raw_annotations.csv",
		CleanOutputPath:         "clean_training_dataset.jsonl",
		DisagreementsOutputPath: "disagreements.log",
		ConfidenceThreshold:     0.8,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads a YAML configuration file and overlays it onto
// DefaultConfig, so a partial file only overrides what it names.
// A missing file surfaces as a ports.ConfigError wrapping
// ports.ErrConfigNotFound.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, ports.NewConfigError(path, fmt.Errorf("%w: %v", ports.ErrConfigNotFound, err))
		}
		return Config{}, ports.NewConfigError(path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, ports.NewConfigError(path, fmt.Errorf("parse yaml: %w", err))
	}

	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// ValidateConfig checks a configuration against its struct constraints
// and the custom validators registered for this package.
func ValidateConfig(cfg Config) error {
	if err := configValidator.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
