package application

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "raw_annotations.csv", cfg.InputPath)
	assert.Equal(t, "clean_training_dataset.jsonl", cfg.CleanOutputPath)
	assert.Equal(t, "disagreements.log", cfg.DisagreementsOutputPath)
	assert.Equal(t, 0.8, cfg.ConfidenceThreshold)
	assert.False(t, cfg.Normalize.TrimWhitespace)
	assert.False(t, cfg.NearDuplicate.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	require.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfig(t *testing.T) {
	t.Run("partial file overlays defaults", func(t *testing.T) {
		path := writeTempConfig(t, "input_path: custom.csv\nconfidence_threshold: 0.9\n")

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, "custom.csv", cfg.InputPath)
		assert.Equal(t, 0.9, cfg.ConfidenceThreshold)
		// Untouched fields keep their defaults.
		assert.Equal(t, "clean_training_dataset.jsonl", cfg.CleanOutputPath)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("full file", func(t *testing.T) {
		path := writeTempConfig(t, `
input_path: in.csv
clean_output_path: out.jsonl
disagreements_output_path: out.log
confidence_threshold: 0.75
normalize:
  trim_whitespace: true
  case_insensitive: true
near_duplicate:
  enabled: true
  max_distance: 3
logging:
  level: debug
  format: json
`)

		cfg, err := LoadConfig(path)
		require.NoError(t, err)

		assert.Equal(t, 0.75, cfg.ConfidenceThreshold)
		assert.True(t, cfg.Normalize.CaseInsensitive)
		assert.True(t, cfg.NearDuplicate.Enabled)
		assert.Equal(t, 3, cfg.NearDuplicate.MaxDistance)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ports.ErrConfigNotFound))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeTempConfig(t, "input_path: [unclosed\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		path := writeTempConfig(t, "confidence_threshold: 1.5\n")
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError bool
	}{
		{
			name:      "defaults are valid",
			mutate:    func(*Config) {},
			wantError: false,
		},
		{
			name:      "threshold zero is valid",
			mutate:    func(c *Config) { c.ConfidenceThreshold = 0 },
			wantError: false,
		},
		{
			name:      "threshold one is valid",
			mutate:    func(c *Config) { c.ConfidenceThreshold = 1 },
			wantError: false,
		},
		{
			name:      "threshold above one",
			mutate:    func(c *Config) { c.ConfidenceThreshold = 1.01 },
			wantError: true,
		},
		{
			name:      "negative threshold",
			mutate:    func(c *Config) { c.ConfidenceThreshold = -0.2 },
			wantError: true,
		},
		{
			name:      "missing input path",
			mutate:    func(c *Config) { c.InputPath = "" },
			wantError: true,
		},
		{
			name:      "missing clean output path",
			mutate:    func(c *Config) { c.CleanOutputPath = "" },
			wantError: true,
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantError: true,
		},
		{
			name:      "unknown log format",
			mutate:    func(c *Config) { c.Logging.Format = "xml" },
			wantError: true,
		},
		{
			name:      "near duplicate distance out of range",
			mutate:    func(c *Config) { c.NearDuplicate.MaxDistance = 100 },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := ValidateConfig(cfg)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
