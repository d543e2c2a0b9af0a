package stages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/domain"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewCSVLoaderStage(t *testing.T) {
	tests := []struct {
		name      string
		stageName string
		config    CSVLoaderConfig
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid configuration",
			stageName: "loader",
			config:    CSVLoaderConfig{Path: "input.csv", Comma: ",", LazyQuotes: true},
			wantError: false,
		},
		{
			name:      "default configuration",
			stageName: "loader",
			config:    DefaultCSVLoaderConfig(),
			wantError: false,
		},
		{
			name:      "empty stage name",
			stageName: "",
			config:    DefaultCSVLoaderConfig(),
			wantError: true,
			errorMsg:  "stage name cannot be empty",
		},
		{
			name:      "missing path",
			stageName: "loader",
			config:    CSVLoaderConfig{Comma: ","},
			wantError: true,
			errorMsg:  "validation failed",
		},
		{
			name:      "multi-character delimiter",
			stageName: "loader",
			config:    CSVLoaderConfig{Path: "input.csv", Comma: ",;"},
			wantError: true,
			errorMsg:  "validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage, err := NewCSVLoaderStage(tt.stageName, tt.config)
			if tt.wantError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Nil(t, stage)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, stage)
				assert.Equal(t, tt.stageName, stage.Name())
			}
		})
	}
}

func TestCSVLoaderStage_Execute(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantRecords []domain.RawRecord
	}{
		{
			name: "standard rows",
			content: "text,annotator_id,label,confidence_score\n" +
				"hello,a1,greeting,0.95\n" +
				"world,a2,noun,0.80\n",
			wantRecords: []domain.RawRecord{
				{"text": "hello", "annotator_id": "a1", "label": "greeting", "confidence_score": "0.95"},
				{"text": "world", "annotator_id": "a2", "label": "noun", "confidence_score": "0.80"},
			},
		},
		{
			name: "short row padded against header",
			content: "text,annotator_id,label,confidence_score\n" +
				"hello,a1\n",
			wantRecords: []domain.RawRecord{
				{"text": "hello", "annotator_id": "a1", "label": "", "confidence_score": ""},
			},
		},
		{
			name: "extra cells beyond header ignored",
			content: "text,label\n" +
				"hello,greeting,surplus\n",
			wantRecords: []domain.RawRecord{
				{"text": "hello", "label": "greeting"},
			},
		},
		{
			name: "quoted field with embedded comma",
			content: "text,label,confidence_score\n" +
				"\"hello, world\",greeting,0.9\n",
			wantRecords: []domain.RawRecord{
				{"text": "hello, world", "label": "greeting", "confidence_score": "0.9"},
			},
		},
		{
			name:        "header only",
			content:     "text,annotator_id,label,confidence_score\n",
			wantRecords: []domain.RawRecord{},
		},
		{
			name:        "empty file",
			content:     "",
			wantRecords: []domain.RawRecord{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCSVLoaderConfig()
			cfg.Path = writeTempCSV(t, tt.content)

			stage, err := NewCSVLoaderStage("loader", cfg)
			require.NoError(t, err)

			state, err := stage.Execute(context.Background(), domain.NewState())
			require.NoError(t, err)

			records, ok := domain.Get(state, domain.KeyRawRecords)
			require.True(t, ok)
			assert.Equal(t, tt.wantRecords, records)
		})
	}
}

func TestCSVLoaderStage_ExecuteMissingFile(t *testing.T) {
	cfg := DefaultCSVLoaderConfig()
	cfg.Path = filepath.Join(t.TempDir(), "does_not_exist.csv")

	stage, err := NewCSVLoaderStage("loader", cfg)
	require.NoError(t, err)

	_, err = stage.Execute(context.Background(), domain.NewState())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrInputNotFound))

	var inputErr *ports.InputError
	require.True(t, errors.As(err, &inputErr))
	assert.Equal(t, cfg.Path, inputErr.Path)
}

func TestCSVLoaderStage_UnmarshalParameters(t *testing.T) {
	stage, err := NewCSVLoaderStage("loader", DefaultCSVLoaderConfig())
	require.NoError(t, err)

	var params yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("path: other.csv\ncomma: \";\"\n"), &params))

	require.NoError(t, stage.UnmarshalParameters(*params.Content[0]))
	assert.Equal(t, "other.csv", stage.config.Path)
	assert.Equal(t, ";", stage.config.Comma)

	// Invalid parameters leave the existing configuration untouched.
	var bad yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("path: \"\"\n"), &bad))
	assert.Error(t, stage.UnmarshalParameters(*bad.Content[0]))
	assert.Equal(t, "other.csv", stage.config.Path)
}

func TestNewCSVLoaderFromConfig(t *testing.T) {
	stage, err := NewCSVLoaderFromConfig("loader", map[string]any{"path": "data.csv"})
	require.NoError(t, err)
	assert.Equal(t, "loader", stage.Name())

	_, err = NewCSVLoaderFromConfig("", map[string]any{"path": "data.csv"})
	assert.ErrorIs(t, err, ErrEmptyStageName)
}
