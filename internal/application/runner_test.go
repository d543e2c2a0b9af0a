package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

func runConfig(t *testing.T, csvContent string) Config {
	t.Helper()
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.InputPath = filepath.Join(dir, "raw_annotations.csv")
	cfg.CleanOutputPath = filepath.Join(dir, "clean_training_dataset.jsonl")
	cfg.DisagreementsOutputPath = filepath.Join(dir, "disagreements.log")

	require.NoError(t, os.WriteFile(cfg.InputPath, []byte(csvContent), 0o644))
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunEndToEnd(t *testing.T) {
	cfg := runConfig(t, "text,annotator_id,label,confidence_score\n"+
		"hello,a1,greeting,0.95\n"+
		"hello,a2,greeting,0.99\n"+
		"world,a3,noun,0.85\n"+
		"meow,a4,cat,0.90\n"+
		"meow,a5,dog,0.88\n"+
		"faint,a6,whisper,0.50\n"+
		"broken,a7,noise,abc\n")

	summary, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger()})
	require.NoError(t, err)

	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 7, summary.RawRecords)
	assert.Equal(t, 5, summary.Filter.Accepted)
	assert.Equal(t, 1, summary.Filter.BelowThreshold)
	assert.Equal(t, 1, summary.Filter.InvalidConfidence)
	assert.Equal(t, 3, summary.Groups)
	assert.Equal(t, 2, summary.Agreed)
	assert.Equal(t, 1, summary.Disagreed)

	clean, err := os.ReadFile(cfg.CleanOutputPath)
	require.NoError(t, err)
	assert.Equal(t,
		`{"text":"hello","label":"greeting"}`+"\n"+
			`{"text":"world","label":"noun"}`+"\n",
		string(clean),
	)

	report, err := os.ReadFile(cfg.DisagreementsOutputPath)
	require.NoError(t, err)
	assert.Equal(t, "TEXT: meow | LABELS: cat, dog\n", string(report))
}

func TestRunThresholdBoundary(t *testing.T) {
	cfg := runConfig(t, "text,annotator_id,label,confidence_score\n"+
		"edge,a1,keep,0.8\n"+
		"under,a2,drop,0.7999\n")

	summary, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger()})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Filter.Accepted)
	assert.Equal(t, 1, summary.Filter.BelowThreshold)

	clean, err := os.ReadFile(cfg.CleanOutputPath)
	require.NoError(t, err)
	assert.Equal(t, `{"text":"edge","label":"keep"}`+"\n", string(clean))
}

func TestRunEmptyInput(t *testing.T) {
	cfg := runConfig(t, "text,annotator_id,label,confidence_score\n")

	summary, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger()})
	require.NoError(t, err)

	assert.Equal(t, 0, summary.RawRecords)
	assert.Equal(t, 0, summary.Agreed)
	assert.Equal(t, 0, summary.Disagreed)

	// Outputs still exist, empty.
	clean, err := os.ReadFile(cfg.CleanOutputPath)
	require.NoError(t, err)
	assert.Empty(t, clean)

	report, err := os.ReadFile(cfg.DisagreementsOutputPath)
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestRunIdempotent(t *testing.T) {
	cfg := runConfig(t, "text,annotator_id,label,confidence_score\n"+
		"hello,a1,greeting,0.95\n"+
		"meow,a2,cat,0.9\n"+
		"meow,a3,dog,0.9\n")

	first, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger()})
	require.NoError(t, err)
	firstClean, err := os.ReadFile(cfg.CleanOutputPath)
	require.NoError(t, err)
	firstReport, err := os.ReadFile(cfg.DisagreementsOutputPath)
	require.NoError(t, err)

	second, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger()})
	require.NoError(t, err)
	secondClean, err := os.ReadFile(cfg.CleanOutputPath)
	require.NoError(t, err)
	secondReport, err := os.ReadFile(cfg.DisagreementsOutputPath)
	require.NoError(t, err)

	assert.Equal(t, firstClean, secondClean)
	assert.Equal(t, firstReport, secondReport)
	// Run IDs differ, counts do not.
	assert.NotEqual(t, first.RunID, second.RunID)
	first.RunID, second.RunID = "", ""
	assert.Equal(t, first, second)
}

func TestRunNormalization(t *testing.T) {
	cfg := runConfig(t, "text,annotator_id,label,confidence_score\n"+
		"hello,a1,Greeting,0.9\n"+
		"hello,a2, greeting ,0.9\n")
	cfg.Normalize.TrimWhitespace = true
	cfg.Normalize.CaseInsensitive = true

	summary, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger()})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Agreed)
	assert.Equal(t, 0, summary.Disagreed)
}

func TestRunNearDuplicateAdvisory(t *testing.T) {
	cfg := runConfig(t, "text,annotator_id,label,confidence_score\n"+
		"colour,a1,british,0.9\n"+
		"color,a2,american,0.9\n")
	cfg.NearDuplicate.Enabled = true

	summary, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger()})
	require.NoError(t, err)

	// Advisory only: both texts stay separate groups.
	assert.Equal(t, 2, summary.Groups)
	assert.Equal(t, 1, summary.NearDuplicatePairs)
}

func TestRunMissingInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InputPath = filepath.Join(t.TempDir(), "absent.csv")
	cfg.CleanOutputPath = filepath.Join(t.TempDir(), "clean.jsonl")
	cfg.DisagreementsOutputPath = filepath.Join(t.TempDir(), "dis.log")

	_, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrInputNotFound))

	// Nothing was written.
	_, statErr := os.Stat(cfg.CleanOutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ConfidenceThreshold = 1.5

	_, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger()})
	assert.Error(t, err)
}

// summaryCollector records gauge and counter calls from a run.
type summaryCollector struct {
	gauges   map[string]float64
	counters map[string]float64
}

func newSummaryCollector() *summaryCollector {
	return &summaryCollector{
		gauges:   make(map[string]float64),
		counters: make(map[string]float64),
	}
}

func (c *summaryCollector) RecordLatency(string, time.Duration, map[string]string) {}

func (c *summaryCollector) RecordCounter(name string, value float64, labels map[string]string) {
	c.counters[name+"/"+labels["outcome"]] += value
}

func (c *summaryCollector) RecordGauge(name string, value float64, _ map[string]string) {
	c.gauges[name] = value
}

func (c *summaryCollector) RecordHistogram(string, float64, map[string]string) {}

func TestRunRecordsMetrics(t *testing.T) {
	cfg := runConfig(t, "text,annotator_id,label,confidence_score\n"+
		"hello,a1,greeting,0.95\n"+
		"faint,a2,whisper,0.5\n")

	collector := newSummaryCollector()
	_, err := Run(context.Background(), cfg, RunOptions{Logger: discardLogger(), Metrics: collector})
	require.NoError(t, err)

	assert.Equal(t, 2.0, collector.gauges["raw_records"])
	assert.Equal(t, 1.0, collector.gauges["accepted"])
	assert.Equal(t, 1.0, collector.gauges["dropped"])
	assert.Equal(t, 1.0, collector.counters["records_total/accepted"])
	assert.Equal(t, 1.0, collector.counters["records_total/below_threshold"])
	// Stage wrapper counters fire once per stage.
	assert.Equal(t, 5.0, collector.counters["stage_executions_total/"])
}

func TestRunContextCancelled(t *testing.T) {
	cfg := runConfig(t, "text,annotator_id,label,confidence_score\nhello,a1,greeting,0.9\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, RunOptions{Logger: discardLogger()})
	assert.ErrorIs(t, err, context.Canceled)
}
