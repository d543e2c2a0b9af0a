package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vasanthadwara/Text-Annotation-Pipeline/infrastructure/middleware"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/application"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/logging"
	"github.com/Vasanthadwara/Text-Annotation-Pipeline/internal/ports"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag        string
		inputFlag         string
		cleanFlag         string
		disagreementsFlag string
		thresholdFlag     float64
		metricsFlag       bool
		logLevelFlag      string
		logFormatFlag     string
	)

	rootCmd := &cobra.Command{
		Use:   "annotqc",
		Short: "Batch quality control for crowd-sourced text annotations",
		Long: `annotqc runs a batch quality-control pass over crowd-sourced text
annotation records: it ingests a CSV of raw labeled samples, drops
low-confidence judgments, detects annotator disagreement per text, and
writes a clean JSONL training dataset plus a disagreement report.

With no arguments it reads raw_annotations.csv and writes
clean_training_dataset.jsonl and disagreements.log in the working
directory, using a confidence threshold of 0.8.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := application.DefaultConfig()
			if configFlag != "" {
				loaded, err := application.LoadConfig(configFlag)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			// Flags override both defaults and the config file, but only
			// when actually set on the command line.
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.InputPath = inputFlag
			}
			if flags.Changed("clean-output") {
				cfg.CleanOutputPath = cleanFlag
			}
			if flags.Changed("disagreements-output") {
				cfg.DisagreementsOutputPath = disagreementsFlag
			}
			if flags.Changed("threshold") {
				cfg.ConfidenceThreshold = thresholdFlag
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevelFlag
			}
			if flags.Changed("log-format") {
				cfg.Logging.Format = logFormatFlag
			}

			logger, err := logging.New(os.Stdout, logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
			})
			if err != nil {
				return err
			}

			var collector ports.MetricsCollector
			if metricsFlag {
				collector = middleware.NewPrometheusMetrics()
			}

			summary, err := application.Run(cmd.Context(), cfg, application.RunOptions{
				Logger:  logger,
				Metrics: collector,
			})
			if err != nil {
				return fmt.Errorf("quality-control run failed: %w", err)
			}

			logger.Info("outputs written",
				"clean_dataset", cfg.CleanOutputPath,
				"disagreements_report", cfg.DisagreementsOutputPath,
				"agreed", summary.Agreed,
				"disagreed", summary.Disagreed,
			)
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (YAML)")
	rootCmd.Flags().StringVarP(&inputFlag, "input", "i", "raw_annotations.csv", "Raw annotations CSV path")
	rootCmd.Flags().StringVar(&cleanFlag, "clean-output", "clean_training_dataset.jsonl", "Clean training dataset destination")
	rootCmd.Flags().StringVar(&disagreementsFlag, "disagreements-output", "disagreements.log", "Disagreement report destination")
	rootCmd.Flags().Float64VarP(&thresholdFlag, "threshold", "t", 0.8, "Confidence threshold (inclusive, 0..1)")
	rootCmd.Flags().BoolVar(&metricsFlag, "metrics", false, "Register Prometheus metrics for this run")
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormatFlag, "log-format", "text", "Log format: text, json")

	return rootCmd
}
