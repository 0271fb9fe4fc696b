package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"macropipe/adapters/worldbank"
	"macropipe/app"
	"macropipe/internal/ingest"
	"macropipe/internal/transform"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the full pipeline: ingest, transform and load",
	RunE:  runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := worldbank.NewClient(cfg.Source, logger)
	ingestRunner := ingest.NewRunner(client, cfg.Paths, cfg.Source.RequestDelay, logger)
	transformer := transform.New(cfg.Paths, cfg.Source.CountryCode, logger)

	loadRunner, cleanup, err := buildLoadRunner(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	service := app.NewPipelineService(ingestRunner, transformer, loadRunner, cfg.Paths, logger)

	report, err := service.Run(cmd.Context())
	if err != nil {
		return err
	}

	for _, stage := range report.Stages {
		logger.WithFields(logrus.Fields{
			"stage":       stage.Stage,
			"records":     stage.RecordCount,
			"attempts":    stage.Attempts,
			"duration_ms": stage.DurationMs,
		}).Info("Stage summary")
	}
	logger.WithFields(logrus.Fields{
		"run_id":        report.RunID,
		"quality_score": report.QualityScore,
	}).Info("Run summary")
	return nil
}
