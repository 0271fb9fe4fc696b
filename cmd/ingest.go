package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"macropipe/adapters/worldbank"
	"macropipe/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch indicator observations from the World Bank API",
	RunE:  runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := worldbank.NewClient(cfg.Source, logger)
	runner := ingest.NewRunner(client, cfg.Paths, cfg.Source.RequestDelay, logger)

	res, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"records":    res.RecordCount,
		"indicators": res.IndicatorCount,
		"artifact":   res.Artifact,
	}).Info("Ingest finished")
	return nil
}
