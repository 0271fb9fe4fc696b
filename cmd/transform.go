package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"macropipe/internal/transform"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Clean the raw extract and derive analytical features",
	RunE:  runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)
}

func runTransform(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	transformer := transform.New(cfg.Paths, cfg.Source.CountryCode, logger)

	res, err := transformer.Run()
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"records":    res.RecordCount,
		"indicators": res.IndicatorCount,
		"year_range": res.MaxYear - res.MinYear + 1,
	}).Info("Transform finished")
	return nil
}
