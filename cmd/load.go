package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"macropipe/adapters/s3sink"
	"macropipe/adapters/warehouse"
	"macropipe/internal/config"
	"macropipe/internal/errors"
	"macropipe/internal/load"
	"macropipe/ports"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load processed artifacts into the warehouse and build the export bundle",
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	runner, cleanup, err := buildLoadRunner(cmd, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"records":       res.RecordCount,
		"quality_score": res.QualityScore,
		"backup_dir":    res.BackupDir,
		"archive":       res.Archive,
	}).Info("Load finished")
	return nil
}

// buildLoadRunner wires the warehouse connection and the optional cloud
// sink. The returned cleanup closes the warehouse connection.
func buildLoadRunner(cmd *cobra.Command, cfg *config.Config) (*load.Runner, func(), error) {
	if cfg.Database.URL == "" {
		return nil, nil, errors.ConfigInvalid("DATABASE_URL is required for the load stage")
	}

	wh, err := warehouse.Connect(cfg.Database.URL, logger)
	if err != nil {
		return nil, nil, err
	}

	var sink ports.BlobSink
	if cfg.S3.Enabled {
		s3Sink, err := s3sink.New(cmd.Context(), cfg.S3, logger)
		if err != nil {
			wh.Close()
			return nil, nil, err
		}
		sink = s3Sink
	}

	runner := load.NewRunner(wh, sink, cfg.Paths, cfg.Source.CountryName, logger)
	cleanup := func() {
		if err := wh.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close warehouse connection")
		}
	}
	return runner, cleanup, nil
}
