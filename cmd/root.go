// Package cmd contains the CLI commands for the pipeline
package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"macropipe/internal/config"
)

var logger *logrus.Logger

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "macropipe",
	Short: "ETL pipeline for macroeconomic indicators",
	Long: `macropipe fetches macroeconomic indicators from the World Bank API,
derives analytical features and loads the result into a relational
warehouse. Stages run individually or as a full pipeline via "run".`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogger)

	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")

	logger = logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

func initLogger() {
	levelName, err := rootCmd.PersistentFlags().GetString("log-level")
	if err != nil || levelName == "" {
		levelName = os.Getenv("LOG_LEVEL")
	}
	if levelName == "" {
		levelName = "info"
	}

	level, parseErr := logrus.ParseLevel(levelName)
	if parseErr != nil {
		logger.WithError(parseErr).Warn("Invalid log level, defaulting to info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
}

// loadConfig reads the environment configuration and prepares the artifact
// directories every stage writes into
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Paths.EnsureDirs(); err != nil {
		return nil, err
	}
	return cfg, nil
}
