package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"macropipe/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Source   SourceConfig `validate:"required"`
	Database DatabaseConfig
	Paths    PathConfig `validate:"required"`
	S3       S3Config
	LogLevel string
}

// SourceConfig holds World Bank API settings
type SourceConfig struct {
	BaseURL      string `validate:"required"`
	CountryCode  string `validate:"required"`
	CountryName  string
	StartYear    int
	EndYear      int
	PerPage      int
	Timeout      time.Duration
	RequestDelay time.Duration
}

// DatabaseConfig holds warehouse connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// PathConfig holds the artifact directory layout rooted at DataDir
type PathConfig struct {
	DataDir      string
	RawDir       string
	ProcessedDir string
	BackupDir    string
	ExportDir    string
}

// S3Config holds the optional cloud sink settings
type S3Config struct {
	Enabled      bool
	Bucket       string
	Region       string
	DataPrefix   string
	BackupPrefix string
	UploadBackup bool
}

// Artifact filenames, relative to their stage directory
const (
	RawArtifact     = "economic_indicators_raw.csv"
	LongArtifact    = "economic_indicators_processed.csv"
	WideArtifact    = "economic_indicators_wide.csv"
	SummaryArtifact = "economic_indicators_summary.csv"
)

// RawPath returns the absolute path of the raw ingest artifact
func (p PathConfig) RawPath() string { return filepath.Join(p.RawDir, RawArtifact) }

// LongPath returns the absolute path of the long-format artifact
func (p PathConfig) LongPath() string { return filepath.Join(p.ProcessedDir, LongArtifact) }

// WidePath returns the absolute path of the wide-format artifact
func (p PathConfig) WidePath() string { return filepath.Join(p.ProcessedDir, WideArtifact) }

// SummaryPath returns the absolute path of the summary artifact
func (p PathConfig) SummaryPath() string { return filepath.Join(p.ProcessedDir, SummaryArtifact) }

// EnsureDirs creates the artifact directory layout if missing
func (p PathConfig) EnsureDirs() error {
	for _, dir := range []string{p.RawDir, p.ProcessedDir, p.BackupDir, p.ExportDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return nil
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	sourceConfig, err := loadSourceConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load source configuration")
	}
	config.Source = *sourceConfig

	config.Database = DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}

	config.Paths = loadPathConfig()
	config.S3 = loadS3Config()
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadSourceConfig() (*SourceConfig, error) {
	startYear := getEnvIntOrDefault("START_YEAR", 2000)
	endYear := getEnvIntOrDefault("END_YEAR", 2023)
	if startYear > endYear {
		return nil, errors.ConfigInvalid("START_YEAR must not exceed END_YEAR")
	}

	return &SourceConfig{
		BaseURL:      getEnvOrDefault("WB_API_URL", "https://api.worldbank.org/v2"),
		CountryCode:  getEnvOrDefault("COUNTRY_CODE", "BGD"),
		CountryName:  getEnvOrDefault("COUNTRY_NAME", "Bangladesh"),
		StartYear:    startYear,
		EndYear:      endYear,
		PerPage:      getEnvIntOrDefault("WB_PER_PAGE", 100),
		Timeout:      getEnvDurationOrDefault("WB_TIMEOUT", 30*time.Second),
		RequestDelay: getEnvDurationOrDefault("WB_REQUEST_DELAY", 500*time.Millisecond),
	}, nil
}

func loadPathConfig() PathConfig {
	dataDir := getEnvOrDefault("DATA_DIR", "./data")

	return PathConfig{
		DataDir:      dataDir,
		RawDir:       getEnvOrDefault("RAW_DIR", filepath.Join(dataDir, "api")),
		ProcessedDir: getEnvOrDefault("PROCESSED_DIR", filepath.Join(dataDir, "processed")),
		BackupDir:    getEnvOrDefault("BACKUP_DIR", filepath.Join(dataDir, "backups")),
		ExportDir:    getEnvOrDefault("EXPORT_DIR", filepath.Join(dataDir, "exports")),
	}
}

func loadS3Config() S3Config {
	return S3Config{
		Enabled:      getEnvBoolOrDefault("S3_ENABLED", false),
		Bucket:       getEnvOrDefault("S3_BUCKET", ""),
		Region:       getEnvOrDefault("AWS_REGION", "us-east-1"),
		DataPrefix:   getEnvOrDefault("S3_DATA_PREFIX", "processed-data/"),
		BackupPrefix: getEnvOrDefault("S3_BACKUP_PREFIX", "backups/"),
		UploadBackup: getEnvBoolOrDefault("S3_UPLOAD_BACKUP", true),
	}
}

func validateConfig(config *Config) error {
	if config.Source.BaseURL == "" {
		return errors.ConfigInvalid("World Bank API URL is required")
	}
	if config.Source.CountryCode == "" {
		return errors.ConfigInvalid("country code is required")
	}
	if config.Paths.DataDir == "" {
		return errors.ConfigInvalid("data directory is required")
	}
	if config.S3.Enabled && config.S3.Bucket == "" {
		return errors.ConfigInvalid("S3_BUCKET is required when S3_ENABLED is set")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
