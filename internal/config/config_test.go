package config

import (
	"path/filepath"
	"testing"

	"macropipe/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source.CountryCode != "BGD" {
		t.Errorf("Expected default country BGD, got %s", cfg.Source.CountryCode)
	}
	if cfg.Source.StartYear != 2000 || cfg.Source.EndYear != 2023 {
		t.Errorf("Unexpected default year range: %d-%d", cfg.Source.StartYear, cfg.Source.EndYear)
	}
	if cfg.S3.Enabled {
		t.Error("Cloud sink should be disabled by default")
	}
	if filepath.Base(cfg.Paths.RawDir) != "api" {
		t.Errorf("Raw artifacts should land under api/, got %s", cfg.Paths.RawDir)
	}
}

func TestLoad_InvalidYearRange(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("START_YEAR", "2025")
	t.Setenv("END_YEAR", "2020")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected an error for an inverted year range")
	}
	if !errors.HasCode(err, errors.CodeConfigInvalid) {
		t.Errorf("Expected CONFIG_INVALID, got %s", errors.GetCode(err))
	}
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	t.Setenv("DATA_DIR", t.TempDir())
	t.Setenv("S3_ENABLED", "true")
	t.Setenv("S3_BUCKET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected an error when the sink is enabled without a bucket")
	}
	if !errors.HasCode(err, errors.CodeConfigInvalid) {
		t.Errorf("Expected CONFIG_INVALID, got %s", errors.GetCode(err))
	}
}

func TestArtifactPaths(t *testing.T) {
	p := PathConfig{
		RawDir:       "/data/api",
		ProcessedDir: "/data/processed",
	}

	if p.RawPath() != filepath.Join("/data/api", RawArtifact) {
		t.Errorf("Unexpected raw path: %s", p.RawPath())
	}
	if p.LongPath() != filepath.Join("/data/processed", LongArtifact) {
		t.Errorf("Unexpected long path: %s", p.LongPath())
	}
}
