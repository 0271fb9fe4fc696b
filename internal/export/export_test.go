package export

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"macropipe/adapters/table"
	"macropipe/domain/indicator"
	"macropipe/internal/config"
	"macropipe/internal/errors"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testPaths(t *testing.T) config.PathConfig {
	t.Helper()
	dir := t.TempDir()
	return config.PathConfig{
		DataDir:      dir,
		RawDir:       dir,
		ProcessedDir: dir,
		BackupDir:    filepath.Join(dir, "backups"),
		ExportDir:    filepath.Join(dir, "exports"),
	}
}

func testDataset() *indicator.Dataset {
	return indicator.NewDataset([]indicator.Observation{
		{CountryName: "Bangladesh", CountryCode: "BGD", IndicatorName: "gdp_per_capita", Year: 2020, Value: 1721.11},
		{CountryName: "Bangladesh", CountryCode: "BGD", IndicatorName: "gdp_per_capita", Year: 2021, Value: 1802.42},
		{CountryName: "Bangladesh", CountryCode: "BGD", IndicatorName: "population", Year: 2020, Value: 164689383},
	})
}

func writeArtifacts(t *testing.T, paths config.PathConfig, d *indicator.Dataset) {
	t.Helper()
	require.NoError(t, paths.EnsureDirs())
	require.NoError(t, table.WriteLong(paths.LongPath(), d))
	require.NoError(t, table.WriteWide(paths.WidePath(), d))
}

func TestCreateBackup(t *testing.T) {
	// Scenario: long and wide artifacts exist, the summary does not; the
	// backup copies what is there and records it in the metadata
	paths := testPaths(t)
	writeArtifacts(t, paths, testDataset())

	backupDir, err := CreateBackup(paths, "20260101_120000", testLogger())
	require.NoError(t, err)

	for _, name := range []string{config.LongArtifact, config.WideArtifact} {
		_, err := os.Stat(filepath.Join(backupDir, name))
		require.NoError(t, err, "missing backup copy of %s", name)
	}

	raw, err := os.ReadFile(filepath.Join(backupDir, "backup_metadata.json"))
	require.NoError(t, err)

	var meta backupMetadata
	require.NoError(t, json.Unmarshal(raw, &meta))
	require.Equal(t, "20260101_120000", meta.BackupTimestamp)
	require.Equal(t, 2, meta.TotalFiles)
	require.NotContains(t, meta.FilesBackedUp, config.SummaryArtifact)
}

func TestCreateBundle(t *testing.T) {
	paths := testPaths(t)
	d := testDataset()
	writeArtifacts(t, paths, d)

	info := BundleInfo{
		CountryName:    "Bangladesh",
		RecordCount:    d.Len(),
		IndicatorCount: 2,
		MinYear:        2020,
		MaxYear:        2021,
	}

	archive, err := CreateBundle(paths, d, info, "20260101_120000", testLogger())
	require.NoError(t, err)

	zr, err := zip.OpenReader(archive)
	require.NoError(t, err)
	defer zr.Close()

	entries := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		entries[f.Name] = true
	}
	for _, want := range []string{
		"economic_data.csv",
		"economic_data_wide.csv",
		"README.md",
		"report.html",
		"indicators.xlsx",
	} {
		require.True(t, entries[want], "archive missing %s", want)
	}
}

func TestCreateBundle_MissingArtifact(t *testing.T) {
	paths := testPaths(t)
	require.NoError(t, paths.EnsureDirs())

	_, err := CreateBundle(paths, testDataset(), BundleInfo{}, "20260101_120000", testLogger())
	require.Error(t, err)
	require.True(t, errors.HasCode(err, errors.CodeMissingInput), "expected MISSING_INPUT, got %s", errors.GetCode(err))
}
