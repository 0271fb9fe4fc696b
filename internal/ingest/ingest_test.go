package ingest

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

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
		BackupDir:    dir,
		ExportDir:    dir,
	}
}

// fakeSource serves canned observations per indicator name and fails the
// ones listed in fail
type fakeSource struct {
	fail map[string]bool
	data map[string][]indicator.Observation
}

func (f *fakeSource) Fetch(_ context.Context, meta indicator.Meta) ([]indicator.Observation, error) {
	if f.fail[meta.Name] {
		return nil, fmt.Errorf("simulated fetch failure for %s", meta.Name)
	}
	return f.data[meta.Name], nil
}

func cannedData(names ...string) map[string][]indicator.Observation {
	data := make(map[string][]indicator.Observation, len(names))
	for _, name := range names {
		data[name] = []indicator.Observation{
			{CountryName: "Bangladesh", CountryCode: "BGD", IndicatorName: name, Year: 2020, Value: 1},
			{CountryName: "Bangladesh", CountryCode: "BGD", IndicatorName: name, Year: 2021, Value: 2},
		}
	}
	return data
}

func allCatalogNames() []string {
	names := make([]string, len(indicator.Catalog))
	for i, m := range indicator.Catalog {
		names[i] = m.Name
	}
	return names
}

func TestRunner_FailureIsolation(t *testing.T) {
	// Scenario: one indicator fails; the other five still land in the raw
	// artifact and the run succeeds
	paths := testPaths(t)
	source := &fakeSource{
		fail: map[string]bool{"population": true},
		data: cannedData(allCatalogNames()...),
	}

	result, err := NewRunner(source, paths, 0, testLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if result.IndicatorCount != len(indicator.Catalog)-1 {
		t.Errorf("Expected %d successful indicators, got %d", len(indicator.Catalog)-1, result.IndicatorCount)
	}

	raw, err := table.ReadLong(result.Artifact)
	if err != nil {
		t.Fatalf("Failed to read raw artifact: %v", err)
	}
	if raw.Len() != result.RecordCount {
		t.Errorf("Artifact rows %d do not match result count %d", raw.Len(), result.RecordCount)
	}
	for _, o := range raw.Observations {
		if o.IndicatorName == "population" {
			t.Error("Failed indicator leaked records into the artifact")
		}
	}
}

func TestRunner_AllIndicatorsFail(t *testing.T) {
	paths := testPaths(t)
	fail := make(map[string]bool, len(indicator.Catalog))
	for _, m := range indicator.Catalog {
		fail[m.Name] = true
	}
	source := &fakeSource{fail: fail}

	_, err := NewRunner(source, paths, 0, testLogger()).Run(context.Background())
	if err == nil {
		t.Fatal("Expected an ingestion error when every indicator fails")
	}
	if !errors.HasCode(err, errors.CodeIngestionError) {
		t.Errorf("Expected INGESTION_ERROR, got %s", errors.GetCode(err))
	}
}

func TestRunner_EmptyResponsesCountAsFailures(t *testing.T) {
	// A source that answers with zero records for everything is as useless
	// as one that errors
	paths := testPaths(t)
	source := &fakeSource{data: map[string][]indicator.Observation{}}

	_, err := NewRunner(source, paths, 0, testLogger()).Run(context.Background())
	if err == nil {
		t.Fatal("Expected an ingestion error for an all-empty source")
	}
	if !errors.HasCode(err, errors.CodeIngestionError) {
		t.Errorf("Expected INGESTION_ERROR, got %s", errors.GetCode(err))
	}
}

func TestRunner_ArtifactSortedByKey(t *testing.T) {
	paths := testPaths(t)
	source := &fakeSource{data: cannedData("population", "gdp_per_capita")}

	result, err := NewRunner(source, paths, 0, testLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	raw, err := table.ReadLong(result.Artifact)
	if err != nil {
		t.Fatalf("Failed to read raw artifact: %v", err)
	}
	if raw.Len() == 0 {
		t.Fatal("Raw artifact is empty")
	}
	for i := 1; i < raw.Len(); i++ {
		prev, cur := raw.Observations[i-1], raw.Observations[i]
		if prev.IndicatorName > cur.IndicatorName ||
			(prev.IndicatorName == cur.IndicatorName && prev.Year > cur.Year) {
			t.Fatalf("Artifact not sorted at row %d: %s/%d after %s/%d",
				i, cur.IndicatorName, cur.Year, prev.IndicatorName, prev.Year)
		}
	}
}
