package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"macropipe/domain/pipeline"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeArtifact(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("header\nrow\n"), 0o644); err != nil {
		t.Fatalf("Failed to write artifact: %v", err)
	}
	return path
}

func TestRunStage_SucceedsFirstAttempt(t *testing.T) {
	s := &PipelineService{logger: testLogger()}
	report := &pipeline.RunReport{}
	artifact := writeArtifact(t, "out.csv")

	err := s.runStage(context.Background(), report, pipeline.StageIngest, func(context.Context) (int, string, error) {
		return 42, artifact, nil
	})
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	if len(report.Stages) != 1 {
		t.Fatalf("Expected 1 stage result, got %d", len(report.Stages))
	}
	got := report.Stages[0]
	if got.Attempts != 1 || got.RecordCount != 42 || got.Artifact != artifact {
		t.Errorf("Unexpected stage result: %+v", got)
	}
}

func TestRunStage_RetriesOnce(t *testing.T) {
	// Scenario: a transient failure on the first attempt; the retry
	// succeeds and the attempt count reflects it
	s := &PipelineService{logger: testLogger()}
	report := &pipeline.RunReport{}
	artifact := writeArtifact(t, "out.csv")

	calls := 0
	err := s.runStage(context.Background(), report, pipeline.StageTransform, func(context.Context) (int, string, error) {
		calls++
		if calls == 1 {
			return 0, "", fmt.Errorf("transient failure")
		}
		return 7, artifact, nil
	})
	if err != nil {
		t.Fatalf("Stage failed despite successful retry: %v", err)
	}

	if calls != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls)
	}
	if report.Stages[0].Attempts != 2 {
		t.Errorf("Expected attempts=2 in result, got %d", report.Stages[0].Attempts)
	}
}

func TestRunStage_AbortsAfterSecondFailure(t *testing.T) {
	s := &PipelineService{logger: testLogger()}
	report := &pipeline.RunReport{}

	calls := 0
	err := s.runStage(context.Background(), report, pipeline.StageLoad, func(context.Context) (int, string, error) {
		calls++
		return 0, "", fmt.Errorf("persistent failure")
	})
	if err == nil {
		t.Fatal("Expected the stage to fail")
	}

	if calls != 2 {
		t.Errorf("Expected exactly one retry, got %d calls", calls)
	}
	if !strings.Contains(err.Error(), string(pipeline.StageLoad)) {
		t.Errorf("Failure should name the stage, got: %v", err)
	}
	if len(report.Stages) != 0 {
		t.Errorf("Failed stage must not record a result, got %d", len(report.Stages))
	}
}

func TestRunStage_RejectsMissingArtifact(t *testing.T) {
	// Scenario: the stage reports success but never produced its declared
	// output; the post-condition catches the lie
	s := &PipelineService{logger: testLogger()}
	report := &pipeline.RunReport{}
	missing := filepath.Join(t.TempDir(), "never_written.csv")

	err := s.runStage(context.Background(), report, pipeline.StageIngest, func(context.Context) (int, string, error) {
		return 10, missing, nil
	})
	if err == nil {
		t.Fatal("Expected failure for a missing artifact")
	}
}

func TestCheckArtifact(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if err := checkArtifact(empty); err == nil {
		t.Error("Empty artifact must fail the post-condition")
	}

	if err := checkArtifact(filepath.Join(dir, "absent.csv")); err == nil {
		t.Error("Missing artifact must fail the post-condition")
	}

	if err := checkArtifact(""); err == nil {
		t.Error("Undeclared artifact must fail the post-condition")
	}

	full := filepath.Join(dir, "full.csv")
	if err := os.WriteFile(full, []byte("data"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	if err := checkArtifact(full); err != nil {
		t.Errorf("Non-empty artifact must pass, got: %v", err)
	}
}
