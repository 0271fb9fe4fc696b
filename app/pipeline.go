// Package app wires the pipeline stages together: ingest, transform and
// load run in sequence as in-process calls with typed results.
package app

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"macropipe/domain/pipeline"
	"macropipe/internal/config"
	"macropipe/internal/errors"
	"macropipe/internal/ingest"
	"macropipe/internal/load"
	"macropipe/internal/transform"
)

// maxStageAttempts allows one retry per stage
const maxStageAttempts = 2

// stageFunc executes one stage and reports its record count and declared
// output artifact
type stageFunc func(ctx context.Context) (recordCount int, artifact string, err error)

// PipelineService runs the full ETL sequence. Exit status alone is not
// trusted: after each stage the declared output artifact must exist and be
// non-empty before the next stage starts.
type PipelineService struct {
	ingest    *ingest.Runner
	transform *transform.Transformer
	load      *load.Runner
	paths     config.PathConfig
	logger    *logrus.Logger
}

// NewPipelineService creates the orchestrator
func NewPipelineService(ingestRunner *ingest.Runner, transformer *transform.Transformer, loadRunner *load.Runner, paths config.PathConfig, logger *logrus.Logger) *PipelineService {
	return &PipelineService{
		ingest:    ingestRunner,
		transform: transformer,
		load:      loadRunner,
		paths:     paths,
		logger:    logger,
	}
}

// Run executes the three stages in order. A stage is retried once; on a
// second failure the run aborts and the failure surfaces with the stage
// name. Previously produced artifacts are left untouched.
func (s *PipelineService) Run(ctx context.Context) (*pipeline.RunReport, error) {
	report := &pipeline.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	s.logger.WithField("run_id", report.RunID).Info("Starting pipeline run")

	err := s.runStage(ctx, report, pipeline.StageIngest, func(ctx context.Context) (int, string, error) {
		res, err := s.ingest.Run(ctx)
		if err != nil {
			return 0, "", err
		}
		return res.RecordCount, res.Artifact, nil
	})
	if err != nil {
		return report, err
	}

	err = s.runStage(ctx, report, pipeline.StageTransform, func(ctx context.Context) (int, string, error) {
		res, err := s.transform.Run()
		if err != nil {
			return 0, "", err
		}
		return res.RecordCount, s.paths.LongPath(), nil
	})
	if err != nil {
		return report, err
	}

	err = s.runStage(ctx, report, pipeline.StageLoad, func(ctx context.Context) (int, string, error) {
		res, err := s.load.Run(ctx)
		if err != nil {
			return 0, "", err
		}
		report.QualityScore = res.QualityScore
		return res.RecordCount, res.Archive, nil
	})
	if err != nil {
		return report, err
	}

	report.CompletedAt = time.Now()

	s.logger.WithFields(logrus.Fields{
		"run_id":        report.RunID,
		"ingested":      report.IngestCount,
		"transformed":   report.TransformCount,
		"loaded":        report.LoadCount,
		"quality_score": report.QualityScore,
	}).Info("Pipeline completed")

	return report, nil
}

// runStage executes one stage with a single retry and verifies its declared
// artifact as an explicit post-condition
func (s *PipelineService) runStage(ctx context.Context, report *pipeline.RunReport, name pipeline.StageName, fn stageFunc) error {
	var lastErr error

	for attempt := 1; attempt <= maxStageAttempts; attempt++ {
		start := time.Now()
		count, artifact, err := fn(ctx)
		if err == nil {
			err = checkArtifact(artifact)
		}

		if err == nil {
			report.AddResult(pipeline.StageResult{
				Stage:       name,
				RecordCount: count,
				Artifact:    artifact,
				Attempts:    attempt,
				DurationMs:  time.Since(start).Milliseconds(),
			})
			return nil
		}

		lastErr = err
		if attempt < maxStageAttempts {
			s.logger.WithFields(logrus.Fields{
				"stage":   name,
				"attempt": attempt,
			}).WithError(err).Warn("Stage failed; retrying")
		}
	}

	return errors.Wrapf(lastErr, "stage %q failed", name)
}

// checkArtifact asserts that a stage's declared output exists and is
// non-empty
func checkArtifact(path string) error {
	if path == "" {
		return errors.ValidationError("stage declared no output artifact")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return errors.MissingInput(path)
	}
	if fi.Size() == 0 {
		return errors.ValidationError("output artifact is empty: " + path)
	}
	return nil
}
