package pipeline

import (
	"time"
)

// StageName identifies a pipeline stage
type StageName string

const (
	StageIngest    StageName = "ingest"
	StageTransform StageName = "transform"
	StageLoad      StageName = "load"
)

// StageResult is the typed outcome of one stage execution.
// CONTRACT: every stage declares an output artifact; the orchestrator
// verifies it exists and is non-empty before the next stage starts.
type StageResult struct {
	Stage       StageName `json:"stage"`
	RecordCount int       `json:"record_count"`
	Artifact    string    `json:"artifact"`
	Attempts    int       `json:"attempts"`
	DurationMs  int64     `json:"duration_ms"`
}

// RunReport aggregates the outcome of a full pipeline run
type RunReport struct {
	RunID          string        `json:"run_id"`
	StartedAt      time.Time     `json:"started_at"`
	CompletedAt    time.Time     `json:"completed_at"`
	Stages         []StageResult `json:"stages"`
	IngestCount    int           `json:"ingest_count"`
	TransformCount int           `json:"transform_count"`
	LoadCount      int           `json:"load_count"`
	QualityScore   float64       `json:"quality_score"`
}

// AddResult records a stage result and updates the aggregate counts
func (r *RunReport) AddResult(result StageResult) {
	r.Stages = append(r.Stages, result)
	switch result.Stage {
	case StageIngest:
		r.IngestCount = result.RecordCount
	case StageTransform:
		r.TransformCount = result.RecordCount
	case StageLoad:
		r.LoadCount = result.RecordCount
	}
}

// QualityInput carries the warehouse measurements the quality score is
// computed from.
type QualityInput struct {
	TotalRecords   int
	NullValues     int
	IndicatorCount int
}

// QualityScore grades a completed run: 100 minus fixed penalties for null
// values, missing indicators and thin datasets.
func QualityScore(in QualityInput) float64 {
	score := 100.0
	if in.NullValues > 0 {
		score -= 20
	}
	if in.IndicatorCount < 6 {
		score -= 20
	}
	if in.TotalRecords < 100 {
		score -= 10
	}
	return score
}
