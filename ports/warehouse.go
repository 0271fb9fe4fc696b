package ports

import (
	"context"

	"macropipe/domain/indicator"
	"macropipe/domain/pipeline"
)

// Warehouse materializes processed artifacts into queryable relational
// tables. Loads are full replaces, not incremental merges.
type Warehouse interface {
	// EnsureSchema creates tables, indexes and analytical views if missing
	EnsureSchema(ctx context.Context) error
	// ReplaceObservations reloads the fact table and returns the row count
	ReplaceObservations(ctx context.Context, obs []indicator.Observation) (int, error)
	// LoadDimensions upserts the indicator catalog into dim_indicators
	LoadDimensions(ctx context.Context, metas []indicator.Meta) error
	// LoadSummaries replaces the indicator_summary table
	LoadSummaries(ctx context.Context, summaries []indicator.Summary) error
	// QualityInput measures the loaded fact table for the quality score
	QualityInput(ctx context.Context) (pipeline.QualityInput, error)
	Close() error
}
