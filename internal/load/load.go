// Package load materializes the processed artifacts into the warehouse,
// takes a backup and assembles the export bundle.
package load

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"macropipe/adapters/table"
	"macropipe/domain/indicator"
	"macropipe/domain/pipeline"
	"macropipe/internal/config"
	"macropipe/internal/errors"
	"macropipe/internal/export"
	"macropipe/ports"
)

// Result reports what a load run produced
type Result struct {
	RecordCount  int
	QualityScore float64
	BackupDir    string
	Archive      string
}

// Runner executes the load stage: warehouse reload, analytical views,
// backup and export bundle, plus the optional cloud sink.
type Runner struct {
	warehouse   ports.Warehouse
	sink        ports.BlobSink
	paths       config.PathConfig
	countryName string
	logger      *logrus.Logger
}

// NewRunner creates a load runner. sink may be nil when the cloud upload
// path is disabled.
func NewRunner(warehouse ports.Warehouse, sink ports.BlobSink, paths config.PathConfig, countryName string, logger *logrus.Logger) *Runner {
	return &Runner{
		warehouse:   warehouse,
		sink:        sink,
		paths:       paths,
		countryName: countryName,
		logger:      logger,
	}
}

// Run loads the long-format and summary artifacts into the warehouse and
// produces the backup and export artifacts
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	dataset, err := table.ReadLong(r.paths.LongPath())
	if err != nil {
		return nil, err
	}
	summaries, err := table.ReadSummary(r.paths.SummaryPath())
	if err != nil {
		return nil, err
	}
	attachTrendCoefficients(dataset, summaries)

	if err := r.warehouse.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	count, err := r.warehouse.ReplaceObservations(ctx, dataset.Observations)
	if err != nil {
		return nil, err
	}
	if err := r.warehouse.LoadDimensions(ctx, indicator.Catalog); err != nil {
		return nil, err
	}
	if err := r.warehouse.LoadSummaries(ctx, summaries); err != nil {
		return nil, err
	}

	quality, err := r.warehouse.QualityInput(ctx)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().Format("20060102_150405")

	backupDir, err := export.CreateBackup(r.paths, timestamp, r.logger)
	if err != nil {
		return nil, err
	}

	minYear, maxYear := dataset.YearRange()
	archive, err := export.CreateBundle(r.paths, dataset, export.BundleInfo{
		CountryName:    r.countryName,
		RecordCount:    dataset.Len(),
		IndicatorCount: len(dataset.IndicatorNames()),
		MinYear:        minYear,
		MaxYear:        maxYear,
	}, timestamp, r.logger)
	if err != nil {
		return nil, err
	}

	if r.sink != nil {
		artifacts := []string{r.paths.LongPath(), r.paths.WidePath(), r.paths.SummaryPath()}
		if err := r.sink.UploadArtifacts(ctx, artifacts, timestamp); err != nil {
			return nil, errors.Wrap(err, "cloud upload failed")
		}
	}

	result := &Result{
		RecordCount:  count,
		QualityScore: pipeline.QualityScore(quality),
		BackupDir:    backupDir,
		Archive:      archive,
	}

	r.logger.WithFields(logrus.Fields{
		"records":       result.RecordCount,
		"quality_score": result.QualityScore,
		"archive":       result.Archive,
	}).Info("Load complete")

	return result, nil
}

// attachTrendCoefficients joins each summary row with its TREND_*
// observation, when the transform produced one
func attachTrendCoefficients(d *indicator.Dataset, summaries []indicator.Summary) {
	for i := range summaries {
		trendName := summaries[i].Indicator + indicator.TrendNameSuffix
		series := d.Series(trendName)
		if len(series) == 0 {
			continue
		}
		coefficient := series[len(series)-1].Value
		summaries[i].TrendCoefficient = &coefficient
	}
}

