// Package ingest collects raw indicator observations from a remote source
// and writes them as the raw artifact.
package ingest

import (
	"context"
	"fmt"
	"time"

	"macropipe/adapters/table"
	"macropipe/domain/indicator"
	"macropipe/internal/config"
	"macropipe/internal/errors"
	"macropipe/ports"

	"github.com/sirupsen/logrus"
)

// Result reports what an ingest run collected
type Result struct {
	RecordCount    int
	IndicatorCount int
	Artifact       string
}

// Runner fetches every catalog indicator sequentially with a fixed delay
// between requests. A failure for one indicator never aborts collection of
// the others.
type Runner struct {
	source ports.ObservationSource
	paths  config.PathConfig
	delay  time.Duration
	logger *logrus.Logger
}

// NewRunner creates an ingest runner
func NewRunner(source ports.ObservationSource, paths config.PathConfig, delay time.Duration, logger *logrus.Logger) *Runner {
	return &Runner{
		source: source,
		paths:  paths,
		delay:  delay,
		logger: logger,
	}
}

// Run fetches all catalog indicators and writes the raw artifact. It fails
// with an ingestion error only when zero indicators return any data.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	dataset := indicator.NewDataset(nil)
	succeeded := 0

	for i, meta := range indicator.Catalog {
		log := r.logger.WithFields(logrus.Fields{
			"indicator": meta.Name,
			"code":      meta.Code,
		})
		log.Info("Fetching indicator")

		observations, err := r.source.Fetch(ctx, meta)
		if err != nil {
			log.WithError(err).Warn("Indicator fetch failed; continuing")
		} else if len(observations) == 0 {
			log.Warn("No data returned for indicator")
		} else {
			dataset.Append(observations...)
			succeeded++
			log.WithField("records", len(observations)).Info("Indicator fetched")
		}

		// Fixed inter-request delay, skipped after the final indicator
		if i < len(indicator.Catalog)-1 {
			select {
			case <-time.After(r.delay):
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), "ingestion cancelled")
			}
		}
	}

	if succeeded == 0 || dataset.Len() == 0 {
		return nil, errors.IngestionError("no indicator returned any data")
	}

	dataset.SortByKey()
	if err := table.WriteLong(r.paths.RawPath(), dataset); err != nil {
		return nil, errors.Wrap(err, "failed to write raw artifact")
	}

	minYear, maxYear := dataset.YearRange()
	r.logger.WithFields(logrus.Fields{
		"records":    dataset.Len(),
		"indicators": succeeded,
		"coverage":   formatRange(minYear, maxYear),
		"path":       r.paths.RawPath(),
	}).Info("Ingestion complete")

	return &Result{
		RecordCount:    dataset.Len(),
		IndicatorCount: succeeded,
		Artifact:       r.paths.RawPath(),
	}, nil
}

func formatRange(minYear, maxYear int) string {
	return fmt.Sprintf("%d-%d", minYear, maxYear)
}
