package transform

import (
	"github.com/montanaflynn/stats"

	"macropipe/domain/indicator"
)

// Summarize computes the per-indicator aggregate over the fully enriched
// dataset. The whole table is recomputed on every run.
func Summarize(d *indicator.Dataset) []indicator.Summary {
	summaries := make([]indicator.Summary, 0, len(d.IndicatorNames()))

	for _, name := range d.IndicatorNames() {
		series := d.Series(name)

		var valid []float64
		nulls := 0
		minYear, maxYear := 0, 0
		for i, o := range series {
			if i == 0 || o.Year < minYear {
				minYear = o.Year
			}
			if i == 0 || o.Year > maxYear {
				maxYear = o.Year
			}
			if o.HasValue() {
				valid = append(valid, o.Value)
			} else {
				nulls++
			}
		}

		summaries = append(summaries, indicator.Summary{
			Indicator: name,
			Count:     len(series),
			MinYear:   minYear,
			MaxYear:   maxYear,
			MeanValue: orZero(stats.Mean(valid)),
			StdValue:  orZero(stats.StandardDeviationSample(valid)),
			MinValue:  orZero(stats.Min(valid)),
			MaxValue:  orZero(stats.Max(valid)),
			NullCount: nulls,
		})
	}

	return summaries
}

// orZero maps single-point and empty-series statistics errors to zero so
// the summary artifact stays numeric
func orZero(v float64, err error) float64 {
	if err != nil {
		return 0
	}
	return v
}
