// Package table reads and writes the pipeline's delimited artifacts: the
// raw and long-format observation tables, the wide-format pivot and the
// per-indicator summary.
package table

import (
	"encoding/csv"
	"os"
	"sort"
	"strconv"

	"macropipe/domain/indicator"
	"macropipe/internal/errors"
)

// LongColumns is the column order of raw and long-format artifacts
var LongColumns = []string{"country_name", "country_code", "indicator_code", "indicator_name", "year", "value"}

// SummaryColumns is the column order of the summary artifact
var SummaryColumns = []string{"indicator", "count", "min_year", "max_year", "mean_value", "std_value", "min_value", "max_value", "null_count"}

// WriteLong writes a dataset as a long-format CSV, one row per observation
func WriteLong(path string, d *indicator.Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(LongColumns); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for _, o := range d.Observations {
		row := []string{
			o.CountryName,
			o.CountryCode,
			o.IndicatorCode,
			o.IndicatorName,
			strconv.Itoa(o.Year),
			formatValue(o.Value),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write row for %s/%d", o.IndicatorName, o.Year)
		}
	}

	w.Flush()
	return errors.Wrap(w.Error(), "failed to flush CSV")
}

// WriteWide pivots a dataset into one row per year with one column per
// indicator. Missing indicator-year combinations stay empty, not zero.
func WriteWide(path string, d *indicator.Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	names := d.IndicatorNames()
	sort.Strings(names)
	years := d.Years()

	cells := make(map[indicator.Key]float64, d.Len())
	for _, o := range d.Observations {
		cells[o.Key()] = o.Value
	}

	w := csv.NewWriter(file)
	header := append([]string{"year"}, names...)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for _, year := range years {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(year))
		for _, name := range names {
			if v, ok := cells[indicator.Key{IndicatorName: name, Year: year}]; ok {
				row = append(row, formatValue(v))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write row for year %d", year)
		}
	}

	w.Flush()
	return errors.Wrap(w.Error(), "failed to flush CSV")
}

// WriteSummary writes the per-indicator summary table
func WriteSummary(path string, summaries []indicator.Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(SummaryColumns); err != nil {
		return errors.Wrap(err, "failed to write header")
	}

	for _, s := range summaries {
		row := []string{
			s.Indicator,
			strconv.Itoa(s.Count),
			strconv.Itoa(s.MinYear),
			strconv.Itoa(s.MaxYear),
			formatValue(s.MeanValue),
			formatValue(s.StdValue),
			formatValue(s.MinValue),
			formatValue(s.MaxValue),
			strconv.Itoa(s.NullCount),
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "failed to write summary for %s", s.Indicator)
		}
	}

	w.Flush()
	return errors.Wrap(w.Error(), "failed to flush CSV")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
