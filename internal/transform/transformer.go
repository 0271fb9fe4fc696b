// Package transform implements the core pipeline stage: it converts the raw
// long-format artifact into an analysis-ready dataset with derived features
// and writes the long, wide and summary artifacts.
package transform

import (
	"strings"

	"macropipe/adapters/table"
	"macropipe/domain/indicator"
	"macropipe/internal/config"
	"macropipe/internal/errors"

	"github.com/sirupsen/logrus"
)

// Year sanity bounds used by the validate phase
const (
	minSaneYear = 1990
	maxSaneYear = 2030
)

// Phase names surfaced on failure
const (
	PhaseLoad       = "load"
	PhaseValidate   = "validate"
	PhaseClean      = "clean"
	PhaseFeatures   = "features"
	PhaseTimeSeries = "timeseries"
	PhasePersist    = "persist"
)

// Result reports what a transform run produced
type Result struct {
	RecordCount    int
	IndicatorCount int
	MinYear        int
	MaxYear        int
	Summaries      []indicator.Summary
}

// Transformer runs the six sequential transform phases. Each phase must
// succeed before the next begins; a failure aborts the run and surfaces the
// phase name.
type Transformer struct {
	paths       config.PathConfig
	countryCode string
	rules       []indicator.DerivationRule
	logger      *logrus.Logger
}

// New creates a transformer with the default derivation rules
func New(paths config.PathConfig, countryCode string, logger *logrus.Logger) *Transformer {
	return &Transformer{
		paths:       paths,
		countryCode: countryCode,
		rules:       indicator.DefaultRules(),
		logger:      logger,
	}
}

// Run executes load, validate, clean, features, timeseries and persist in
// order against the raw artifact.
func (t *Transformer) Run() (*Result, error) {
	dataset, err := t.load()
	if err != nil {
		return nil, err
	}

	if err := t.validate(dataset); err != nil {
		return nil, phaseError(PhaseValidate, err)
	}

	cleaned := t.clean(dataset)
	if cleaned.Len() == 0 {
		return nil, phaseError(PhaseClean, errors.ValidationError("no records remain after cleaning"))
	}

	t.deriveFeatures(cleaned)
	t.analyzeTimeSeries(cleaned)

	summaries := Summarize(cleaned)
	if err := t.persist(cleaned, summaries); err != nil {
		return nil, phaseError(PhasePersist, err)
	}

	minYear, maxYear := cleaned.YearRange()
	result := &Result{
		RecordCount:    cleaned.Len(),
		IndicatorCount: len(cleaned.IndicatorNames()),
		MinYear:        minYear,
		MaxYear:        maxYear,
		Summaries:      summaries,
	}

	t.logger.WithFields(logrus.Fields{
		"records":    result.RecordCount,
		"indicators": result.IndicatorCount,
		"years":      result.MaxYear - result.MinYear + 1,
	}).Info("Transformation complete")

	return result, nil
}

// load reads the raw artifact. Schema failures belong to the validate
// phase; everything else to load.
func (t *Transformer) load() (*indicator.Dataset, error) {
	dataset, err := table.ReadLong(t.paths.RawPath())
	if err != nil {
		if errors.HasCode(err, errors.CodeSchemaError) {
			return nil, phaseError(PhaseValidate, err)
		}
		return nil, phaseError(PhaseLoad, err)
	}

	t.logger.WithFields(logrus.Fields{
		"records": dataset.Len(),
		"path":    t.paths.RawPath(),
	}).Info("Loaded raw data")
	return dataset, nil
}

// validate reports data quality. Only structural problems are fatal; the
// rest are diagnostics, not a gate.
func (t *Transformer) validate(d *indicator.Dataset) error {
	if d.Len() == 0 {
		return errors.ValidationError("raw artifact contains no records")
	}

	total := d.Len()
	nulls := d.NullCount()
	duplicates := d.DuplicateKeyCount()
	minYear, maxYear := d.YearRange()

	t.logger.WithFields(logrus.Fields{
		"records":    total,
		"null_ratio": float64(nulls) / float64(total),
		"duplicates": duplicates,
		"indicators": len(d.IndicatorNames()),
	}).Info("Data quality report")

	if duplicates > 0 {
		t.logger.WithField("duplicates", duplicates).Warn("Duplicate (indicator, year) records found")
	}
	if minYear < minSaneYear || maxYear > maxSaneYear {
		t.logger.WithFields(logrus.Fields{
			"min_year": minYear,
			"max_year": maxYear,
		}).Warn("Unusual year range detected")
	}

	return nil
}

// clean drops nulls, deduplicates keys keeping the first occurrence, trims
// text fields and forces the configured country code. Post-condition: no
// nulls, no duplicate keys, sorted by (indicator, year).
func (t *Transformer) clean(d *indicator.Dataset) *indicator.Dataset {
	seen := make(map[indicator.Key]bool, d.Len())
	kept := make([]indicator.Observation, 0, d.Len())
	dropped, duplicates := 0, 0

	for _, o := range d.Observations {
		if !o.HasValue() {
			dropped++
			continue
		}

		o.CountryName = strings.TrimSpace(o.CountryName)
		o.IndicatorName = strings.TrimSpace(o.IndicatorName)
		o.CountryCode = t.countryCode

		if seen[o.Key()] {
			duplicates++
			continue
		}
		seen[o.Key()] = true
		kept = append(kept, o)
	}

	cleaned := indicator.NewDataset(kept)
	cleaned.SortByKey()

	t.logger.WithFields(logrus.Fields{
		"removed_nulls":      dropped,
		"removed_duplicates": duplicates,
		"remaining":          cleaned.Len(),
	}).Info("Cleaned data")

	return cleaned
}

// deriveFeatures evaluates the derivation rules and appends the calculated
// observations to the dataset
func (t *Transformer) deriveFeatures(d *indicator.Dataset) {
	before := d.Len()
	for _, rule := range t.rules {
		derived := rule.Apply(d)
		if len(derived) == 0 {
			continue
		}
		if rule.Output() == indicator.DiversificationName {
			t.warnOnSectorOverflow(d, derived)
		}
		d.Append(derived...)
	}

	t.logger.WithField("derived", d.Len()-before).Info("Created calculated features")
}

// warnOnSectorOverflow flags years where sector shares exceed 100%, which
// pushes the diversification index out of [0, 1). Values are kept as-is.
func (t *Transformer) warnOnSectorOverflow(d *indicator.Dataset, derived []indicator.Observation) {
	for _, o := range derived {
		if o.Value < 0 {
			t.logger.WithFields(logrus.Fields{
				"year":  o.Year,
				"index": o.Value,
			}).Warn("Sector shares exceed 100%; diversification index out of range")
		}
	}
}

// persist writes the three processed artifacts
func (t *Transformer) persist(d *indicator.Dataset, summaries []indicator.Summary) error {
	d.SortByKey()

	if err := table.WriteLong(t.paths.LongPath(), d); err != nil {
		return err
	}
	if err := table.WriteWide(t.paths.WidePath(), d); err != nil {
		return err
	}
	if err := table.WriteSummary(t.paths.SummaryPath(), summaries); err != nil {
		return err
	}

	t.logger.WithFields(logrus.Fields{
		"long":    t.paths.LongPath(),
		"wide":    t.paths.WidePath(),
		"summary": t.paths.SummaryPath(),
	}).Info("Saved processed artifacts")
	return nil
}

// phaseError tags a failure with the phase it occurred in
func phaseError(phase string, err error) error {
	return errors.Wrapf(err, "transform phase %q failed", phase)
}
