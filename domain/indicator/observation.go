package indicator

import (
	"math"
	"sort"
)

// Observation is the atomic record of the pipeline: one indicator value for
// one year. A missing value is represented as NaN until the clean phase
// removes it.
type Observation struct {
	CountryName   string  `json:"country_name"`
	CountryCode   string  `json:"country_code"`
	IndicatorCode string  `json:"indicator_code"`
	IndicatorName string  `json:"indicator_name"`
	Year          int     `json:"year"`
	Value         float64 `json:"value"`
}

// HasValue reports whether the observation carries a usable value
func (o Observation) HasValue() bool {
	return !math.IsNaN(o.Value) && !math.IsInf(o.Value, 0)
}

// Key identifies an observation within a dataset
type Key struct {
	IndicatorName string
	Year          int
}

// Key returns the uniqueness key of the observation
func (o Observation) Key() Key {
	return Key{IndicatorName: o.IndicatorName, Year: o.Year}
}

// Dataset is an in-memory long-format table of observations
type Dataset struct {
	Observations []Observation
}

// NewDataset wraps observations into a dataset
func NewDataset(obs []Observation) *Dataset {
	return &Dataset{Observations: obs}
}

// Len returns the number of observations
func (d *Dataset) Len() int { return len(d.Observations) }

// Append adds observations to the dataset
func (d *Dataset) Append(obs ...Observation) {
	d.Observations = append(d.Observations, obs...)
}

// SortByKey orders observations by (indicator_name, year)
func (d *Dataset) SortByKey() {
	sort.SliceStable(d.Observations, func(i, j int) bool {
		a, b := d.Observations[i], d.Observations[j]
		if a.IndicatorName != b.IndicatorName {
			return a.IndicatorName < b.IndicatorName
		}
		return a.Year < b.Year
	})
}

// IndicatorNames returns the distinct indicator names in first-seen order
func (d *Dataset) IndicatorNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, o := range d.Observations {
		if !seen[o.IndicatorName] {
			seen[o.IndicatorName] = true
			names = append(names, o.IndicatorName)
		}
	}
	return names
}

// Series returns the observations of one indicator sorted by year
func (d *Dataset) Series(name string) []Observation {
	var series []Observation
	for _, o := range d.Observations {
		if o.IndicatorName == name {
			series = append(series, o)
		}
	}
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Year < series[j].Year
	})
	return series
}

// ValueAt returns the value of an indicator at a year, if present
func (d *Dataset) ValueAt(name string, year int) (float64, bool) {
	for _, o := range d.Observations {
		if o.IndicatorName == name && o.Year == year {
			return o.Value, true
		}
	}
	return 0, false
}

// Years returns the distinct years in ascending order
func (d *Dataset) Years() []int {
	seen := make(map[int]bool)
	var years []int
	for _, o := range d.Observations {
		if !seen[o.Year] {
			seen[o.Year] = true
			years = append(years, o.Year)
		}
	}
	sort.Ints(years)
	return years
}

// DuplicateKeyCount counts observations beyond the first per key
func (d *Dataset) DuplicateKeyCount() int {
	seen := make(map[Key]bool)
	duplicates := 0
	for _, o := range d.Observations {
		if seen[o.Key()] {
			duplicates++
		}
		seen[o.Key()] = true
	}
	return duplicates
}

// NullCount counts observations without a usable value
func (d *Dataset) NullCount() int {
	nulls := 0
	for _, o := range d.Observations {
		if !o.HasValue() {
			nulls++
		}
	}
	return nulls
}

// YearRange returns the minimum and maximum observed year
func (d *Dataset) YearRange() (minYear, maxYear int) {
	for i, o := range d.Observations {
		if i == 0 {
			minYear, maxYear = o.Year, o.Year
			continue
		}
		if o.Year < minYear {
			minYear = o.Year
		}
		if o.Year > maxYear {
			maxYear = o.Year
		}
	}
	return minYear, maxYear
}
