package indicator

import (
	"strings"
)

// Naming scheme for calculated indicators
const (
	GrowthNameSuffix    = "_yoy_growth_pct"
	TrendNameSuffix     = "_trend_coefficient"
	DiversificationName = "economic_diversification_index"
	DiversificationCode = "CALC_ECON_DIV_IDX"
)

// GrowthCode returns the indicator code of a YoY growth series
func GrowthCode(base string) string {
	return "CALC_" + strings.ToUpper(base) + "_YOY"
}

// TrendCode returns the indicator code of a trend coefficient record
func TrendCode(base string) string {
	return "TREND_" + strings.ToUpper(base)
}

// DerivationRule states its required input indicators and produces derived
// observations from a cleaned dataset. Rules are evaluated uniformly; a rule
// whose inputs are missing simply yields nothing.
type DerivationRule interface {
	// Output is the indicator name the rule emits
	Output() string
	// Requires lists the input indicator names
	Requires() []string
	// Apply derives observations; input dataset is never mutated
	Apply(d *Dataset) []Observation
}

// DefaultRules is the fixed derivation plan: YoY growth for the growth set
// plus the economic diversification index.
func DefaultRules() []DerivationRule {
	return []DerivationRule{
		GrowthRule{Base: "gdp_per_capita"},
		GrowthRule{Base: "population"},
		GrowthRule{Base: "gdp_growth"},
		DiversificationRule{},
	}
}

// GrowthRule derives year-over-year percent change across one indicator's
// sorted series.
type GrowthRule struct {
	Base string
}

func (r GrowthRule) Output() string     { return r.Base + GrowthNameSuffix }
func (r GrowthRule) Requires() []string { return []string{r.Base} }

func (r GrowthRule) Apply(d *Dataset) []Observation {
	series := d.Series(r.Base)
	if len(series) < 2 {
		return nil
	}

	var derived []Observation
	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		if prev.Value == 0 {
			// Percent change undefined against a zero base
			continue
		}
		pct := (cur.Value - prev.Value) / prev.Value * 100

		derived = append(derived, Observation{
			CountryName:   cur.CountryName,
			CountryCode:   cur.CountryCode,
			IndicatorCode: GrowthCode(r.Base),
			IndicatorName: r.Output(),
			Year:          cur.Year,
			Value:         pct,
		})
	}
	return derived
}

// DiversificationRule derives a Herfindahl-style concentration index over
// sector GDP shares. Services share is estimated as the remainder of
// agriculture and industry, assuming the three sum to roughly 100%.
type DiversificationRule struct{}

func (DiversificationRule) Output() string { return DiversificationName }

func (DiversificationRule) Requires() []string {
	return []string{"agriculture_pct_gdp", "industry_pct_gdp"}
}

func (r DiversificationRule) Apply(d *Dataset) []Observation {
	countryName, countryCode := datasetCountry(d)

	var derived []Observation
	for _, year := range d.Years() {
		agri, okA := d.ValueAt("agriculture_pct_gdp", year)
		industry, okI := d.ValueAt("industry_pct_gdp", year)
		if !okA || !okI {
			continue
		}

		services := 100 - agri - industry
		index := 1 - ((agri/100)*(agri/100) +
			(industry/100)*(industry/100) +
			(services/100)*(services/100))

		derived = append(derived, Observation{
			CountryName:   countryName,
			CountryCode:   countryCode,
			IndicatorCode: DiversificationCode,
			IndicatorName: r.Output(),
			Year:          year,
			Value:         index,
		})
	}
	return derived
}

// datasetCountry reads the country identity off the first observation
func datasetCountry(d *Dataset) (name, code string) {
	if len(d.Observations) == 0 {
		return "", ""
	}
	return d.Observations[0].CountryName, d.Observations[0].CountryCode
}
