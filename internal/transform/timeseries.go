package transform

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"macropipe/domain/indicator"
)

// minTrendObservations is the minimum series length for trend analysis
const minTrendObservations = 5

// analyzeTimeSeries emits one trend-coefficient observation per indicator
// with enough history. The 3-year moving average is computed for smoothing
// diagnostics only and is never persisted.
func (t *Transformer) analyzeTimeSeries(d *indicator.Dataset) {
	countryName, countryCode := seriesCountry(d)
	added := 0

	for _, name := range d.IndicatorNames() {
		series := d.Series(name)
		if len(series) < minTrendObservations {
			continue
		}

		smoothed := MovingAverage3(values(series))
		t.logger.WithFields(logrus.Fields{
			"indicator": name,
			"smoothed":  len(smoothed),
		}).Debug("Computed centered moving average")

		slope := TrendCoefficient(series)
		latest := series[len(series)-1]

		d.Append(indicator.Observation{
			CountryName:   countryName,
			CountryCode:   countryCode,
			IndicatorCode: indicator.TrendCode(name),
			IndicatorName: name + indicator.TrendNameSuffix,
			Year:          latest.Year,
			Value:         slope,
		})
		added++
	}

	t.logger.WithField("trend_records", added).Info("Added time series features")
}

// TrendCoefficient is the least-squares slope of value against year over
// the indicator's full series. No weighting, no outlier handling.
func TrendCoefficient(series []indicator.Observation) float64 {
	xs := make([]float64, len(series))
	ys := make([]float64, len(series))
	for i, o := range series {
		xs[i] = float64(o.Year)
		ys[i] = o.Value
	}

	_, slope := stat.LinearRegression(xs, ys, nil, false)
	return slope
}

// MovingAverage3 computes a 3-point centered moving average. The first and
// last positions have no centered window and are omitted.
func MovingAverage3(vals []float64) []float64 {
	if len(vals) < 3 {
		return nil
	}
	out := make([]float64, 0, len(vals)-2)
	for i := 1; i < len(vals)-1; i++ {
		out = append(out, (vals[i-1]+vals[i]+vals[i+1])/3)
	}
	return out
}

func values(series []indicator.Observation) []float64 {
	vals := make([]float64, len(series))
	for i, o := range series {
		vals[i] = o.Value
	}
	return vals
}

func seriesCountry(d *indicator.Dataset) (name, code string) {
	if d.Len() == 0 {
		return "", ""
	}
	return d.Observations[0].CountryName, d.Observations[0].CountryCode
}
