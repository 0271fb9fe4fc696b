package transform

import (
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"

	"macropipe/domain/indicator"
	"macropipe/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func series(name string, start int, values ...float64) []indicator.Observation {
	obs := make([]indicator.Observation, len(values))
	for i, v := range values {
		obs[i] = indicator.Observation{
			CountryName:   "Bangladesh",
			CountryCode:   "BGD",
			IndicatorName: name,
			Year:          start + i,
			Value:         v,
		}
	}
	return obs
}

func TestTrendCoefficient_ExactLinearSeries(t *testing.T) {
	// Scenario: a perfectly linear series must recover its slope exactly
	slope := TrendCoefficient(series("population", 2000, 5, 7, 9, 11, 13))

	if math.Abs(slope-2.0) > 1e-9 {
		t.Errorf("Expected slope 2.0, got %.12f", slope)
	}
}

func TestTrendCoefficient_CompoundGrowthSeries(t *testing.T) {
	// Least-squares slope over 100, 110, 121 is 10.5 per year
	slope := TrendCoefficient(series("gdp_per_capita", 2000, 100, 110, 121))

	if math.Abs(slope-10.5) > 1e-9 {
		t.Errorf("Expected slope 10.5, got %.12f", slope)
	}
}

func TestMovingAverage3(t *testing.T) {
	got := MovingAverage3([]float64{1, 2, 3, 4})

	want := []float64{2, 3}
	if len(got) != len(want) {
		t.Fatalf("Expected %d smoothed points, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Smoothed[%d]: expected %.1f, got %.6f", i, want[i], got[i])
		}
	}

	if MovingAverage3([]float64{1, 2}) != nil {
		t.Error("Expected nil for a series shorter than the window")
	}
}

func TestAnalyzeTimeSeries_MinimumHistory(t *testing.T) {
	// Scenario: four observations are below the trend threshold, five are
	// enough; the trend record lands on the latest year
	tr := New(config.PathConfig{}, "BGD", testLogger())

	short := indicator.NewDataset(series("unemployment_rate", 2000, 4, 4.2, 4.1, 4.3))
	tr.analyzeTimeSeries(short)
	for _, o := range short.Observations {
		if o.IndicatorName == "unemployment_rate"+indicator.TrendNameSuffix {
			t.Fatal("Trend derived for a series below the minimum history")
		}
	}

	long := indicator.NewDataset(series("population", 2000, 100, 102, 104, 106, 108))
	tr.analyzeTimeSeries(long)

	var trend *indicator.Observation
	for i, o := range long.Observations {
		if o.IndicatorName == "population"+indicator.TrendNameSuffix {
			trend = &long.Observations[i]
		}
	}
	if trend == nil {
		t.Fatal("Expected a trend observation for a 5-point series")
	}
	if trend.Year != 2004 {
		t.Errorf("Trend record should be keyed to latest year 2004, got %d", trend.Year)
	}
	if math.Abs(trend.Value-2.0) > 1e-9 {
		t.Errorf("Expected trend coefficient 2.0, got %.12f", trend.Value)
	}
	if trend.IndicatorCode != indicator.TrendCode("population") {
		t.Errorf("Unexpected trend code: %s", trend.IndicatorCode)
	}
}
