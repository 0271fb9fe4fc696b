package indicator

// Summary is the per-indicator aggregate recomputed fully on each transform
// run.
type Summary struct {
	Indicator string  `json:"indicator"`
	Count     int     `json:"count"`
	MinYear   int     `json:"min_year"`
	MaxYear   int     `json:"max_year"`
	MeanValue float64 `json:"mean_value"`
	StdValue  float64 `json:"std_value"`
	MinValue  float64 `json:"min_value"`
	MaxValue  float64 `json:"max_value"`
	NullCount int     `json:"null_count"`

	// TrendCoefficient is populated at warehouse load time from the
	// corresponding TREND_* observation, when one exists.
	TrendCoefficient *float64 `json:"trend_coefficient,omitempty"`
}
