package table

import (
	"encoding/csv"
	"math"
	"os"
	"strconv"
	"strings"

	"macropipe/domain/indicator"
	"macropipe/internal/errors"
)

// ReadLong reads a raw or long-format CSV into a dataset. Rows with empty or
// unparseable values are kept with NaN so the validate phase can report
// them; the clean phase drops them. A missing required column fails with a
// schema error.
func ReadLong(path string) (*indicator.Dataset, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.MissingInput(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if len(rows) == 0 {
		return nil, errors.SchemaError("artifact has no header row: " + path)
	}

	index, err := columnIndex(rows[0])
	if err != nil {
		return nil, err
	}

	observations := make([]indicator.Observation, 0, len(rows)-1)
	for _, row := range rows[1:] {
		obs := indicator.Observation{
			CountryName:   cell(row, index["country_name"]),
			CountryCode:   cell(row, index["country_code"]),
			IndicatorCode: cell(row, index["indicator_code"]),
			IndicatorName: cell(row, index["indicator_name"]),
			Year:          parseYear(cell(row, index["year"])),
			Value:         parseValue(cell(row, index["value"])),
		}
		observations = append(observations, obs)
	}

	return indicator.NewDataset(observations), nil
}

// ReadWide melts a wide-format CSV back into long-format observations.
// Empty cells are skipped, matching the pivot's treatment of missing
// indicator-year combinations.
func ReadWide(path string) (*indicator.Dataset, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.MissingInput(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if len(rows) == 0 || len(rows[0]) == 0 || rows[0][0] != "year" {
		return nil, errors.SchemaError("wide artifact must start with a year column: " + path)
	}

	names := rows[0][1:]
	var observations []indicator.Observation
	for _, row := range rows[1:] {
		year := parseYear(row[0])
		for i, name := range names {
			raw := cell(row, i+1)
			if raw == "" {
				continue
			}
			observations = append(observations, indicator.Observation{
				IndicatorName: name,
				Year:          year,
				Value:         parseValue(raw),
			})
		}
	}

	return indicator.NewDataset(observations), nil
}

// ReadSummary reads the per-indicator summary artifact
func ReadSummary(path string) ([]indicator.Summary, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.MissingInput(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()

	r := csv.NewReader(file)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if len(rows) == 0 {
		return nil, errors.SchemaError("summary artifact has no header row: " + path)
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range SummaryColumns {
		if _, ok := index[required]; !ok {
			return nil, errors.SchemaError("summary artifact missing column: " + required)
		}
	}

	summaries := make([]indicator.Summary, 0, len(rows)-1)
	for _, row := range rows[1:] {
		summaries = append(summaries, indicator.Summary{
			Indicator: cell(row, index["indicator"]),
			Count:     parseYear(cell(row, index["count"])),
			MinYear:   parseYear(cell(row, index["min_year"])),
			MaxYear:   parseYear(cell(row, index["max_year"])),
			MeanValue: parseValue(cell(row, index["mean_value"])),
			StdValue:  parseValue(cell(row, index["std_value"])),
			MinValue:  parseValue(cell(row, index["min_value"])),
			MaxValue:  parseValue(cell(row, index["max_value"])),
			NullCount: parseYear(cell(row, index["null_count"])),
		})
	}

	return summaries, nil
}

// columnIndex maps header names to positions and checks required columns
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	for _, required := range []string{"country_name", "indicator_name", "year", "value"} {
		if _, ok := index[required]; !ok {
			return nil, errors.SchemaError("artifact missing required column: " + required)
		}
	}

	// Optional columns map to -1 so cell() returns empty
	for _, optional := range []string{"country_code", "indicator_code"} {
		if _, ok := index[optional]; !ok {
			index[optional] = -1
		}
	}
	return index, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseYear coerces a year cell to an integer, tolerating float renderings
// like "2020.0". Unparseable cells become zero and fail year-range checks.
func parseYear(raw string) int {
	if raw == "" {
		return 0
	}
	if year, err := strconv.Atoi(raw); err == nil {
		return year
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}

// parseValue coerces a value cell to a float, mapping empty or malformed
// cells to NaN
func parseValue(raw string) float64 {
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
