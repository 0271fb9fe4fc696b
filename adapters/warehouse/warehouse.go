// Package warehouse materializes processed artifacts into a Postgres
// analytical store: a fact table, an indicator dimension, a summary table
// and three read-only analytical views.
package warehouse

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"macropipe/domain/indicator"
	"macropipe/domain/pipeline"
	"macropipe/internal/errors"
)

// Postgres implements ports.Warehouse on a single sqlx connection
type Postgres struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// Connect opens and pings the warehouse connection
func Connect(databaseURL string, logger *logrus.Logger) (*Postgres, error) {
	if databaseURL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required for the load stage")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, errors.LoadError("failed to connect to warehouse", err)
	}
	if err := db.Ping(); err != nil {
		return nil, errors.LoadError("failed to ping warehouse", err)
	}

	return &Postgres{db: db, logger: logger}, nil
}

// Close releases the warehouse connection
func (w *Postgres) Close() error {
	return w.db.Close()
}

// EnsureSchema creates tables, indexes and analytical views if missing.
// All statements are idempotent.
func (w *Postgres) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS economic_indicators (
			id BIGSERIAL PRIMARY KEY,
			country_name TEXT NOT NULL,
			country_code TEXT NOT NULL,
			indicator_code TEXT NOT NULL,
			indicator_name TEXT NOT NULL,
			year INTEGER NOT NULL,
			value DOUBLE PRECISION,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (indicator_name, year)
		)`,
		`CREATE TABLE IF NOT EXISTS dim_indicators (
			indicator_name TEXT PRIMARY KEY,
			indicator_code TEXT,
			category TEXT,
			unit TEXT,
			description TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS indicator_summary (
			indicator_name TEXT PRIMARY KEY,
			record_count INTEGER,
			min_year INTEGER,
			max_year INTEGER,
			mean_value DOUBLE PRECISION,
			std_value DOUBLE PRECISION,
			min_value DOUBLE PRECISION,
			max_value DOUBLE PRECISION,
			trend_coefficient DOUBLE PRECISION,
			last_updated TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_indicator_year ON economic_indicators (indicator_name, year)`,
		`CREATE INDEX IF NOT EXISTS idx_year ON economic_indicators (year)`,
		`CREATE INDEX IF NOT EXISTS idx_indicator ON economic_indicators (indicator_name)`,
	}

	for _, stmt := range statements {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return errors.LoadError("failed to create warehouse schema", err)
		}
	}

	if err := w.createViews(ctx); err != nil {
		return err
	}

	w.logger.Info("Warehouse schema ready")
	return nil
}

// createViews builds the three analytical views
func (w *Postgres) createViews(ctx context.Context) error {
	views := map[string]string{
		"v_latest_indicators": `
			CREATE OR REPLACE VIEW v_latest_indicators AS
			SELECT indicator_name,
			       year,
			       value,
			       LAG(value) OVER (PARTITION BY indicator_name ORDER BY year) AS previous_year_value,
			       value - LAG(value) OVER (PARTITION BY indicator_name ORDER BY year) AS year_over_year_change
			FROM economic_indicators
			WHERE year = (SELECT MAX(year) FROM economic_indicators)`,
		"v_economic_structure": `
			CREATE OR REPLACE VIEW v_economic_structure AS
			SELECT year,
			       MAX(CASE WHEN indicator_name = 'agriculture_pct_gdp' THEN value END) AS agriculture_pct,
			       MAX(CASE WHEN indicator_name = 'industry_pct_gdp' THEN value END) AS industry_pct,
			       100 - MAX(CASE WHEN indicator_name = 'agriculture_pct_gdp' THEN value END)
			           - MAX(CASE WHEN indicator_name = 'industry_pct_gdp' THEN value END) AS services_pct_estimated
			FROM economic_indicators
			WHERE indicator_name IN ('agriculture_pct_gdp', 'industry_pct_gdp')
			GROUP BY year
			ORDER BY year`,
		"v_growth_trends": `
			CREATE OR REPLACE VIEW v_growth_trends AS
			SELECT year,
			       MAX(CASE WHEN indicator_name = 'gdp_growth' THEN value END) AS gdp_growth_rate,
			       MAX(CASE WHEN indicator_name = 'gdp_per_capita' THEN value END) AS gdp_per_capita,
			       MAX(CASE WHEN indicator_name = 'population' THEN value END) AS population,
			       MAX(CASE WHEN indicator_name = 'unemployment_rate' THEN value END) AS unemployment_rate
			FROM economic_indicators
			WHERE indicator_name IN ('gdp_growth', 'gdp_per_capita', 'population', 'unemployment_rate')
			GROUP BY year
			ORDER BY year`,
	}

	for name, stmt := range views {
		if _, err := w.db.ExecContext(ctx, stmt); err != nil {
			return errors.LoadError("failed to create view "+name, err)
		}
		w.logger.WithField("view", name).Debug("Created analytical view")
	}
	return nil
}

// ReplaceObservations reloads the fact table: delete-all then insert, in a
// single transaction. Duplicate keys replace rather than duplicate.
func (w *Postgres) ReplaceObservations(ctx context.Context, obs []indicator.Observation) (int, error) {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, errors.LoadError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM economic_indicators`); err != nil {
		return 0, errors.LoadError("failed to clear fact table", err)
	}

	const insert = `
		INSERT INTO economic_indicators
			(country_name, country_code, indicator_code, indicator_name, year, value)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (indicator_name, year) DO UPDATE SET
			country_name = EXCLUDED.country_name,
			country_code = EXCLUDED.country_code,
			indicator_code = EXCLUDED.indicator_code,
			value = EXCLUDED.value`

	for _, o := range obs {
		if _, err := tx.ExecContext(ctx, insert,
			o.CountryName, o.CountryCode, o.IndicatorCode, o.IndicatorName, o.Year, o.Value); err != nil {
			return 0, errors.LoadError("failed to insert observation", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.LoadError("failed to commit fact load", err)
	}

	var count int
	if err := w.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM economic_indicators`); err != nil {
		return 0, errors.LoadError("failed to count loaded rows", err)
	}

	w.logger.WithField("records", count).Info("Loaded fact table")
	return count, nil
}

// LoadDimensions upserts the indicator catalog into dim_indicators
func (w *Postgres) LoadDimensions(ctx context.Context, metas []indicator.Meta) error {
	const upsert = `
		INSERT INTO dim_indicators (indicator_name, indicator_code, category, unit, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (indicator_name) DO UPDATE SET
			indicator_code = EXCLUDED.indicator_code,
			category = EXCLUDED.category,
			unit = EXCLUDED.unit,
			description = EXCLUDED.description`

	for _, m := range metas {
		if _, err := w.db.ExecContext(ctx, upsert, m.Name, m.Code, m.Category, m.Unit, m.Description); err != nil {
			return errors.LoadError("failed to load indicator dimension", err)
		}
	}

	w.logger.WithField("indicators", len(metas)).Info("Loaded indicator dimension")
	return nil
}

// LoadSummaries replaces the indicator_summary table
func (w *Postgres) LoadSummaries(ctx context.Context, summaries []indicator.Summary) error {
	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.LoadError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM indicator_summary`); err != nil {
		return errors.LoadError("failed to clear summary table", err)
	}

	const insert = `
		INSERT INTO indicator_summary
			(indicator_name, record_count, min_year, max_year, mean_value,
			 std_value, min_value, max_value, trend_coefficient, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`

	for _, s := range summaries {
		if _, err := tx.ExecContext(ctx, insert,
			s.Indicator, s.Count, s.MinYear, s.MaxYear, s.MeanValue,
			s.StdValue, s.MinValue, s.MaxValue, s.TrendCoefficient); err != nil {
			return errors.LoadError("failed to insert summary", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.LoadError("failed to commit summary load", err)
	}

	w.logger.WithField("indicators", len(summaries)).Info("Loaded summary statistics")
	return nil
}

// QualityInput measures the loaded fact table for the run quality score
func (w *Postgres) QualityInput(ctx context.Context) (pipeline.QualityInput, error) {
	var in pipeline.QualityInput

	if err := w.db.GetContext(ctx, &in.TotalRecords,
		`SELECT COUNT(*) FROM economic_indicators`); err != nil {
		return in, errors.LoadError("failed to count records", err)
	}
	if err := w.db.GetContext(ctx, &in.NullValues,
		`SELECT COUNT(*) FROM economic_indicators WHERE value IS NULL`); err != nil {
		return in, errors.LoadError("failed to count null values", err)
	}
	if err := w.db.GetContext(ctx, &in.IndicatorCount,
		`SELECT COUNT(DISTINCT indicator_name) FROM economic_indicators`); err != nil {
		return in, errors.LoadError("failed to count indicators", err)
	}

	return in, nil
}
