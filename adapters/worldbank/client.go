package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"macropipe/domain/indicator"
	"macropipe/internal/config"
	"macropipe/internal/errors"

	"github.com/sirupsen/logrus"
)

// Client fetches indicator observations from the World Bank open data API.
// One bounded-timeout GET per indicator; responses use the two-part
// [metadata, data[]] envelope.
type Client struct {
	httpClient *http.Client
	cfg        config.SourceConfig
	logger     *logrus.Logger
}

// NewClient creates a World Bank API client
func NewClient(cfg config.SourceConfig, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
	}
}

// Fetch retrieves one indicator's observations for the configured country
// and year range. Rows with null values are dropped, not imputed.
func (c *Client) Fetch(ctx context.Context, meta indicator.Meta) ([]indicator.Observation, error) {
	endpoint := fmt.Sprintf("%s/country/%s/indicator/%s", c.cfg.BaseURL, c.cfg.CountryCode, meta.Code)

	params := url.Values{}
	params.Set("format", "json")
	params.Set("date", fmt.Sprintf("%d:%d", c.cfg.StartYear, c.cfg.EndYear))
	params.Set("per_page", strconv.Itoa(c.cfg.PerPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build request for %s", meta.Code)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request failed for %s", meta.Code)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(
			fmt.Errorf("unexpected status %d", resp.StatusCode),
			"request failed for %s", meta.Code)
	}

	records, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode response for %s", meta.Code)
	}

	observations := make([]indicator.Observation, 0, len(records))
	for _, r := range records {
		if r.Value == nil {
			continue
		}
		year, err := strconv.Atoi(r.Date)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"indicator": meta.Name,
				"date":      r.Date,
			}).Warn("Skipping record with non-numeric date")
			continue
		}

		countryName := r.Country.Value
		if countryName == "" {
			countryName = c.cfg.CountryName
		}
		countryCode := r.Country.ID
		if countryCode == "" {
			countryCode = c.cfg.CountryCode
		}

		observations = append(observations, indicator.Observation{
			CountryName:   countryName,
			CountryCode:   countryCode,
			IndicatorCode: meta.Code,
			IndicatorName: meta.Name,
			Year:          year,
			Value:         *r.Value,
		})
	}

	return observations, nil
}

// decodeEnvelope parses the [metadata, data[]] response shape. A single
// element envelope (error message from the API) yields an empty data set.
func decodeEnvelope(body io.Reader) ([]record, error) {
	var envelope []json.RawMessage
	if err := json.NewDecoder(body).Decode(&envelope); err != nil {
		return nil, err
	}
	if len(envelope) < 2 {
		return nil, nil
	}

	var meta pageInfo
	// Metadata decode failures are non-fatal; only the data array matters
	_ = json.Unmarshal(envelope[0], &meta)

	var records []record
	if err := json.Unmarshal(envelope[1], &records); err != nil {
		return nil, err
	}
	return records, nil
}
