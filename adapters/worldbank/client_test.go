package worldbank

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"macropipe/domain/indicator"
	"macropipe/internal/config"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testConfig(baseURL string) config.SourceConfig {
	return config.SourceConfig{
		BaseURL:     baseURL,
		CountryCode: "BGD",
		CountryName: "Bangladesh",
		StartYear:   2000,
		EndYear:     2023,
		PerPage:     100,
		Timeout:     5 * time.Second,
	}
}

const envelopeFixture = `[
  {"page": 1, "pages": 1, "per_page": 100, "total": 4},
  [
    {"indicator": {"id": "NY.GDP.PCAP.KD", "value": "GDP per capita"},
     "country": {"id": "BD", "value": "Bangladesh"},
     "date": "2021", "value": 1802.42},
    {"indicator": {"id": "NY.GDP.PCAP.KD", "value": "GDP per capita"},
     "country": {"id": "BD", "value": "Bangladesh"},
     "date": "2020", "value": 1721.11},
    {"indicator": {"id": "NY.GDP.PCAP.KD", "value": "GDP per capita"},
     "country": {"id": "BD", "value": "Bangladesh"},
     "date": "2019", "value": null},
    {"indicator": {"id": "NY.GDP.PCAP.KD", "value": "GDP per capita"},
     "country": {"id": "BD", "value": "Bangladesh"},
     "date": "MRV", "value": 9.9}
  ]
]`

func TestClient_FetchParsesEnvelope(t *testing.T) {
	// Scenario: a normal API response with one null year and one
	// non-numeric date; only the two usable records come back
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Encode()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(envelopeFixture))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), testLogger())
	meta := indicator.Catalog[0]

	obs, err := client.Fetch(context.Background(), meta)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	require.Equal(t, "/country/BGD/indicator/NY.GDP.PCAP.KD", gotPath)
	require.Contains(t, gotQuery, "format=json")
	require.Contains(t, gotQuery, "date=2000%3A2023")

	require.Equal(t, 2021, obs[0].Year)
	require.Equal(t, 1802.42, obs[0].Value)
	require.Equal(t, "gdp_per_capita", obs[0].IndicatorName)
	require.Equal(t, "NY.GDP.PCAP.KD", obs[0].IndicatorCode)
	require.Equal(t, "Bangladesh", obs[0].CountryName)
	require.Equal(t, "BD", obs[0].CountryCode)
}

func TestClient_FetchSingleElementEnvelope(t *testing.T) {
	// The API reports errors as a one-element envelope; that is an empty
	// result, not a decode failure
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"message": [{"id": "120", "value": "Invalid indicator"}]}]`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), testLogger())

	obs, err := client.Fetch(context.Background(), indicator.Catalog[0])
	require.NoError(t, err)
	require.Empty(t, obs)
}

func TestClient_FetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), testLogger())

	_, err := client.Fetch(context.Background(), indicator.Catalog[0])
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status 500")
}

func TestClient_FetchFallsBackToConfiguredCountry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"total": 1}, [{"date": "2010", "value": 3.5}]]`))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL), testLogger())

	obs, err := client.Fetch(context.Background(), indicator.Catalog[3])
	require.NoError(t, err)
	require.Len(t, obs, 1)
	require.Equal(t, "Bangladesh", obs[0].CountryName)
	require.Equal(t, "BGD", obs[0].CountryCode)
}
