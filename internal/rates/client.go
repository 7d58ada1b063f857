package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// Source fetches the latest observation of a benchmark series.
type Source interface {
	FetchLatest(ctx context.Context, s Series) (Observation, error)
}

const (
	// DefaultBaseURL is the central-bank time-series API.
	DefaultBaseURL = "https://api.bcb.gov.br/dados/serie"

	requestTimeout = 10 * time.Second
)

// seriesCodes maps each benchmark to its upstream series code.
var seriesCodes = map[Series]int{
	SeriesPolicy:     4189, // SELIC, % p.a.
	SeriesInterbank:  4389, // CDI, % p.a.
	SeriesPriceIndex: 433,  // IPCA, % per month
}

// HTTPSource reads benchmark series from the central-bank open-data API.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// sgsObservation is the upstream wire format: values arrive as strings.
type sgsObservation struct {
	Date  string `json:"data"`
	Value string `json:"valor"`
}

func (s *HTTPSource) FetchLatest(ctx context.Context, series Series) (Observation, error) {
	code, ok := seriesCodes[series]
	if !ok {
		return Observation{}, fmt.Errorf("unknown series %q", series)
	}

	url := fmt.Sprintf("%s/bcdata.sgs.%d/dados/ultimos/1?formato=json", s.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Observation{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("fetch %s: %w", series, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Observation{}, fmt.Errorf("fetch %s: unexpected status %d", series, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Observation{}, fmt.Errorf("fetch %s: %w", series, err)
	}

	var raw []sgsObservation
	if err := json.Unmarshal(body, &raw); err != nil {
		return Observation{}, fmt.Errorf("fetch %s: decode: %w", series, err)
	}
	if len(raw) == 0 {
		return Observation{}, fmt.Errorf("fetch %s: empty body", series)
	}

	latest := raw[len(raw)-1]
	value, err := strconv.ParseFloat(latest.Value, 64)
	if err != nil {
		return Observation{}, fmt.Errorf("fetch %s: bad value %q: %w", series, latest.Value, err)
	}
	asOf, err := time.Parse("02/01/2006", latest.Date)
	if err != nil {
		return Observation{}, fmt.Errorf("fetch %s: bad date %q: %w", series, latest.Date, err)
	}

	obs := Observation{Series: series, Value: value, AsOf: asOf}
	if series == SeriesPriceIndex {
		obs.Annualized = annualize(value)
	}
	return obs, nil
}

// annualize compounds a monthly percentage variation into an annual rate.
func annualize(monthlyPct float64) float64 {
	return (math.Pow(1.0+monthlyPct/100.0, 12) - 1.0) * 100.0
}
