// Package rates maintains a cached view of the external benchmark interest
// rate series used to price solar financing products.
package rates

import "time"

// Series identifies one of the three supported benchmark series.
type Series string

const (
	// SeriesPolicy is the central-bank policy rate (% p.a.).
	SeriesPolicy Series = "selic"
	// SeriesInterbank is the interbank deposit rate (% p.a.).
	SeriesInterbank Series = "cdi"
	// SeriesPriceIndex is the consumer price index variation (% per month).
	SeriesPriceIndex Series = "ipca"
)

// Observation is the most recent value of a benchmark series.
type Observation struct {
	Series Series    `json:"series"`
	Value  float64   `json:"value"`
	AsOf   time.Time `json:"as_of"`
	// Annualized is derived for the price-index series, which is published
	// as a monthly variation; zero for the annual series.
	Annualized float64 `json:"annualized,omitempty"`
	// Fallback marks an observation synthesized after an upstream failure.
	Fallback bool `json:"fallback,omitempty"`
}

// Snapshot combines all three series as of a single instant.
type Snapshot struct {
	Policy     Observation `json:"policy"`
	Interbank  Observation `json:"interbank"`
	PriceIndex Observation `json:"price_index"`
	Timestamp  string      `json:"timestamp"`
}

// Fixed values returned when the upstream source is unreachable, so pricing
// degrades to a deterministic figure instead of failing.
var fallbackValues = map[Series]float64{
	SeriesPolicy:     10.5,
	SeriesInterbank:  10.15,
	SeriesPriceIndex: 4.5,
}

// DefaultSpread is the additive margin over the policy rate used for solar
// financing products when the caller does not supply one.
const DefaultSpread = 3.5
