package rates

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL bounds staleness of a cached observation; benchmark rates move
// at most a few times per day.
const DefaultTTL = 24 * time.Hour

type cacheEntry struct {
	obs       Observation
	fetchedAt time.Time
}

// Service caches benchmark observations per series and fails soft: a remote
// failure yields the series' fixed fallback value, never an error.
type Service struct {
	source Source
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	entries map[Series]cacheEntry
}

func NewService(source Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:  source,
		logger:  logger,
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[Series]cacheEntry),
	}
}

// WithClock overrides the time source, for deterministic TTL tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithTTL overrides the observation freshness window.
func (s *Service) WithTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// GetRate returns the cached observation for the series if it is younger
// than the TTL, otherwise re-fetches. Fallback observations are cached too,
// so a failing upstream is probed at most once per TTL window.
func (s *Service) GetRate(ctx context.Context, series Series) Observation {
	now := s.now()

	s.mu.RLock()
	entry, ok := s.entries[series]
	s.mu.RUnlock()
	if ok && now.Sub(entry.fetchedAt) < s.ttl {
		return entry.obs
	}

	obs, err := s.source.FetchLatest(ctx, series)
	if err != nil {
		s.logger.Warn("benchmark fetch failed, using fallback",
			zap.String("op", "rates.GetRate"),
			zap.String("series", string(series)),
			zap.Error(err),
		)
		obs = s.fallback(series, now)
	}

	s.mu.Lock()
	s.entries[series] = cacheEntry{obs: obs, fetchedAt: now}
	s.mu.Unlock()
	return obs
}

// GetAllRates resolves the three series concurrently and assembles a
// combined snapshot stamped with an ISO timestamp.
func (s *Service) GetAllRates(ctx context.Context) Snapshot {
	var (
		wg   sync.WaitGroup
		snap Snapshot
	)
	fetch := func(series Series, dst *Observation) {
		defer wg.Done()
		*dst = s.GetRate(ctx, series)
	}
	wg.Add(3)
	go fetch(SeriesPolicy, &snap.Policy)
	go fetch(SeriesInterbank, &snap.Interbank)
	go fetch(SeriesPriceIndex, &snap.PriceIndex)
	wg.Wait()

	snap.Timestamp = s.now().UTC().Format(time.RFC3339)
	return snap
}

// SolarFinancingRate derives a product rate as policy rate plus spread, in
// percentage points. A non-positive spread selects DefaultSpread. The policy
// rate is re-resolved through the cache on every call.
func (s *Service) SolarFinancingRate(ctx context.Context, spread float64) float64 {
	if spread <= 0 {
		spread = DefaultSpread
	}
	return s.GetRate(ctx, SeriesPolicy).Value + spread
}

func (s *Service) fallback(series Series, now time.Time) Observation {
	obs := Observation{
		Series:   series,
		Value:    fallbackValues[series],
		AsOf:     now,
		Fallback: true,
	}
	if series == SeriesPriceIndex {
		// the index fallback is already an annual figure
		obs.Annualized = obs.Value
	}
	return obs
}
