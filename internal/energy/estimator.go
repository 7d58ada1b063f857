package energy

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	hoursPerYear = 8760.0
	daysPerYear  = 365.0

	basePerformanceRatio = 0.80
)

// Average daily insolation in kWh/m²/day per administrative region.
var regionInsolation = map[string]float64{
	"norte":        4.6,
	"nordeste":     5.8,
	"centro-oeste": 5.6,
	"sudeste":      5.2,
	"sul":          4.8,
}

const defaultInsolation = 5.0

// defaultLosses apply wherever the caller leaves a term at zero.
var defaultLosses = Losses{
	Soiling:      0.02,
	Shading:      0.03,
	Mismatch:     0.02,
	Wiring:       0.02,
	Connections:  0.005,
	LID:          0.015,
	Nameplate:    0.01,
	Availability: 0.03,
}

// Seasonal shape factors; each sums to 12 so the monthly average is
// preserved. Southern sites swing hardest between summer and winter, the
// northeast barely varies.
var (
	shapeSouth = [12]float64{1.18, 1.10, 1.05, 0.95, 0.85, 0.78, 0.82, 0.90, 0.95, 1.05, 1.15, 1.22}
	shapeNE    = [12]float64{1.05, 1.03, 1.02, 0.98, 0.95, 0.93, 0.95, 0.98, 1.00, 1.02, 1.04, 1.05}
	shapeOther = [12]float64{1.10, 1.06, 1.02, 0.96, 0.90, 0.85, 0.88, 0.94, 0.98, 1.04, 1.11, 1.16}
)

// Estimator resolves an energy yield estimate, delegating to the external
// simulator and falling back to the regional closed-form model on any
// failure. Estimate never returns an error.
type Estimator struct {
	runner SimulationRunner
	logger *zap.Logger
}

func NewEstimator(runner SimulationRunner, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{runner: runner, logger: logger}
}

func (e *Estimator) Estimate(ctx context.Context, req Request) Estimate {
	req = withDefaults(req)

	if e.runner != nil {
		est, err := e.runner.Run(ctx, req)
		if err == nil {
			return est
		}
		e.logger.Warn("simulator unavailable, using regional model",
			zap.String("op", "energy.Estimate"),
			zap.Error(err),
		)
	}
	return e.Fallback(req)
}

// Fallback computes the closed-form estimate: regional insolation times an
// adjusted performance ratio, distributed by the regional seasonal shape.
func (e *Estimator) Fallback(req Request) Estimate {
	req = withDefaults(req)

	insolation, ok := regionInsolation[normalizeRegion(req.Location.Region)]
	if !ok {
		insolation = defaultInsolation
	}

	l := req.Losses
	lossSum := l.Soiling + l.Shading + l.Mismatch + l.Wiring + l.Connections + l.LID + l.Nameplate + l.Availability
	pr := basePerformanceRatio * (1.0 - lossSum)

	annual := req.System.SizeKWp * insolation * daysPerYear * pr
	monthlyAvg := annual / 12.0

	shape := seasonalShape(req.Location.Region)
	var monthly [12]float64
	for m := 0; m < 12; m++ {
		monthly[m] = monthlyAvg * shape[m]
	}

	var capacityFactor float64
	if req.System.SizeKWp > 0 {
		capacityFactor = annual / (req.System.SizeKWp * hoursPerYear) * 100.0
	}

	return Estimate{
		AnnualGenerationKWh:  annual,
		MonthlyAvgKWh:        monthlyAvg,
		MonthlyGenerationKWh: monthly,
		PerformanceRatio:     pr,
		CapacityFactor:       capacityFactor,
		Source:               "regional_model",
	}
}

// withDefaults fills array geometry and loss terms the caller omitted:
// tilt defaults to the site latitude, azimuth to 0 (equator-facing).
func withDefaults(req Request) Request {
	if req.System.TiltDeg == 0 {
		lat := req.Location.Latitude
		if lat < 0 {
			lat = -lat
		}
		req.System.TiltDeg = lat
	}
	if req.Losses.Soiling == 0 {
		req.Losses.Soiling = defaultLosses.Soiling
	}
	if req.Losses.Shading == 0 {
		req.Losses.Shading = defaultLosses.Shading
	}
	if req.Losses.Mismatch == 0 {
		req.Losses.Mismatch = defaultLosses.Mismatch
	}
	if req.Losses.Wiring == 0 {
		req.Losses.Wiring = defaultLosses.Wiring
	}
	if req.Losses.Connections == 0 {
		req.Losses.Connections = defaultLosses.Connections
	}
	if req.Losses.LID == 0 {
		req.Losses.LID = defaultLosses.LID
	}
	if req.Losses.Nameplate == 0 {
		req.Losses.Nameplate = defaultLosses.Nameplate
	}
	if req.Losses.Availability == 0 {
		req.Losses.Availability = defaultLosses.Availability
	}
	return req
}

func normalizeRegion(region string) string {
	return strings.ToLower(strings.TrimSpace(region))
}

func seasonalShape(region string) [12]float64 {
	switch normalizeRegion(region) {
	case "sul":
		return shapeSouth
	case "nordeste":
		return shapeNE
	default:
		return shapeOther
	}
}
