package http

import (
	"context"
	"net/http"
	"strconv"

	"solarfin-backend/internal/rates"

	"github.com/labstack/echo/v4"
)

// RateService is the slice of *rates.Service the handler needs.
type RateService interface {
	GetAllRates(ctx context.Context) rates.Snapshot
	SolarFinancingRate(ctx context.Context, spread float64) float64
}

type RatesHandler struct{ svc RateService }

func NewRatesHandler(svc RateService) *RatesHandler { return &RatesHandler{svc: svc} }

func (h *RatesHandler) GetRates(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.GetAllRates(c.Request().Context()))
}

// GetFinancingRate returns the benchmark-plus-spread rate. An invalid spread
// query falls back to the default spread rather than erroring.
func (h *RatesHandler) GetFinancingRate(c echo.Context) error {
	spread := 0.0
	if raw := c.QueryParam("spread"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			spread = v
		}
	}
	rate := h.svc.SolarFinancingRate(c.Request().Context(), spread)
	if spread <= 0 {
		spread = rates.DefaultSpread
	}
	return c.JSON(http.StatusOK, map[string]float64{
		"annual_rate_pct": rate,
		"spread_pct":      spread,
	})
}
