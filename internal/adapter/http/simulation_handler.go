package http

import (
	"net/http"

	"solarfin-backend/internal/finance"

	"github.com/labstack/echo/v4"
)

// SimulationHandler exposes stateless amortization simulations.
type SimulationHandler struct{}

func NewSimulationHandler() *SimulationHandler { return &SimulationHandler{} }

type simulationReq struct {
	Amount        float64 `json:"amount"          validate:"required,gt=0,dec2"`
	AnnualRatePct float64 `json:"annual_rate_pct" validate:"gte=0,lte=100"`
	TermMonths    int     `json:"term_months"     validate:"required,gte=1,lte=360"`
}

func (h *SimulationHandler) SimulateSAC(c echo.Context) error {
	return h.simulate(c, finance.SimulateSAC)
}

func (h *SimulationHandler) SimulatePrice(c echo.Context) error {
	return h.simulate(c, finance.SimulatePrice)
}

func (h *SimulationHandler) simulate(c echo.Context, fn func(float64, float64, int) finance.Schedule) error {
	var req simulationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	sched := fn(req.Amount, req.AnnualRatePct, req.TermMonths).RoundedCopy()
	return c.JSON(http.StatusOK, sched)
}
