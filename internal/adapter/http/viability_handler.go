package http

import (
	"net/http"

	"solarfin-backend/internal/viability"

	"github.com/labstack/echo/v4"
)

type ViabilityHandler struct{ orc *viability.Orchestrator }

func NewViabilityHandler(orc *viability.Orchestrator) *ViabilityHandler {
	return &ViabilityHandler{orc: orc}
}

// EvaluateViability runs the full feasibility analysis. The report is
// best-effort: partial failures surface as warnings inside a 200 response,
// and only a report that could not be computed at all comes back 502.
func (h *ViabilityHandler) EvaluateViability(c echo.Context) error {
	var in viability.Input
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if in.System.SizeKWp <= 0 {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "system.size_kwp", Message: "must be greater than 0"}},
		})
	}
	report := h.orc.Evaluate(c.Request().Context(), in)
	if !report.Success {
		return c.JSON(http.StatusBadGateway, report)
	}
	return c.JSON(http.StatusOK, report)
}
