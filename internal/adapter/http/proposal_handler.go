package http

import (
	"errors"
	"net/http"

	domain "solarfin-backend/internal/domain/proposal"
	uc "solarfin-backend/internal/usecase/proposal"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type ProposalHandler struct{ uc *uc.Usecase }

func NewProposalHandler(u *uc.Usecase) *ProposalHandler { return &ProposalHandler{uc: u} }

type createProposalReq struct {
	CustomerID          string  `json:"customer_id"           validate:"required,hex32"`
	AccountID           string  `json:"account_id"            validate:"required,hex32"`
	RequestedAmount     float64 `json:"requested_amount"      validate:"required,gt=0,dec2"`
	RequestedTermMonths int     `json:"requested_term_months" validate:"required,gte=1,lte=360"`
	DownPayment         float64 `json:"down_payment"          validate:"gte=0,dec2"`
	Modality            string  `json:"modality"              validate:"required,oneof=cdc_solar leasing eaas"`
}

func (h *ProposalHandler) CreateProposal(c echo.Context) error {
	var req createProposalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Create(c.Request().Context(), uc.CreateProposalInput(req))
	if err != nil {
		return writeProposalErr(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

type approveProposalReq struct {
	ApprovedAmount     float64 `json:"approved_amount"      validate:"required,gt=0,dec2"`
	ApprovedTermMonths int     `json:"approved_term_months" validate:"required,gte=1,lte=360"`
	NominalAnnualRate  float64 `json:"nominal_annual_rate"  validate:"gte=0,dec2"`
	Conditions         string  `json:"conditions"`
	Convention         string  `json:"convention"           validate:"omitempty,oneof=sac price"`
}

func (h *ProposalHandler) ApproveProposal(c echo.Context) error {
	proposalID := c.Param("proposal_id")
	if proposalID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing proposal_id path param"})
	}
	var req approveProposalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Approve(c.Request().Context(), uc.ApproveProposalInput{
		ProposalID:         proposalID,
		ApprovedAmount:     req.ApprovedAmount,
		ApprovedTermMonths: req.ApprovedTermMonths,
		NominalAnnualRate:  req.NominalAnnualRate,
		Conditions:         req.Conditions,
		Convention:         req.Convention,
	})
	if err != nil {
		return writeProposalErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProposalHandler) ContractProposal(c echo.Context) error {
	dto, err := h.uc.Contract(c.Request().Context(), c.Param("proposal_id"))
	if err != nil {
		return writeProposalErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProposalHandler) CancelProposal(c echo.Context) error {
	dto, err := h.uc.Cancel(c.Request().Context(), c.Param("proposal_id"))
	if err != nil {
		return writeProposalErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProposalHandler) GetProposal(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("proposal_id"))
	if err != nil {
		return writeProposalErr(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProposalHandler) GetProposalSchedule(c echo.Context) error {
	entries, err := h.uc.GetSchedule(c.Request().Context(), c.Param("proposal_id"))
	if err != nil {
		return writeProposalErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"proposal_id":  c.Param("proposal_id"),
		"installments": entries,
	})
}

func (h *ProposalHandler) ListCustomerProposals(c echo.Context) error {
	dtos, err := h.uc.ListByCustomer(c.Request().Context(), c.Param("customer_id"))
	if err != nil {
		return writeProposalErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"proposals": dtos})
}

// writeProposalErr maps domain and usecase errors to HTTP codes.
func writeProposalErr(c echo.Context, err error) error {
	var conflict *domain.StateConflictError
	var limit *uc.LimitExceededError
	switch {
	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: conflict.Error()})
	case errors.Is(err, domain.ErrExpired):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "offer expired"})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.As(err, &limit):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: limit.Error()})
	case errors.Is(err, uc.ErrInvalidInput), errors.Is(err, uc.ErrInvalidFinancedAmount):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
