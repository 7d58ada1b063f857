package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "solarfin-backend/internal/domain/proposal"
	"solarfin-backend/internal/domain/schedule"
	"solarfin-backend/internal/domain/uow"
	"solarfin-backend/internal/testutil/proposalmock"
	"solarfin-backend/internal/testutil/schedulemock"
	"solarfin-backend/internal/testutil/uowmock"
	uc "solarfin-backend/internal/usecase/proposal"

	"github.com/labstack/echo/v4"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

type allowAllLimits struct{}

func (allowAllLimits) Check(ctx context.Context, accountID string, amount float64) (uc.LimitDecision, error) {
	return uc.LimitDecision{Allowed: true}, nil
}

type noopApprovals struct{}

func (noopApprovals) CreateApproval(ctx context.Context, proposalID string, amount float64) error {
	return nil
}

func newHandler(repo *proposalmock.Repo, sched *schedulemock.Repo) *ProposalHandler {
	u := uc.NewUsecase(
		repo,
		sched,
		uowmock.Passthrough(uow.Repos{Proposals: repo, Schedules: sched}),
		allowAllLimits{},
		noopApprovals{},
		nil,
	)
	return NewProposalHandler(u)
}

// -------- tests --------

func TestCreateProposal_Success(t *testing.T) {
	e := newEchoWithValidator()

	repo := &proposalmock.Repo{
		CreateFn: func(ctx context.Context, p *domain.Proposal) error {
			p.CreatedAt = time.Now().UTC()
			return nil
		},
	}
	h := newHandler(repo, &schedulemock.Repo{})

	reqBody := map[string]any{
		"customer_id":           strings.Repeat("c", 32),
		"account_id":            strings.Repeat("a", 32),
		"requested_amount":      60000,
		"requested_term_months": 60,
		"down_payment":          10000,
		"modality":              "cdc_solar",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/proposals", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateProposal(c); err != nil {
		t.Fatalf("CreateProposal error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	var got uc.ProposalDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.CustomerID != strings.Repeat("c", 32) || got.RequestedAmount != 60000 {
		t.Fatalf("unexpected dto: %+v", got)
	}
	if got.Status != string(domain.StatusPending) {
		t.Fatalf("status = %s, want pending", got.Status)
	}
	if len(got.ProposalID) != 32 {
		t.Fatalf("proposal_id = %q, want 32-char id", got.ProposalID)
	}
}

func TestCreateProposal_BindError(t *testing.T) {
	e := newEchoWithValidator()
	h := newHandler(&proposalmock.Repo{}, &schedulemock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/proposals", strings.NewReader(`{"customer_id":`)) // broken JSON
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateProposal(c); err != nil {
		t.Fatalf("CreateProposal error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "invalid body" {
		t.Fatalf("error = %q, want %q", er.Error, "invalid body")
	}
}

func TestCreateProposal_ValidationError(t *testing.T) {
	e := newEchoWithValidator()
	h := newHandler(&proposalmock.Repo{}, &schedulemock.Repo{}) // won't be called

	// invalid: customer_id not hex32, amount too many decimals, modality unknown
	reqBody := map[string]any{
		"customer_id":           "NOT_HEX_32",
		"account_id":            strings.Repeat("a", 32),
		"requested_amount":      60000.001,
		"requested_term_months": 60,
		"modality":              "mortgage",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/proposals", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateProposal(c); err != nil {
		t.Fatalf("CreateProposal error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if er.Error != "validation failed" {
		t.Fatalf("error = %q, want %q", er.Error, "validation failed")
	}
	if !containsFieldMsg(er.Details, "CustomerID", "32-char lowercase hex") {
		t.Fatalf("missing hex32 detail: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "RequestedAmount", "at most 2 decimal places") {
		t.Fatalf("missing dec2 detail for requested_amount: %+v", er.Details)
	}
	if !containsFieldMsg(er.Details, "Modality", "oneof") {
		t.Fatalf("missing oneof detail for modality: %+v", er.Details)
	}
}

func TestCreateProposal_LimitExceeded(t *testing.T) {
	e := newEchoWithValidator()
	repo := &proposalmock.Repo{}
	u := uc.NewUsecase(
		repo,
		&schedulemock.Repo{},
		uowmock.New(),
		deniedLimits{},
		noopApprovals{},
		nil,
	)
	h := NewProposalHandler(u)

	reqBody := map[string]any{
		"customer_id":           strings.Repeat("c", 32),
		"account_id":            strings.Repeat("a", 32),
		"requested_amount":      60000,
		"requested_term_months": 60,
		"modality":              "leasing",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/proposals", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateProposal(c); err != nil {
		t.Fatalf("CreateProposal error: %v", err)
	}
	if rec.Code != stdhttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !strings.Contains(er.Error, "spending limit exceeded") {
		t.Fatalf("error = %q, want spending limit message", er.Error)
	}
}

type deniedLimits struct{}

func (deniedLimits) Check(ctx context.Context, accountID string, amount float64) (uc.LimitDecision, error) {
	return uc.LimitDecision{Allowed: false, Reason: "monthly cap reached"}, nil
}

func TestApproveProposal_Success(t *testing.T) {
	e := newEchoWithValidator()

	stored := &domain.Proposal{
		ID:                  7,
		ProposalID:          strings.Repeat("d", 32),
		CustomerID:          strings.Repeat("c", 32),
		RequestedAmount:     60000,
		RequestedTermMonths: 60,
		DownPayment:         10000,
		Modality:            domain.ModalityCDCSolar,
		Status:              domain.StatusPending,
	}
	repo := &proposalmock.Repo{
		GetByProposalIDForUpdateFn: func(ctx context.Context, proposalID string) (*domain.Proposal, error) {
			return stored, nil
		},
		SaveFn: func(ctx context.Context, p *domain.Proposal) error { return nil },
	}
	replaced := 0
	sched := &schedulemock.Repo{
		ReplaceForProposalFn: func(ctx context.Context, proposalID uint64, entries []schedule.Entry) error {
			replaced++
			if proposalID != 7 || len(entries) != 48 {
				t.Fatalf("replace proposalID=%d entries=%d", proposalID, len(entries))
			}
			return nil
		},
	}
	h := newHandler(repo, sched)

	reqBody := map[string]any{
		"approved_amount":      55000,
		"approved_term_months": 48,
		"nominal_annual_rate":  14.5,
		"convention":           "price",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/proposals/"+stored.ProposalID+"/approve", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("proposal_id")
	c.SetParamValues(stored.ProposalID)

	if err := h.ApproveProposal(c); err != nil {
		t.Fatalf("ApproveProposal error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var got uc.ProposalDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got.Status != string(domain.StatusApproved) {
		t.Fatalf("status = %s, want approved", got.Status)
	}
	if got.FinancedAmount != 45000 {
		t.Fatalf("financed_amount = %v, want 45000", got.FinancedAmount)
	}
	if replaced != 1 {
		t.Fatalf("schedule replaced %d times, want 1", replaced)
	}
}

func TestApproveProposal_Conflict(t *testing.T) {
	e := newEchoWithValidator()

	repo := &proposalmock.Repo{
		GetByProposalIDForUpdateFn: func(ctx context.Context, proposalID string) (*domain.Proposal, error) {
			return &domain.Proposal{
				ProposalID: proposalID,
				Status:     domain.StatusContracted,
			}, nil
		},
	}
	h := newHandler(repo, &schedulemock.Repo{})

	reqBody := map[string]any{
		"approved_amount":      55000,
		"approved_term_months": 48,
		"nominal_annual_rate":  14.5,
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/proposals/x/approve", mustJSON(reqBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("proposal_id")
	c.SetParamValues(strings.Repeat("d", 32))

	if err := h.ApproveProposal(c); err != nil {
		t.Fatalf("ApproveProposal error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if !strings.Contains(er.Error, "contracted") {
		t.Fatalf("error = %q, want mention of current status", er.Error)
	}
}

func TestContractProposal_Expired(t *testing.T) {
	e := newEchoWithValidator()

	past := time.Now().UTC().AddDate(0, 0, -1)
	repo := &proposalmock.Repo{
		GetByProposalIDForUpdateFn: func(ctx context.Context, proposalID string) (*domain.Proposal, error) {
			return &domain.Proposal{
				ProposalID: proposalID,
				Status:     domain.StatusApproved,
				ExpiresAt:  &past,
			}, nil
		},
	}
	h := newHandler(repo, &schedulemock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodPost, "/proposals/x/contract", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("proposal_id")
	c.SetParamValues(strings.Repeat("d", 32))

	if err := h.ContractProposal(c); err != nil {
		t.Fatalf("ContractProposal error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	var er ErrorResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &er)
	if er.Error != "offer expired" {
		t.Fatalf("error = %q, want %q", er.Error, "offer expired")
	}
}

func TestCancelProposal_NotFound(t *testing.T) {
	e := newEchoWithValidator()
	h := newHandler(&proposalmock.Repo{}, &schedulemock.Repo{}) // lookup returns ErrNotFound

	req := httptest.NewRequest(stdhttp.MethodPost, "/proposals/x/cancel", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("proposal_id")
	c.SetParamValues("missing")

	if err := h.CancelProposal(c); err != nil {
		t.Fatalf("CancelProposal error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetProposal_Success(t *testing.T) {
	e := echo.New()

	repo := &proposalmock.Repo{
		GetByProposalIDFn: func(ctx context.Context, proposalID string) (*domain.Proposal, error) {
			if proposalID != strings.Repeat("p", 32) {
				return nil, errors.New("not found")
			}
			return &domain.Proposal{
				ProposalID:          proposalID,
				CustomerID:          strings.Repeat("c", 32),
				RequestedAmount:     80000,
				RequestedTermMonths: 72,
				Modality:            domain.ModalityEaaS,
				Status:              domain.StatusPending,
				CreatedAt:           time.Now().UTC(),
			}, nil
		},
	}
	h := newHandler(repo, &schedulemock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/proposals/"+strings.Repeat("p", 32), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("proposal_id")
	c.SetParamValues(strings.Repeat("p", 32))

	if err := h.GetProposal(c); err != nil {
		t.Fatalf("GetProposal error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var dto uc.ProposalDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if dto.ProposalID != strings.Repeat("p", 32) {
		t.Fatalf("proposal_id = %s, want %s", dto.ProposalID, strings.Repeat("p", 32))
	}
}

func TestGetProposalSchedule_Success(t *testing.T) {
	e := echo.New()

	repo := &proposalmock.Repo{
		GetByProposalIDFn: func(ctx context.Context, proposalID string) (*domain.Proposal, error) {
			return &domain.Proposal{ID: 3, ProposalID: proposalID, Status: domain.StatusApproved}, nil
		},
	}
	sched := &schedulemock.Repo{
		ListByProposalIDFn: func(ctx context.Context, proposalID uint64) ([]schedule.Entry, error) {
			if proposalID != 3 {
				t.Fatalf("proposalID = %d, want 3", proposalID)
			}
			return []schedule.Entry{
				{ProposalID: 3, InstallmentNo: 1, TotalPayment: 1500},
				{ProposalID: 3, InstallmentNo: 2, TotalPayment: 1500},
			}, nil
		},
	}
	h := newHandler(repo, sched)

	req := httptest.NewRequest(stdhttp.MethodGet, "/proposals/x/schedule", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("proposal_id")
	c.SetParamValues(strings.Repeat("p", 32))

	if err := h.GetProposalSchedule(c); err != nil {
		t.Fatalf("GetProposalSchedule error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Installments []schedule.Entry `json:"installments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(body.Installments) != 2 {
		t.Fatalf("installments = %d, want 2", len(body.Installments))
	}
}

func TestListCustomerProposals_Success(t *testing.T) {
	e := echo.New()

	repo := &proposalmock.Repo{
		ListByCustomerIDFn: func(ctx context.Context, customerID string) ([]domain.Proposal, error) {
			return []domain.Proposal{
				{ProposalID: strings.Repeat("1", 32), CustomerID: customerID, Status: domain.StatusPending},
				{ProposalID: strings.Repeat("2", 32), CustomerID: customerID, Status: domain.StatusCancelled},
			}, nil
		},
	}
	h := newHandler(repo, &schedulemock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/customers/x/proposals", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("customer_id")
	c.SetParamValues(strings.Repeat("c", 32))

	if err := h.ListCustomerProposals(c); err != nil {
		t.Fatalf("ListCustomerProposals error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Proposals []uc.ProposalDTO `json:"proposals"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(body.Proposals) != 2 {
		t.Fatalf("proposals = %d, want 2", len(body.Proposals))
	}
}
