package proposal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "solarfin-backend/internal/domain/proposal"
	"solarfin-backend/internal/domain/schedule"
	"solarfin-backend/internal/domain/uow"
	"solarfin-backend/internal/finance"
	"solarfin-backend/pkg/id"
	"solarfin-backend/pkg/mathutil"

	"go.uber.org/zap"
)

const (
	// Requested amounts above this trigger an approval-workflow record.
	approvalWorkflowThreshold = 100_000.0
	// How long an approved offer stays contractable.
	offerValidityDays = 30
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidFinancedAmount rejects approvals whose approved amount does
	// not exceed the down payment.
	ErrInvalidFinancedAmount = errors.New("financed amount must be positive")
)

// LimitExceededError carries the spending-limit collaborator's verdict.
type LimitExceededError struct {
	Reason    string
	Remaining float64
}

func (e *LimitExceededError) Error() string {
	if e.Reason != "" {
		return "spending limit exceeded: " + e.Reason
	}
	return "spending limit exceeded"
}

// LimitDecision is the spending-limit collaborator's answer.
type LimitDecision struct {
	Allowed   bool
	Remaining float64
	Reason    string
}

// SpendingLimitChecker gates proposal creation; its failure is surfaced.
type SpendingLimitChecker interface {
	Check(ctx context.Context, accountID string, amount float64) (LimitDecision, error)
}

// ApprovalCreator opens an approval-workflow record for large requests.
// Fire-and-forget: failures are logged, never propagated.
type ApprovalCreator interface {
	CreateApproval(ctx context.Context, proposalID string, amount float64) error
}

type Usecase struct {
	repo      domain.Repository
	uow       uow.UnitOfWork
	schedules schedule.Repository
	limits    SpendingLimitChecker
	approvals ApprovalCreator
	logger    *zap.Logger
	now       func() time.Time
}

func NewUsecase(
	repo domain.Repository,
	schedules schedule.Repository,
	tx uow.UnitOfWork,
	limits SpendingLimitChecker,
	approvals ApprovalCreator,
	logger *zap.Logger,
) *Usecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Usecase{
		repo:      repo,
		uow:       tx,
		schedules: schedules,
		limits:    limits,
		approvals: approvals,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the time source, for deterministic expiration tests.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

func validModality(m string) bool {
	switch domain.Modality(m) {
	case domain.ModalityCDCSolar, domain.ModalityLeasing, domain.ModalityEaaS:
		return true
	}
	return false
}

func (u *Usecase) Create(ctx context.Context, in CreateProposalInput) (*ProposalDTO, error) {
	if len(in.CustomerID) != 32 || in.RequestedAmount <= 0 || in.RequestedTermMonths <= 0 {
		return nil, ErrInvalidInput
	}
	if in.DownPayment < 0 || in.DownPayment >= in.RequestedAmount {
		return nil, ErrInvalidInput
	}
	if !validModality(in.Modality) {
		return nil, ErrInvalidInput
	}

	decision, err := u.limits.Check(ctx, in.AccountID, in.RequestedAmount)
	if err != nil {
		return nil, fmt.Errorf("spending limit check: %w", err)
	}
	if !decision.Allowed {
		return nil, &LimitExceededError{Reason: decision.Reason, Remaining: decision.Remaining}
	}

	p := &domain.Proposal{
		ProposalID:          id.NewID32(),
		CustomerID:          in.CustomerID,
		RequestedAmount:     in.RequestedAmount,
		RequestedTermMonths: in.RequestedTermMonths,
		DownPayment:         in.DownPayment,
		Modality:            domain.Modality(in.Modality),
		Status:              domain.StatusPending,
		StatusUpdatedAt:     u.now().UTC(),
	}
	if err := u.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if in.RequestedAmount > approvalWorkflowThreshold {
		if err := u.approvals.CreateApproval(ctx, p.ProposalID, in.RequestedAmount); err != nil {
			// non-gating: the proposal stands even if the workflow is down
			u.logger.Warn("approval workflow creation failed",
				zap.String("op", "proposal.Create"),
				zap.String("proposal_id", p.ProposalID),
				zap.Error(err),
			)
		}
	}

	return toDTO(p), nil
}

// Approve transitions pending → approved, computes the approved terms, and
// replaces the payment schedule. Approving an already-approved proposal
// replays the stored record without regenerating anything.
func (u *Usecase) Approve(ctx context.Context, in ApproveProposalInput) (*ProposalDTO, error) {
	if in.ApprovedAmount <= 0 || in.ApprovedTermMonths <= 0 || in.NominalAnnualRate < 0 {
		return nil, ErrInvalidInput
	}

	var dto *ProposalDTO
	err := u.uow.WithinProposalTx(ctx, in.ProposalID, func(r uow.Repos, p *domain.Proposal) error {
		now := u.now().UTC()
		decision, err := domain.Decide(p, domain.EventApprove, now)
		if err != nil {
			return err
		}
		if decision.Replay {
			dto = toDTO(p)
			return nil
		}

		financed := in.ApprovedAmount - p.DownPayment
		if financed <= 0 {
			return ErrInvalidFinancedAmount
		}
		cet, err := finance.EffectiveAnnualCost(financed, in.NominalAnnualRate, in.ApprovedTermMonths)
		if err != nil {
			return err
		}

		expires := now.AddDate(0, 0, offerValidityDays)
		p.ApprovedAmount = in.ApprovedAmount
		p.ApprovedTermMonths = in.ApprovedTermMonths
		p.NominalAnnualRate = in.NominalAnnualRate
		p.EffectiveAnnualCost = cet
		p.FinancedAmount = financed
		p.Conditions = in.Conditions
		p.ApprovedAt = &now
		p.ExpiresAt = &expires
		p.Status = decision.Next
		p.StatusUpdatedAt = now
		if err := r.Proposals.Save(ctx, p); err != nil {
			return err
		}

		sched := u.simulate(in.Convention, financed, in.NominalAnnualRate, in.ApprovedTermMonths)
		entries := buildScheduleEntries(p.ID, sched, now)
		if err := r.Schedules.ReplaceForProposal(ctx, p.ID, entries); err != nil {
			return err
		}

		dto = toDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

// Contract transitions approved → contracted; expired offers are rejected.
func (u *Usecase) Contract(ctx context.Context, proposalID string) (*ProposalDTO, error) {
	return u.transition(ctx, proposalID, domain.EventContract, func(p *domain.Proposal, now time.Time) {
		p.ContractedAt = &now
	})
}

// Cancel transitions pending/approved → cancelled.
func (u *Usecase) Cancel(ctx context.Context, proposalID string) (*ProposalDTO, error) {
	return u.transition(ctx, proposalID, domain.EventCancel, func(p *domain.Proposal, now time.Time) {
		p.CancelledAt = &now
	})
}

func (u *Usecase) transition(
	ctx context.Context,
	proposalID string,
	ev domain.Event,
	mark func(p *domain.Proposal, now time.Time),
) (*ProposalDTO, error) {
	var dto *ProposalDTO
	err := u.uow.WithinProposalTx(ctx, proposalID, func(r uow.Repos, p *domain.Proposal) error {
		now := u.now().UTC()
		decision, err := domain.Decide(p, ev, now)
		if err != nil {
			return err
		}
		if decision.Replay {
			dto = toDTO(p)
			return nil
		}
		p.Status = decision.Next
		p.StatusUpdatedAt = now
		mark(p, now)
		if err := r.Proposals.Save(ctx, p); err != nil {
			return err
		}
		dto = toDTO(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (u *Usecase) Get(ctx context.Context, proposalID string) (*ProposalDTO, error) {
	p, err := u.repo.GetByProposalID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	return toDTO(p), nil
}

func (u *Usecase) ListByCustomer(ctx context.Context, customerID string) ([]ProposalDTO, error) {
	ps, err := u.repo.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	out := make([]ProposalDTO, 0, len(ps))
	for i := range ps {
		out = append(out, *toDTO(&ps[i]))
	}
	return out, nil
}

func (u *Usecase) GetSchedule(ctx context.Context, proposalID string) ([]schedule.Entry, error) {
	p, err := u.repo.GetByProposalID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	return u.schedules.ListByProposalID(ctx, p.ID)
}

func (u *Usecase) simulate(convention string, principal, ratePct float64, periods int) finance.Schedule {
	if strings.EqualFold(convention, "sac") {
		return finance.SimulateSAC(principal, ratePct, periods)
	}
	return finance.SimulatePrice(principal, ratePct, periods)
}

// buildScheduleEntries materializes installment rows, due monthly starting
// one month after approval.
func buildScheduleEntries(proposalNumericID uint64, sched finance.Schedule, approvedAt time.Time) []schedule.Entry {
	entries := make([]schedule.Entry, 0, len(sched.Installments))
	for _, inst := range sched.Installments {
		entries = append(entries, schedule.Entry{
			ProposalID:       proposalNumericID,
			InstallmentNo:    inst.Number,
			PrincipalPortion: mathutil.Round(inst.PrincipalPortion),
			InterestPortion:  mathutil.Round(inst.InterestPortion),
			TotalPayment:     mathutil.Round(inst.TotalPayment),
			RemainingBalance: mathutil.Round(inst.RemainingBalance),
			DueDate:          approvedAt.AddDate(0, inst.Number, 0),
		})
	}
	return entries
}
