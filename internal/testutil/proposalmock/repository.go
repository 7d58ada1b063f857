package proposalmock

import (
	"context"

	domain "solarfin-backend/internal/domain/proposal"
)

// Ensure compile-time compliance
var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Fill in the function fields a test needs; the rest return zero values.
type Repo struct {
	CreateFn                   func(ctx context.Context, p *domain.Proposal) error
	GetByProposalIDFn          func(ctx context.Context, proposalID string) (*domain.Proposal, error)
	GetByProposalIDForUpdateFn func(ctx context.Context, proposalID string) (*domain.Proposal, error)
	ListByCustomerIDFn         func(ctx context.Context, customerID string) ([]domain.Proposal, error)
	SaveFn                     func(ctx context.Context, p *domain.Proposal) error
}

func (m *Repo) Create(ctx context.Context, p *domain.Proposal) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByProposalID(ctx context.Context, proposalID string) (*domain.Proposal, error) {
	if m.GetByProposalIDFn != nil {
		return m.GetByProposalIDFn(ctx, proposalID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByProposalIDForUpdate(ctx context.Context, proposalID string) (*domain.Proposal, error) {
	if m.GetByProposalIDForUpdateFn != nil {
		return m.GetByProposalIDForUpdateFn(ctx, proposalID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByCustomerID(ctx context.Context, customerID string) ([]domain.Proposal, error) {
	if m.ListByCustomerIDFn != nil {
		return m.ListByCustomerIDFn(ctx, customerID)
	}
	return nil, nil
}

func (m *Repo) Save(ctx context.Context, p *domain.Proposal) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
