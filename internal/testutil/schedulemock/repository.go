package schedulemock

import (
	"context"

	"solarfin-backend/internal/domain/schedule"
)

// Ensure compile-time compliance
var _ schedule.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies schedule.Repository.
type Repo struct {
	ReplaceForProposalFn func(ctx context.Context, proposalID uint64, entries []schedule.Entry) error
	ListByProposalIDFn   func(ctx context.Context, proposalID uint64) ([]schedule.Entry, error)
}

func (m *Repo) ReplaceForProposal(ctx context.Context, proposalID uint64, entries []schedule.Entry) error {
	if m.ReplaceForProposalFn != nil {
		return m.ReplaceForProposalFn(ctx, proposalID, entries)
	}
	return nil
}

func (m *Repo) ListByProposalID(ctx context.Context, proposalID uint64) ([]schedule.Entry, error) {
	if m.ListByProposalIDFn != nil {
		return m.ListByProposalIDFn(ctx, proposalID)
	}
	return nil, nil
}
