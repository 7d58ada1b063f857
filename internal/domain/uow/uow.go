package uow

import (
	"context"

	"solarfin-backend/internal/domain/proposal"
	"solarfin-backend/internal/domain/schedule"
)

type Repos struct {
	Proposals proposal.Repository
	Schedules schedule.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the proposal row first, then pass it in
	WithinProposalTx(ctx context.Context, proposalID string, fn func(r Repos, p *proposal.Proposal) error) error
}
