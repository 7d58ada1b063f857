package mysql

import (
	"context"

	"solarfin-backend/internal/domain/proposal"
	"solarfin-backend/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{
			Proposals: &ProposalRepository{db: tx},
			Schedules: &ScheduleRepository{db: tx},
		}
		return fn(r)
	})
}

func (u *GormUoW) WithinProposalTx(ctx context.Context, proposalID string, fn func(r uow.Repos, p *proposal.Proposal) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{
			Proposals: &ProposalRepository{db: tx},
			Schedules: &ScheduleRepository{db: tx},
		}
		// lock the proposal row up-front to prevent races
		p, err := r.Proposals.GetByProposalIDForUpdate(ctx, proposalID)
		if err != nil {
			return err
		}
		return fn(r, p)
	})
}
