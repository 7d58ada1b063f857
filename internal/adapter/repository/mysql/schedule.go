package mysql

import (
	"context"

	scheduleDomain "solarfin-backend/internal/domain/schedule"

	"gorm.io/gorm"
)

type ScheduleRepository struct{ db *gorm.DB }

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository { return &ScheduleRepository{db: db} }

// ReplaceForProposal discards the proposal's existing entries and writes the
// new ones. Runs in its own transaction unless the db handle is already
// transactional (as it is under the UoW).
func (r *ScheduleRepository) ReplaceForProposal(ctx context.Context, proposalID uint64, entries []scheduleDomain.Entry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("proposal_id = ?", proposalID).
			Delete(&scheduleDomain.Entry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

func (r *ScheduleRepository) ListByProposalID(ctx context.Context, proposalID uint64) ([]scheduleDomain.Entry, error) {
	var out []scheduleDomain.Entry
	res := r.db.WithContext(ctx).
		Where("proposal_id = ?", proposalID).
		Order("installment_no ASC").
		Find(&out)
	return out, res.Error
}
