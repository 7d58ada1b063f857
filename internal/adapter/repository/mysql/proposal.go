package mysql

import (
	"context"

	proposalDomain "solarfin-backend/internal/domain/proposal"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProposalRepository struct{ db *gorm.DB }

func NewProposalRepository(db *gorm.DB) *ProposalRepository { return &ProposalRepository{db: db} }

func (r *ProposalRepository) Create(ctx context.Context, p *proposalDomain.Proposal) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProposalRepository) Save(ctx context.Context, p *proposalDomain.Proposal) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProposalRepository) GetByProposalID(ctx context.Context, proposalID string) (*proposalDomain.Proposal, error) {
	var out proposalDomain.Proposal
	res := r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).First(&out)
	return &out, res.Error
}

// GetByProposalIDForUpdate locks the row (SELECT ... FOR UPDATE) so two
// concurrent transitions cannot both pass the idempotency check.
func (r *ProposalRepository) GetByProposalIDForUpdate(ctx context.Context, proposalID string) (*proposalDomain.Proposal, error) {
	var out proposalDomain.Proposal
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("proposal_id = ?", proposalID).
		First(&out)
	return &out, res.Error
}

func (r *ProposalRepository) ListByCustomerID(ctx context.Context, customerID string) ([]proposalDomain.Proposal, error) {
	var out []proposalDomain.Proposal
	res := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}
