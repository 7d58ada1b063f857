package proposal

import "context"

type Repository interface {
	Create(ctx context.Context, p *Proposal) error
	GetByProposalID(ctx context.Context, proposalID string) (*Proposal, error)
	// GetByProposalIDForUpdate locks the row for the duration of the
	// surrounding transaction to serialize concurrent transitions.
	GetByProposalIDForUpdate(ctx context.Context, proposalID string) (*Proposal, error)
	ListByCustomerID(ctx context.Context, customerID string) ([]Proposal, error)
	Save(ctx context.Context, p *Proposal) error
}
