package schedule

import "context"

type Repository interface {
	// ReplaceForProposal discards every existing entry for the proposal and
	// creates the given ones. A re-approval always replaces wholesale.
	ReplaceForProposal(ctx context.Context, proposalID uint64, entries []Entry) error
	ListByProposalID(ctx context.Context, proposalID uint64) ([]Entry, error)
}
