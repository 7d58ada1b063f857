package proposal

import "time"

// Event is a lifecycle command applied to a proposal.
type Event string

const (
	EventApprove  Event = "approve"
	EventContract Event = "contract"
	EventCancel   Event = "cancel"
)

// Decision is the outcome of applying an Event to a proposal status.
// Replay means the proposal is already in the target state: the caller must
// return the existing record without re-executing side effects.
type Decision struct {
	Next   Status
	Replay bool
}

// Decide is the pure transition function for the proposal lifecycle.
// It never mutates the proposal; the usecase layer performs the side effects
// (persistence, schedule regeneration) that a non-replay decision calls for.
func Decide(p *Proposal, ev Event, now time.Time) (Decision, error) {
	switch ev {
	case EventApprove:
		switch p.Status {
		case StatusPending:
			return Decision{Next: StatusApproved}, nil
		case StatusApproved:
			return Decision{Next: StatusApproved, Replay: true}, nil
		default:
			return Decision{}, &StateConflictError{Op: "approve", Current: p.Status}
		}
	case EventContract:
		switch p.Status {
		case StatusApproved:
			if p.ExpiresAt != nil && now.After(*p.ExpiresAt) {
				return Decision{}, ErrExpired
			}
			return Decision{Next: StatusContracted}, nil
		case StatusContracted:
			return Decision{Next: StatusContracted, Replay: true}, nil
		default:
			return Decision{}, &StateConflictError{Op: "contract", Current: p.Status}
		}
	case EventCancel:
		switch p.Status {
		case StatusPending, StatusApproved:
			return Decision{Next: StatusCancelled}, nil
		case StatusCancelled:
			return Decision{Next: StatusCancelled, Replay: true}, nil
		default:
			return Decision{}, &StateConflictError{Op: "cancel", Current: p.Status}
		}
	}
	return Decision{}, &StateConflictError{Op: string(ev), Current: p.Status}
}
