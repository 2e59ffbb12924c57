package ratingdomain

import (
	"strings"

	"github.com/google/uuid"
)

// Status is the workflow state of a match.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDisputed  Status = "disputed"
	StatusCompleted Status = "completed"
)

// ParseStatus normalizes stored status strings. "rated", "finalized" and
// "complete" are older spellings of completed.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "confirmed":
		return StatusConfirmed, nil
	case "disputed":
		return StatusDisputed, nil
	case "completed", "complete", "rated", "finalized":
		return StatusCompleted, nil
	}
	return "", validationf("unknown match status %q", s)
}

// IsTerminal reports whether ratings have been applied.
func (s Status) IsTerminal() bool { return s == StatusCompleted }

// ConfirmationState is one participant's answer to a submitted result.
type ConfirmationState struct {
	UserID    uuid.UUID
	Confirmed bool
	Rejected  bool
}

// Readiness summarizes the confirmation rows of a match.
type Readiness struct {
	Confirmed int
	Rejected  int
	Pending   int
}

// Tally counts confirmations. A row that is neither confirmed nor rejected is pending.
func Tally(states []ConfirmationState) Readiness {
	var r Readiness
	for _, s := range states {
		switch {
		case s.Rejected:
			r.Rejected++
		case s.Confirmed:
			r.Confirmed++
		default:
			r.Pending++
		}
	}
	return r
}

// Ready reports whether every required confirmation is in and none rejected.
func (r Readiness) Ready() bool { return r.Pending == 0 && r.Rejected == 0 }

// ResolveStatus derives the status implied by r. Terminal matches keep their status.
func ResolveStatus(current Status, r Readiness) Status {
	if current.IsTerminal() {
		return current
	}
	switch {
	case r.Rejected > 0:
		return StatusDisputed
	case r.Pending == 0:
		return StatusConfirmed
	default:
		return StatusPending
	}
}

// CanFinalize returns a PreconditionError when a non-terminal match may not
// be finalized yet. Terminal matches are the caller's idempotency concern.
func CanFinalize(current Status, r Readiness) error {
	if current == StatusDisputed || r.Rejected > 0 {
		return preconditionf("match is disputed (%d rejection(s))", r.Rejected)
	}
	if r.Pending > 0 {
		return preconditionf("%d confirmation(s) still pending", r.Pending)
	}
	return nil
}
