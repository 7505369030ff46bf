// Package lifecycle defines the review workflow shared by vehicles and
// declarations. Minor and tourist-vehicle document completeness is not a
// lifecycle: it is recomputed from the document set on every change and
// lives with those models.
package lifecycle

import "frontera/pkg/platform/sentinel"

// Status is a record's position in the review workflow.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three workflow states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether s ends the workflow. Terminal states are locked:
// the original UI silently overwrote them, which made repeat reviews
// indistinguishable from accidents. Re-review goes through Reopen instead.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// validTransitions is the authoritative workflow definition.
var validTransitions = map[Status][]Status{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether the workflow allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition validates a review decision. Callers persist the returned
// status; a transition off a non-pending record fails with ErrInvalidState.
func Transition(current, next Status) (Status, error) {
	if !next.Valid() || next == StatusPending {
		return current, sentinel.ErrInvalidState
	}
	if !current.CanTransitionTo(next) {
		return current, sentinel.ErrInvalidState
	}
	return next, nil
}

// Reopen returns a terminal record to pending for re-review.
func Reopen(current Status) (Status, error) {
	if !current.Terminal() {
		return current, sentinel.ErrInvalidState
	}
	return StatusPending, nil
}
