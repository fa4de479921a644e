package complaint

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a status change is not permitted by
// the lifecycle state machine. Wrapped errors carry the from/to pair.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrReasonRequired is returned when a transition to rejected carries no
// rejection reason.
var ErrReasonRequired = errors.New("rejection requires a reason")

// transitions is the full set of allowed status changes. Resolved and
// rejected are terminal.
var transitions = map[Status][]Status{
	StatusSubmitted:  {StatusInProgress, StatusResolved, StatusRejected},
	StatusInProgress: {StatusResolved, StatusRejected},
}

// CanTransition reports whether from -> to is an allowed lifecycle change.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateTransition checks a proposed status change, including the
// rejection-reason requirement. It must pass before any request is issued;
// the server re-validates authoritatively.
func ValidateTransition(from, to Status, reason string) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if to == StatusRejected && reason == "" {
		return ErrReasonRequired
	}
	return nil
}
