package complaint

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"submitted to in_progress", StatusSubmitted, StatusInProgress, true},
		{"submitted to resolved", StatusSubmitted, StatusResolved, true},
		{"submitted to rejected", StatusSubmitted, StatusRejected, true},
		{"in_progress to resolved", StatusInProgress, StatusResolved, true},
		{"in_progress to rejected", StatusInProgress, StatusRejected, true},
		{"in_progress back to submitted", StatusInProgress, StatusSubmitted, false},
		{"resolved to in_progress", StatusResolved, StatusInProgress, false},
		{"resolved to rejected", StatusResolved, StatusRejected, false},
		{"rejected to in_progress", StatusRejected, StatusInProgress, false},
		{"rejected to resolved", StatusRejected, StatusResolved, false},
		{"self transition", StatusSubmitted, StatusSubmitted, false},
		{"unknown source", Status("archived"), StatusResolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTerminalStatesRejectEverything(t *testing.T) {
	t.Parallel()

	all := []Status{StatusSubmitted, StatusInProgress, StatusResolved, StatusRejected}
	for _, from := range []Status{StatusResolved, StatusRejected} {
		if !from.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", from)
		}
		for _, to := range all {
			if CanTransition(from, to) {
				t.Errorf("CanTransition(%s, %s) = true, want false (terminal)", from, to)
			}
		}
	}
}

func TestValidateTransition_ReasonRequired(t *testing.T) {
	t.Parallel()

	err := ValidateTransition(StatusSubmitted, StatusRejected, "")
	if !errors.Is(err, ErrReasonRequired) {
		t.Errorf("err = %v, want ErrReasonRequired", err)
	}

	if err := ValidateTransition(StatusSubmitted, StatusRejected, "duplicate of 42"); err != nil {
		t.Errorf("ValidateTransition with reason = %v, want nil", err)
	}
}

func TestValidateTransition_Invalid(t *testing.T) {
	t.Parallel()

	err := ValidateTransition(StatusResolved, StatusInProgress, "")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestConsistentRejection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    Complaint
		want bool
	}{
		{"rejected with reason", Complaint{Status: StatusRejected, RejectionReason: "out of scope"}, true},
		{"rejected without reason", Complaint{Status: StatusRejected}, false},
		{"resolved with reason", Complaint{Status: StatusResolved, RejectionReason: "stray"}, false},
		{"submitted without reason", Complaint{Status: StatusSubmitted}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.c.ConsistentRejection(); got != tt.want {
				t.Errorf("ConsistentRejection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUrgencyRank(t *testing.T) {
	t.Parallel()

	order := []Urgency{UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Errorf("Rank(%s) = %d not above Rank(%s) = %d",
				order[i], order[i].Rank(), order[i-1], order[i-1].Rank())
		}
	}
	if Urgency("unknown").Rank() != 0 {
		t.Errorf("unknown urgency rank = %d, want 0", Urgency("unknown").Rank())
	}
}
