// Package audit records the outcome of every lifecycle command the console
// dispatches. The trail is local operator history; the upstream service
// remains the authority on complaint state.
package audit

import (
	"context"
	"time"

	"github.com/linnemanlabs/cityline/internal/complaint"
)

// Outcome classifies how a command ended.
type Outcome string

const (
	// OutcomeApplied means the upstream confirmed the change
	OutcomeApplied Outcome = "applied"

	// OutcomeRejected means client-side validation blocked the command
	// before any request was sent
	OutcomeRejected Outcome = "rejected"

	// OutcomeFailed means the upstream request was sent and failed
	OutcomeFailed Outcome = "failed"
)

// Entry is one recorded lifecycle command.
type Entry struct {
	ID          string           `json:"id"`
	ComplaintID string           `json:"complaint_id"`
	Actor       string           `json:"actor"`
	FromStatus  complaint.Status `json:"from_status"`
	ToStatus    complaint.Status `json:"to_status"`
	Reason      string           `json:"reason,omitempty"`
	Outcome     Outcome          `json:"outcome"`
	Error       string           `json:"error,omitempty"`
	At          time.Time        `json:"at"`
}

// Store is the persistence interface for the command trail.
type Store interface {
	Append(ctx context.Context, e *Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}
