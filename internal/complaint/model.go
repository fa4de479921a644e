// Package complaint defines the canonical complaint record, its enumerated
// fields, and the lifecycle state machine. Records are produced by the
// upstream municipal service; the only field this console ever mutates is
// Status, and only through the transitions defined here.
package complaint

import "time"

// Status tracks where a complaint is in its lifecycle.
type Status string

const (
	// StatusSubmitted means received and triaged, not yet worked
	StatusSubmitted Status = "submitted"

	// StatusInProgress means an officer has picked it up
	StatusInProgress Status = "in_progress"

	// StatusResolved means closed successfully (terminal)
	StatusResolved Status = "resolved"

	// StatusRejected means closed without action (terminal, requires a reason)
	StatusRejected Status = "rejected"
)

// Urgency is the severity tier assigned by the upstream triage service.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Department is the routing target responsible for a complaint.
type Department string

const (
	DeptRoads       Department = "roads"
	DeptWater       Department = "water"
	DeptSanitation  Department = "sanitation"
	DeptElectricity Department = "electricity"
	DeptSafety      Department = "safety"
	DeptTraffic     Department = "traffic"
	DeptGeneral     Department = "general"
)

// Complaint is a citizen-submitted issue record. Classification fields
// (category, urgency, department, duplicate linkage) come from the upstream
// triage service and are immutable here.
type Complaint struct {
	ID               string     `json:"id"`
	Text             string     `json:"text"`
	Category         string     `json:"category"`
	Urgency          Urgency    `json:"urgency"`
	Department       Department `json:"department"`
	Status           Status     `json:"status"`
	Timestamp        time.Time  `json:"timestamp"`
	Location         string     `json:"location,omitempty"`
	Ward             string     `json:"ward,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	DuplicateGroupID string     `json:"duplicate_group_id,omitempty"`
	DuplicateCount   int        `json:"duplicate_count,omitempty"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	SLAETA           string     `json:"sla_eta,omitempty"`
}

// urgencyRank orders urgencies for priority views. Higher is more urgent.
var urgencyRank = map[Urgency]int{
	UrgencyLow:      0,
	UrgencyMedium:   1,
	UrgencyHigh:     2,
	UrgencyCritical: 3,
}

// Rank returns the priority rank of u. Unknown urgencies rank lowest.
func (u Urgency) Rank() int {
	return urgencyRank[u]
}

// IsUrgent reports whether u is in the dashboard's urgent tier
// (critical or high).
func (u Urgency) IsUrgent() bool {
	return u == UrgencyCritical || u == UrgencyHigh
}

// Terminal reports whether s permits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

// ConsistentRejection reports whether the rejection_reason invariant holds:
// a reason is present if and only if the status is rejected.
func (c *Complaint) ConsistentRejection() bool {
	return (c.RejectionReason != "") == (c.Status == StatusRejected)
}
