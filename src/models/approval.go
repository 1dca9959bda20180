package models

import "time"

// ApprovalDecision represents the resolution state of a pending approval
type ApprovalDecision string

const (
	DecisionPending  ApprovalDecision = "pending"
	DecisionApproved ApprovalDecision = "approved"
	DecisionDenied   ApprovalDecision = "denied"
)

// PendingApproval represents an outstanding resident yes/no decision
// correlated to a concierge session. At most one open approval exists per
// session at a time. An approval whose expiry has elapsed while still
// pending counts as denied with RespondedBy empty.
type PendingApproval struct {
	ID          string           `json:"approval_id"`
	SessionID   string           `json:"session_id"`
	VisitID     string           `json:"visit_id,omitempty"`
	DetectionID string           `json:"detection_id,omitempty"`
	ResidentID  string           `json:"resident_id"`
	Message     string           `json:"message"`
	Decision    ApprovalDecision `json:"decision"`
	RespondedBy string           `json:"responded_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	ExpiresAt   time.Time        `json:"expires_at"`
	RespondedAt *time.Time       `json:"responded_at,omitempty"`
}

// IsOpen reports whether the approval still accepts a resolution at the
// given instant.
func (a *PendingApproval) IsOpen(now time.Time) bool {
	return a.Decision == DecisionPending && now.Before(a.ExpiresAt)
}

// EffectiveDecision returns the decision as observed at the given instant:
// a pending approval past its expiry reads as denied without requiring a
// prior explicit write.
func (a *PendingApproval) EffectiveDecision(now time.Time) ApprovalDecision {
	if a.Decision == DecisionPending && !now.Before(a.ExpiresAt) {
		return DecisionDenied
	}
	return a.Decision
}
