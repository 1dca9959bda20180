package service

import (
	"context"
	"log/slog"
	"time"

	"condominium-service/src/models"
	"condominium-service/src/repository"

	"github.com/google/uuid"
)

// ApprovalCorrelator bridges an asynchronous resident approve/deny action
// back to the session that requested it. Each approval is a small state
// machine: pending, then exactly one of approved or denied. The first
// resolver wins; expiry counts as a denial with no responder.
type ApprovalCorrelator struct {
	store *repository.SessionStore
	ttl   time.Duration
}

// NewApprovalCorrelator creates an approval correlator over the session store
func NewApprovalCorrelator(store *repository.SessionStore, ttl time.Duration) *ApprovalCorrelator {
	return &ApprovalCorrelator{
		store: store,
		ttl:   ttl,
	}
}

// Request opens a pending approval for the session. If one is already
// open the existing record is returned instead of a second one; the
// at-most-one invariant is enforced by the store.
func (c *ApprovalCorrelator) Request(sessionID, residentID, message, visitID, detectionID string) (*models.PendingApproval, error) {
	now := time.Now()
	approval := &models.PendingApproval{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		VisitID:     visitID,
		DetectionID: detectionID,
		ResidentID:  residentID,
		Message:     message,
		Decision:    models.DecisionPending,
		CreatedAt:   now,
		ExpiresAt:   now.Add(c.ttl),
	}

	stored, err := c.store.PutApproval(approval)
	if err == models.ErrApprovalExists {
		slog.Info("Reusing open approval for session",
			"session_id", sessionID,
			"approval_id", stored.ID)
		return stored, nil
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Opened pending approval",
		"session_id", sessionID,
		"approval_id", stored.ID,
		"resident_id", residentID,
		"expires_at", stored.ExpiresAt)

	return stored, nil
}

// Resolve transitions the session's approval out of pending. The returned
// bool reports whether this call performed the resolution; when false the
// approval was already resolved (explicitly, by expiry, or by session end)
// and the returned record carries the recorded decision.
func (c *ApprovalCorrelator) Resolve(sessionID string, approved bool, respondedBy string) (*models.PendingApproval, bool, error) {
	decision := models.DecisionDenied
	if approved {
		decision = models.DecisionApproved
	}

	approval, resolved, err := c.store.ResolveApproval(sessionID, decision, respondedBy)
	if err != nil {
		return nil, false, err
	}

	if resolved {
		slog.Info("Resolved pending approval",
			"session_id", sessionID,
			"approval_id", approval.ID,
			"decision", approval.Decision,
			"responded_by", respondedBy)
	}

	return approval, resolved, nil
}

// Run sweeps open approvals past their expiry until the context is
// cancelled. Reads already treat expired approvals as denied; the sweep
// exists so abandoned approvals resolve without waiting for a read.
func (c *ApprovalCorrelator) Run(ctx context.Context) {
	interval := c.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			for _, expired := range c.store.ExpireOpenApprovals(now) {
				slog.Info("Pending approval expired, recorded as denied",
					"session_id", expired.SessionID,
					"approval_id", expired.ID)
			}
		}
	}
}
