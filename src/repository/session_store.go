package repository

import (
	"sync"
	"time"

	"condominium-service/src/models"
)

// SessionStore is the in-memory store for concierge sessions and their
// pending approvals. Sessions are process-lifetime state: a crashed
// instance simply lets clients time out, and ended sessions are kept so
// repeated End calls stay idempotent.
//
// All access goes through methods holding the store mutex; callers never
// see live pointers, so the at-most-one-resolution and
// at-most-one-visit-creation invariants hold under concurrent requests.
type SessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*models.Session
	approvals map[string]*models.PendingApproval // keyed by session ID
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*models.Session),
		approvals: make(map[string]*models.PendingApproval),
	}
}

// CreateSession registers a new session record
func (s *SessionStore) CreateSession(session *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.ID] = &copied
}

// DeleteSession discards a session record. Used on the start-session
// failure path so no orphan entry survives a credential issuer outage.
func (s *SessionStore) DeleteSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	delete(s.approvals, sessionID)
}

// GetSession returns a snapshot of the session record
func (s *SessionStore) GetSession(sessionID string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return snapshotSession(session), nil
}

// UpdateSession applies fn to the live session record under the store
// lock. If fn returns an error the record keeps any changes fn already
// made; fn is expected to mutate only on its success path.
func (s *SessionStore) UpdateSession(sessionID string, fn func(*models.Session) error) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	return snapshotSession(session), nil
}

// MergeCollectedData merges a data fragment into the session, last write
// wins on conflict.
func (s *SessionStore) MergeCollectedData(sessionID string, fragment map[string]string) error {
	_, err := s.UpdateSession(sessionID, func(session *models.Session) error {
		if session.CollectedData == nil {
			session.CollectedData = make(map[string]string)
		}
		for key, value := range fragment {
			session.CollectedData[key] = value
		}
		return nil
	})
	return err
}

// PutApproval registers a pending approval for a session. At most one open
// approval may exist per session; a second request while one is open
// returns ErrApprovalExists together with the open record.
func (s *SessionStore) PutApproval(approval *models.PendingApproval) (*models.PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[approval.SessionID]; !ok {
		return nil, models.ErrSessionNotFound
	}

	existing, ok := s.approvals[approval.SessionID]
	if ok && existing.IsOpen(time.Now()) {
		copied := *existing
		return &copied, models.ErrApprovalExists
	}

	copied := *approval
	s.approvals[approval.SessionID] = &copied
	result := copied
	return &result, nil
}

// GetApproval returns a snapshot of the session's approval record, open
// or resolved.
func (s *SessionStore) GetApproval(sessionID string) (*models.PendingApproval, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	approval, ok := s.approvals[sessionID]
	if !ok {
		return nil, models.ErrApprovalNotFound
	}
	copied := *approval
	return &copied, nil
}

// ResolveApproval transitions the session's approval out of pending with
// compare-and-set semantics: the first caller wins, later callers get the
// recorded decision back with resolved=false. An approval already past its
// expiry resolves to denied regardless of the requested decision.
func (s *SessionStore) ResolveApproval(sessionID string, decision models.ApprovalDecision, respondedBy string) (*models.PendingApproval, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	approval, ok := s.approvals[sessionID]
	if !ok {
		return nil, false, models.ErrApprovalNotFound
	}

	now := time.Now()
	if approval.Decision != models.DecisionPending {
		copied := *approval
		return &copied, false, nil
	}

	if !now.Before(approval.ExpiresAt) {
		// Expired while still pending: the timeout wins, recorded as a
		// denial with no responder.
		approval.Decision = models.DecisionDenied
		approval.RespondedAt = &now
		copied := *approval
		return &copied, false, nil
	}

	approval.Decision = decision
	approval.RespondedBy = respondedBy
	approval.RespondedAt = &now
	copied := *approval
	return &copied, true, nil
}

// ExpireOpenApprovals marks every open approval past its expiry as denied
// and returns the affected records. Called by the background sweep; reads
// also treat expired-but-unswept approvals as denied, so the sweep only
// keeps the map tidy.
func (s *SessionStore) ExpireOpenApprovals(now time.Time) []models.PendingApproval {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []models.PendingApproval
	for _, approval := range s.approvals {
		if approval.Decision == models.DecisionPending && !now.Before(approval.ExpiresAt) {
			stamped := now
			approval.Decision = models.DecisionDenied
			approval.RespondedAt = &stamped
			expired = append(expired, *approval)
		}
	}
	return expired
}

// ActiveSessionCount reports how many sessions currently accept tool calls
func (s *SessionStore) ActiveSessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, session := range s.sessions {
		if !session.IsTerminal() {
			count++
		}
	}
	return count
}

func snapshotSession(session *models.Session) *models.Session {
	copied := *session
	if session.CollectedData != nil {
		copied.CollectedData = make(map[string]string, len(session.CollectedData))
		for key, value := range session.CollectedData {
			copied.CollectedData[key] = value
		}
	}
	return &copied
}
