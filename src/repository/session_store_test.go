package repository

import (
	"sync"
	"testing"
	"time"

	"condominium-service/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storedSession(t *testing.T, store *SessionStore, id string) *models.Session {
	t.Helper()
	session := &models.Session{
		ID:            id,
		State:         models.SessionActive,
		CollectedData: make(map[string]string),
		CreatedAt:     time.Now(),
	}
	store.CreateSession(session)
	return session
}

func openApproval(sessionID string, ttl time.Duration) *models.PendingApproval {
	now := time.Now()
	return &models.PendingApproval{
		ID:        "a-" + sessionID,
		SessionID: sessionID,
		Decision:  models.DecisionPending,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestGetSessionReturnsSnapshot(t *testing.T) {
	store := NewSessionStore()
	storedSession(t, store, "s1")

	require.NoError(t, store.MergeCollectedData("s1", map[string]string{"visitorName": "Ana"}))

	snapshot, err := store.GetSession("s1")
	require.NoError(t, err)

	// Mutating the snapshot must not leak into the stored record.
	snapshot.CollectedData["visitorName"] = "Eve"
	snapshot.State = models.SessionEnded

	fresh, err := store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", fresh.CollectedData["visitorName"])
	assert.Equal(t, models.SessionActive, fresh.State)
}

func TestGetSessionNotFound(t *testing.T) {
	store := NewSessionStore()
	_, err := store.GetSession("missing")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	_, err = store.UpdateSession("missing", func(*models.Session) error { return nil })
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestDeleteSessionRemovesApproval(t *testing.T) {
	store := NewSessionStore()
	storedSession(t, store, "s1")
	_, err := store.PutApproval(openApproval("s1", time.Minute))
	require.NoError(t, err)

	store.DeleteSession("s1")

	_, err = store.GetSession("s1")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = store.GetApproval("s1")
	assert.ErrorIs(t, err, models.ErrApprovalNotFound)
}

func TestMergeCollectedDataLastWriteWins(t *testing.T) {
	store := NewSessionStore()
	storedSession(t, store, "s1")

	require.NoError(t, store.MergeCollectedData("s1", map[string]string{"plate": "AAAA11", "rut": "1-9"}))
	require.NoError(t, store.MergeCollectedData("s1", map[string]string{"plate": "BBBB22"}))

	session, err := store.GetSession("s1")
	require.NoError(t, err)
	assert.Equal(t, "BBBB22", session.CollectedData["plate"])
	assert.Equal(t, "1-9", session.CollectedData["rut"])
}

func TestPutApprovalEnforcesSingleOpenApproval(t *testing.T) {
	store := NewSessionStore()
	storedSession(t, store, "s1")

	first, err := store.PutApproval(openApproval("s1", time.Minute))
	require.NoError(t, err)

	second := openApproval("s1", time.Minute)
	second.ID = "a-other"
	existing, err := store.PutApproval(second)
	assert.ErrorIs(t, err, models.ErrApprovalExists)
	assert.Equal(t, first.ID, existing.ID)
}

func TestPutApprovalRequiresSession(t *testing.T) {
	store := NewSessionStore()
	_, err := store.PutApproval(openApproval("ghost", time.Minute))
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestPutApprovalReplacesResolvedOne(t *testing.T) {
	store := NewSessionStore()
	storedSession(t, store, "s1")

	_, err := store.PutApproval(openApproval("s1", time.Minute))
	require.NoError(t, err)
	_, resolved, err := store.ResolveApproval("s1", models.DecisionDenied, "R1")
	require.NoError(t, err)
	require.True(t, resolved)

	replacement := openApproval("s1", time.Minute)
	replacement.ID = "a-next"
	stored, err := store.PutApproval(replacement)
	require.NoError(t, err)
	assert.Equal(t, "a-next", stored.ID)
	assert.Equal(t, models.DecisionPending, stored.Decision)
}

func TestResolveApprovalFirstWriterWins(t *testing.T) {
	store := NewSessionStore()
	storedSession(t, store, "s1")
	_, err := store.PutApproval(openApproval("s1", time.Minute))
	require.NoError(t, err)

	const writers = 16
	var wg sync.WaitGroup
	results := make([]bool, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decision := models.DecisionApproved
			if i%2 == 1 {
				decision = models.DecisionDenied
			}
			_, resolved, err := store.ResolveApproval("s1", decision, "R1")
			if err == nil {
				results[i] = resolved
			}
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, won := range results {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	approval, err := store.GetApproval("s1")
	require.NoError(t, err)
	assert.NotEqual(t, models.DecisionPending, approval.Decision)
	assert.NotNil(t, approval.RespondedAt)
}

func TestResolveExpiredApprovalRecordsDenial(t *testing.T) {
	store := NewSessionStore()
	storedSession(t, store, "s1")
	_, err := store.PutApproval(openApproval("s1", -time.Second))
	require.NoError(t, err)

	approval, resolved, err := store.ResolveApproval("s1", models.DecisionApproved, "R1")
	require.NoError(t, err)
	assert.False(t, resolved)
	assert.Equal(t, models.DecisionDenied, approval.Decision)
	assert.Empty(t, approval.RespondedBy)
}

func TestExpireOpenApprovals(t *testing.T) {
	store := NewSessionStore()
	storedSession(t, store, "s1")
	storedSession(t, store, "s2")
	_, err := store.PutApproval(openApproval("s1", -time.Second))
	require.NoError(t, err)
	_, err = store.PutApproval(openApproval("s2", time.Hour))
	require.NoError(t, err)

	expired := store.ExpireOpenApprovals(time.Now())
	require.Len(t, expired, 1)
	assert.Equal(t, "s1", expired[0].SessionID)
	assert.Equal(t, models.DecisionDenied, expired[0].Decision)

	still, err := store.GetApproval("s2")
	require.NoError(t, err)
	assert.Equal(t, models.DecisionPending, still.Decision)

	// Second sweep finds nothing left to do.
	assert.Empty(t, store.ExpireOpenApprovals(time.Now()))
}

func TestActiveSessionCount(t *testing.T) {
	store := NewSessionStore()
	storedSession(t, store, "s1")
	storedSession(t, store, "s2")

	_, err := store.UpdateSession("s2", func(session *models.Session) error {
		return session.Transition(models.SessionEnded)
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.ActiveSessionCount())
}
