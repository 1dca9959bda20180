package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTransitions(t *testing.T) {
	cases := []struct {
		from SessionState
		to   SessionState
		ok   bool
	}{
		{SessionCreated, SessionActive, true},
		{SessionCreated, SessionEnded, true},
		{SessionCreated, SessionAwaitingApproval, false},
		{SessionActive, SessionAwaitingApproval, true},
		{SessionActive, SessionEnded, true},
		{SessionActive, SessionCreated, false},
		{SessionAwaitingApproval, SessionActive, true},
		{SessionAwaitingApproval, SessionEnded, true},
		{SessionEnded, SessionActive, false},
		{SessionEnded, SessionEnded, false},
	}

	for _, tc := range cases {
		session := Session{State: tc.from}
		err := session.Transition(tc.to)
		if tc.ok {
			assert.NoErrorf(t, err, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.to, session.State)
		} else {
			assert.ErrorIsf(t, err, ErrInvalidTransition, "%s -> %s", tc.from, tc.to)
			assert.Equal(t, tc.from, session.State)
		}
	}
}

func TestHasVisitData(t *testing.T) {
	session := Session{CollectedData: map[string]string{}}
	assert.False(t, session.HasVisitData())

	session.CollectedData[DataVisitorName] = "Ana Pérez"
	assert.False(t, session.HasVisitData())

	session.CollectedData[DataDestinationUnit] = "303"
	assert.True(t, session.HasVisitData())
}

func TestApprovalEffectiveDecision(t *testing.T) {
	now := time.Now()
	approval := PendingApproval{
		Decision:  DecisionPending,
		ExpiresAt: now.Add(time.Minute),
	}

	assert.True(t, approval.IsOpen(now))
	assert.Equal(t, DecisionPending, approval.EffectiveDecision(now))

	// Past expiry a pending approval reads as denied even before any write.
	later := now.Add(2 * time.Minute)
	assert.False(t, approval.IsOpen(later))
	assert.Equal(t, DecisionDenied, approval.EffectiveDecision(later))

	approval.Decision = DecisionApproved
	require.Equal(t, DecisionApproved, approval.EffectiveDecision(later))
	assert.False(t, approval.IsOpen(later))
}
