package models

import (
	"fmt"
	"time"
)

// SessionState represents the lifecycle state of a concierge session
type SessionState string

const (
	SessionCreated          SessionState = "created"
	SessionActive           SessionState = "active"
	SessionAwaitingApproval SessionState = "awaiting_approval"
	SessionEnded            SessionState = "ended"
)

// SessionSource identifies which channel initiated a session
type SessionSource string

const (
	SourceWeb SessionSource = "web"
	SourceHub SessionSource = "hub"
)

// Session represents one concierge voice interaction from start to end.
// CollectedData accumulates fields merged from tool calls (visitor name,
// rut, plate, destination unit, resident response); last write wins.
type Session struct {
	ID            string            `json:"session_id"`
	State         SessionState      `json:"state"`
	Source        SessionSource     `json:"source"`
	HubID         string            `json:"hub_id,omitempty"`
	SocketID      string            `json:"socket_id,omitempty"`
	CollectedData map[string]string `json:"collected_data"`
	VisitID       string            `json:"visit_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	ExpiresAt     time.Time         `json:"expires_at"`
	EndedAt       *time.Time        `json:"ended_at,omitempty"`

	// End result, recorded by the first End call so repeats return the
	// same figures without side effects.
	FinalStatus     string `json:"final_status,omitempty"`
	DurationSeconds int64  `json:"duration_seconds,omitempty"`
	VisitCreated    bool   `json:"-"`
}

// validTransitions enumerates every legal session state change. Anything
// not listed here is rejected by Transition.
var validTransitions = map[SessionState][]SessionState{
	SessionCreated:          {SessionActive, SessionEnded},
	SessionActive:           {SessionAwaitingApproval, SessionEnded},
	SessionAwaitingApproval: {SessionActive, SessionEnded},
}

// Transition moves the session to the given state, rejecting illegal moves.
func (s *Session) Transition(to SessionState) error {
	for _, allowed := range validTransitions[s.State] {
		if allowed == to {
			s.State = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, to)
}

// IsTerminal reports whether the session accepts no further tool execution
func (s *Session) IsTerminal() bool {
	return s.State == SessionEnded
}

// Keys used in Session.CollectedData
const (
	DataVisitorName      = "visitorName"
	DataVisitorRut       = "rut"
	DataVisitorPlate     = "plate"
	DataDestinationUnit  = "destinationUnit"
	DataResidentResponse = "residentResponse"
)

// HasVisitData reports whether enough fields were collected to constitute
// a valid visit: destination unit plus visitor identity at minimum.
func (s *Session) HasVisitData() bool {
	return s.CollectedData[DataDestinationUnit] != "" && s.CollectedData[DataVisitorName] != ""
}
