package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"condominium-service/src/models"
	"condominium-service/src/repository"
	"condominium-service/src/schemas"
	"condominium-service/src/ws"

	"github.com/google/uuid"
)

// EventPusher delivers server events to the websocket client that
// initiated a session. Delivery is best effort.
type EventPusher interface {
	Push(socketID string, event ws.Event) bool
}

// ConciergeService orchestrates the digital concierge session lifecycle:
// start, tool execution, approval correlation, and teardown with its
// visit-creation side effect.
type ConciergeService struct {
	store     *repository.SessionStore
	issuer    CredentialIssuer
	tools     *ToolExecutor
	approvals *ApprovalCorrelator
	units     UnitDirectory
	visits    VisitRecorder
	events    EventPusher
	audit     AuditRecorder
}

// NewConciergeService wires the concierge orchestrator
func NewConciergeService(
	store *repository.SessionStore,
	issuer CredentialIssuer,
	tools *ToolExecutor,
	approvals *ApprovalCorrelator,
	units UnitDirectory,
	visits VisitRecorder,
	events EventPusher,
	audit AuditRecorder,
) *ConciergeService {
	return &ConciergeService{
		store:     store,
		issuer:    issuer,
		tools:     tools,
		approvals: approvals,
		units:     units,
		visits:    visits,
		events:    events,
		audit:     audit,
	}
}

// StartSession creates a session, mints an ephemeral credential for it and
// activates it. If the credential provider cannot be reached the session
// record is discarded so no orphan entry survives the failure.
func (s *ConciergeService) StartSession(ctx context.Context, req schemas.StartSessionRequest) (*schemas.StartSessionResponse, error) {
	source := models.SourceWeb
	if req.Source == string(models.SourceHub) || req.HubID != "" {
		source = models.SourceHub
	}

	session := &models.Session{
		ID:            uuid.New().String(),
		State:         models.SessionCreated,
		Source:        source,
		HubID:         req.HubID,
		SocketID:      req.SocketID,
		CollectedData: make(map[string]string),
		CreatedAt:     time.Now(),
	}
	s.store.CreateSession(session)

	credential, err := s.issuer.IssueCredential(ctx, session.ID)
	if err != nil {
		s.store.DeleteSession(session.ID)
		slog.Error("Failed to issue session credential",
			"session_id", session.ID,
			"error", err)
		return nil, schemas.NewServiceUnavailableError(
			"cannot start concierge session: credential provider unavailable",
			"/concierge/sessions",
		)
	}

	_, err = s.store.UpdateSession(session.ID, func(live *models.Session) error {
		live.ExpiresAt = credential.ExpiresAt
		return live.Transition(models.SessionActive)
	})
	if err != nil {
		s.store.DeleteSession(session.ID)
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to activate session: %v", err),
			"/concierge/sessions",
		)
	}

	slog.Info("Started concierge session",
		"session_id", session.ID,
		"source", source,
		"hub_id", req.HubID)

	return &schemas.StartSessionResponse{
		SessionID:      session.ID,
		EphemeralToken: credential.Token,
		ExpiresAt:      credential.ExpiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// GetHouseContext summarizes a unit's recent visit history as text used
// to prime the assistant. Side-effect free.
func (s *ConciergeService) GetHouseContext(ctx context.Context, houseNumber string) (*schemas.HouseContextResponse, error) {
	instance := "/concierge/house-context/" + houseNumber

	if _, err := s.units.GetUnitByNumber(ctx, houseNumber); err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			return nil, schemas.NewNotFoundError(
				fmt.Sprintf("unit %s not found", houseNumber), instance)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to look up unit: %v", err), instance)
	}

	visits, err := s.visits.ListRecentVisitsByUnit(ctx, houseNumber, 5)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to load visit history: %v", err), instance)
	}

	if len(visits) == 0 {
		return &schemas.HouseContextResponse{
			Context: fmt.Sprintf("Unit %s has no prior visit records.", houseNumber),
		}, nil
	}

	lines := make([]string, 0, len(visits))
	for _, visit := range visits {
		lines = append(lines, fmt.Sprintf("%s (%s, %s)",
			visit.VisitorName, visit.Status, visit.CreatedAt.Format("2006-01-02")))
	}

	return &schemas.HouseContextResponse{
		Context: fmt.Sprintf("Unit %s recent visits: %s.", houseNumber, strings.Join(lines, "; ")),
	}, nil
}

// ExecuteTool runs one assistant-invoked tool against the session and
// merges any collectedData fragment the handler produced.
func (s *ConciergeService) ExecuteTool(ctx context.Context, sessionID string, req schemas.ExecuteToolRequest) (*schemas.ToolResult, error) {
	instance := "/concierge/sessions/" + sessionID + "/execute-tool"

	session, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, schemas.NewNotFoundError(
			fmt.Sprintf("session %s not found", sessionID), instance)
	}
	if session.IsTerminal() {
		return nil, schemas.TerminalSessionError(
			"session has ended, no further tool execution accepted", instance)
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, schemas.TerminalSessionError("session expired", instance)
	}

	result, fragment, err := s.tools.Execute(ctx, session, req.ToolName, req.Parameters)
	if err != nil {
		return nil, err
	}

	// The merge, the VisitID write and the state transition apply as one
	// guarded update that re-checks the terminal state, so an End that ran
	// while the handler was executing acts as a barrier: the straddling
	// call is rejected and leaves no session state behind for End's visit
	// flush to double-create from.
	_, err = s.store.UpdateSession(sessionID, func(live *models.Session) error {
		if live.IsTerminal() {
			return models.ErrSessionEnded
		}
		if len(fragment) > 0 {
			if live.CollectedData == nil {
				live.CollectedData = make(map[string]string)
			}
			for key, value := range fragment {
				live.CollectedData[key] = value
			}
		}
		if result.Success {
			if visitID := result.Data["visit_id"]; visitID != "" {
				live.VisitID = visitID
			}
			if result.Data["awaiting_approval"] == "true" {
				// Best effort; an already-awaiting session stays put.
				_ = live.Transition(models.SessionAwaitingApproval)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrSessionEnded) {
			return nil, schemas.TerminalSessionError(
				"session ended while the tool was executing", instance)
		}
		return nil, schemas.NewNotFoundError(
			fmt.Sprintf("session %s not found", sessionID), instance)
	}

	slog.Info("Executed concierge tool",
		"session_id", sessionID,
		"tool", req.ToolName,
		"success", result.Success)

	return &result, nil
}

// IsSessionActive reports whether execute-tool calls are currently
// accepted for the session. An expired open approval reads as denied here
// without requiring a prior explicit write.
func (s *ConciergeService) IsSessionActive(sessionID string) *schemas.SessionStatusResponse {
	session, err := s.store.GetSession(sessionID)
	if err != nil {
		return &schemas.SessionStatusResponse{Active: false, Reason: "not_found"}
	}
	if session.IsTerminal() {
		return &schemas.SessionStatusResponse{Active: false, Reason: "ended"}
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return &schemas.SessionStatusResponse{Active: false, Reason: "expired"}
	}
	return &schemas.SessionStatusResponse{Active: true}
}

// RespondToVisitor resolves the session's open pending approval with the
// resident's decision. Idempotent: responding to an already-resolved
// approval succeeds without side effects and reports the recorded outcome.
func (s *ConciergeService) RespondToVisitor(ctx context.Context, sessionID string, approved bool, residentID string) (*schemas.RespondResponse, error) {
	instance := "/concierge/sessions/" + sessionID + "/respond"

	if _, err := s.store.GetSession(sessionID); err != nil {
		return nil, schemas.NewNotFoundError(
			fmt.Sprintf("session %s not found", sessionID), instance)
	}

	approval, resolved, err := s.approvals.Resolve(sessionID, approved, residentID)
	if err != nil {
		if errors.Is(err, models.ErrApprovalNotFound) {
			return nil, schemas.NewNotFoundError(
				"no pending approval exists for this session", instance)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to resolve approval: %v", err), instance)
	}

	if !resolved {
		return &schemas.RespondResponse{
			Success: true,
			Message: fmt.Sprintf("approval already resolved: %s", approval.EffectiveDecision(time.Now())),
		}, nil
	}

	s.recordDecision(ctx, sessionID, approval)

	message := "visitor denied"
	if approval.Decision == models.DecisionApproved {
		message = "visitor approved"
	}
	return &schemas.RespondResponse{Success: true, Message: message}, nil
}

// recordDecision applies the side effects of a freshly resolved approval:
// collectedData update, visit status, websocket event, audit entry.
func (s *ConciergeService) recordDecision(ctx context.Context, sessionID string, approval *models.PendingApproval) {
	approvedValue := "denied"
	visitStatus := models.VisitDenied
	if approval.Decision == models.DecisionApproved {
		approvedValue = "approved"
		visitStatus = models.VisitApproved
	}

	session, err := s.store.UpdateSession(sessionID, func(live *models.Session) error {
		if live.CollectedData == nil {
			live.CollectedData = make(map[string]string)
		}
		live.CollectedData[models.DataResidentResponse] = approvedValue
		if live.State == models.SessionAwaitingApproval {
			_ = live.Transition(models.SessionActive)
		}
		return nil
	})
	if err != nil {
		return
	}

	visitID := approval.VisitID
	if visitID == "" {
		visitID = session.VisitID
	}
	if visitID != "" {
		if err := s.visits.UpdateVisitStatus(ctx, visitID, visitStatus); err != nil {
			slog.Error("Failed to update visit status after resident decision",
				"visit_id", visitID,
				"session_id", sessionID,
				"error", err)
		}
	}

	if session.SocketID != "" && s.events != nil {
		s.events.Push(session.SocketID, ws.Event{
			Type: "visitor_response",
			Payload: map[string]string{
				"session_id": sessionID,
				"decision":   approvedValue,
			},
		})
	}

	if s.audit != nil {
		s.audit.Record(ctx, approval.RespondedBy, "visitor_"+approvedValue,
			"session", sessionID, approval.Message)
	}
}

// EndSession transitions the session to ended, computes its duration and
// flushes the visit-creation side effect when the collected data amounts
// to a valid visit none of the tool calls already created. Idempotent: a
// repeat call returns the same duration with visitCreated=false.
func (s *ConciergeService) EndSession(ctx context.Context, sessionID, finalStatus string) (*schemas.EndSessionResponse, error) {
	instance := "/concierge/sessions/" + sessionID + "/end"

	if finalStatus == "" {
		finalStatus = "completed"
	}

	var firstEnd bool
	session, err := s.store.UpdateSession(sessionID, func(live *models.Session) error {
		if live.IsTerminal() {
			firstEnd = false
			return nil
		}
		firstEnd = true
		now := time.Now()
		if err := live.Transition(models.SessionEnded); err != nil {
			return err
		}
		live.EndedAt = &now
		live.FinalStatus = finalStatus
		live.DurationSeconds = int64(now.Sub(live.CreatedAt).Seconds())
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return nil, schemas.NewNotFoundError(
				fmt.Sprintf("session %s not found", sessionID), instance)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to end session: %v", err), instance)
	}

	if !firstEnd {
		return &schemas.EndSessionResponse{
			SessionID:       sessionID,
			Status:          session.FinalStatus,
			DurationSeconds: session.DurationSeconds,
			VisitCreated:    false,
		}, nil
	}

	// Cancellation propagates downward: an open approval is implicitly
	// denied so a stale resident tap after session end is a no-op.
	if approval, resolved, err := s.approvals.Resolve(sessionID, false, ""); err == nil && resolved {
		s.recordDecision(ctx, sessionID, approval)
	}

	visitCreated := session.VisitID != ""
	if !visitCreated && session.HasVisitData() {
		visit, err := s.visits.CreateVisit(ctx, &models.Visit{
			VisitorName:     session.CollectedData[models.DataVisitorName],
			VisitorRut:      session.CollectedData[models.DataVisitorRut],
			VisitorPlate:    session.CollectedData[models.DataVisitorPlate],
			DestinationUnit: session.CollectedData[models.DataDestinationUnit],
			SessionID:       sessionID,
		})
		if err != nil {
			slog.Error("Failed to flush visit at session end",
				"session_id", sessionID,
				"error", err)
		} else {
			visitCreated = true
			_, _ = s.store.UpdateSession(sessionID, func(live *models.Session) error {
				live.VisitID = visit.VisitID
				return nil
			})
		}
	}

	_, _ = s.store.UpdateSession(sessionID, func(live *models.Session) error {
		live.VisitCreated = visitCreated
		return nil
	})

	if session.SocketID != "" && s.events != nil {
		s.events.Push(session.SocketID, ws.Event{
			Type: "session_ended",
			Payload: map[string]string{
				"session_id": sessionID,
				"status":     finalStatus,
			},
		})
	}

	if s.audit != nil {
		s.audit.Record(ctx, "concierge", "session_end", "session", sessionID, finalStatus)
	}

	slog.Info("Ended concierge session",
		"session_id", sessionID,
		"status", finalStatus,
		"duration_seconds", session.DurationSeconds,
		"visit_created", visitCreated)

	return &schemas.EndSessionResponse{
		SessionID:       sessionID,
		Status:          finalStatus,
		DurationSeconds: session.DurationSeconds,
		VisitCreated:    visitCreated,
	}, nil
}
