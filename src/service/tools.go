package service

import (
	"context"
	"fmt"
	"log/slog"

	"condominium-service/src/models"
	"condominium-service/src/rabbitmq"
	"condominium-service/src/schemas"
)

// Tool names the assistant may invoke. The dispatch table is closed:
// adding a tool means adding a handler here, not registering one at runtime.
const (
	ToolLookupResidentByUnit = "lookup_resident_by_unit"
	ToolCreateVisit          = "create_visit"
	ToolNotifyResident       = "notify_resident"
)

// UnitDirectory is the slice of the resident repository the tools need
type UnitDirectory interface {
	GetUnitByNumber(ctx context.Context, number string) (*models.Unit, error)
	GetResidentsByUnit(ctx context.Context, unitID string) ([]models.Resident, error)
	GetResidentByID(ctx context.Context, residentID string) (*models.Resident, error)
}

// VisitRecorder is the slice of the visit repository the concierge needs
type VisitRecorder interface {
	CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error)
	ListRecentVisitsByUnit(ctx context.Context, unitNumber string, limit int) ([]models.Visit, error)
	UpdateVisitStatus(ctx context.Context, visitID string, status models.VisitStatus) error
}

// ResidentNotifier delivers push notifications to resident devices
type ResidentNotifier interface {
	NotifyResident(notification rabbitmq.ResidentNotification) error
}

// toolOutcome is what a handler produces: the structured result for the
// assistant plus a collectedData fragment the session merges.
type toolOutcome struct {
	result   schemas.ToolResult
	fragment map[string]string
}

type toolHandler func(ctx context.Context, session *models.Session, params map[string]string) toolOutcome

// ToolExecutor maps tool names to handlers that perform backend
// operations. Handler failures are embedded in the result, never
// propagated as transport errors, so one failed tool call does not drop
// the voice session.
type ToolExecutor struct {
	units     UnitDirectory
	visits    VisitRecorder
	notifier  ResidentNotifier
	approvals *ApprovalCorrelator

	handlers map[string]toolHandler
	required map[string][]string
}

// NewToolExecutor builds the dispatch table
func NewToolExecutor(units UnitDirectory, visits VisitRecorder, notifier ResidentNotifier, approvals *ApprovalCorrelator) *ToolExecutor {
	e := &ToolExecutor{
		units:     units,
		visits:    visits,
		notifier:  notifier,
		approvals: approvals,
	}
	e.handlers = map[string]toolHandler{
		ToolLookupResidentByUnit: e.lookupResidentByUnit,
		ToolCreateVisit:          e.createVisit,
		ToolNotifyResident:       e.notifyResident,
	}
	e.required = map[string][]string{
		ToolLookupResidentByUnit: {"unitNumber"},
		ToolCreateVisit:          {"visitorName", "destinationUnit"},
		ToolNotifyResident:       {"residentId", "message"},
	}
	return e
}

// Execute dispatches one tool call. An unknown tool name and any handler
// failure come back inside the ToolResult; the only error return is a
// ValidationError for a known tool missing a required parameter.
func (e *ToolExecutor) Execute(ctx context.Context, session *models.Session, toolName string, params map[string]string) (schemas.ToolResult, map[string]string, error) {
	handler, ok := e.handlers[toolName]
	if !ok {
		return schemas.ToolResult{
			Success: false,
			Error:   fmt.Sprintf("unknown tool: %s", toolName),
		}, nil, nil
	}

	for _, field := range e.required[toolName] {
		if params[field] == "" {
			return schemas.ToolResult{}, nil, schemas.ValidationError(
				fmt.Sprintf("missing required parameter %q for tool %s", field, toolName),
				"/concierge/sessions/"+session.ID+"/execute-tool",
			)
		}
	}

	outcome := e.run(ctx, handler, session, params, toolName)
	return outcome.result, outcome.fragment, nil
}

// run invokes the handler with panic capture at the executor boundary. A
// panicking handler fails its own call, never the session.
func (e *ToolExecutor) run(ctx context.Context, handler toolHandler, session *models.Session, params map[string]string, toolName string) (outcome toolOutcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Tool handler panicked",
				"tool", toolName,
				"session_id", session.ID,
				"panic", r)
			outcome = toolOutcome{result: schemas.ToolResult{
				Success: false,
				Error:   fmt.Sprintf("tool %s failed: %v", toolName, r),
			}}
		}
	}()

	return handler(ctx, session, params)
}

func (e *ToolExecutor) lookupResidentByUnit(ctx context.Context, session *models.Session, params map[string]string) toolOutcome {
	unitNumber := params["unitNumber"]

	unit, err := e.units.GetUnitByNumber(ctx, unitNumber)
	if err == models.ErrUnitNotFound {
		return toolOutcome{result: schemas.ToolResult{Success: false, Error: "unit_not_found"}}
	}
	if err != nil {
		return toolOutcome{result: schemas.ToolResult{Success: false, Error: err.Error()}}
	}

	residents, err := e.units.GetResidentsByUnit(ctx, unit.ID)
	if err != nil {
		return toolOutcome{result: schemas.ToolResult{Success: false, Error: err.Error()}}
	}
	if len(residents) == 0 {
		return toolOutcome{result: schemas.ToolResult{Success: false, Error: "unit_has_no_residents"}}
	}

	primary := residents[0]
	return toolOutcome{
		result: schemas.ToolResult{
			Success: true,
			Data: map[string]string{
				"resident_id":   primary.ID,
				"resident_name": primary.Name,
				"phone":         primary.Phone,
				"unit_number":   unit.Number,
			},
		},
		fragment: map[string]string{models.DataDestinationUnit: unit.Number},
	}
}

func (e *ToolExecutor) createVisit(ctx context.Context, session *models.Session, params map[string]string) toolOutcome {
	destinationUnit := params["destinationUnit"]

	if _, err := e.units.GetUnitByNumber(ctx, destinationUnit); err != nil {
		if err == models.ErrUnitNotFound {
			return toolOutcome{result: schemas.ToolResult{Success: false, Error: "unit_not_found"}}
		}
		return toolOutcome{result: schemas.ToolResult{Success: false, Error: err.Error()}}
	}

	visit, err := e.visits.CreateVisit(ctx, &models.Visit{
		VisitorName:     params["visitorName"],
		VisitorRut:      params["rut"],
		VisitorPlate:    params["plate"],
		DestinationUnit: destinationUnit,
		SessionID:       session.ID,
	})
	if err != nil {
		return toolOutcome{result: schemas.ToolResult{Success: false, Error: err.Error()}}
	}

	fragment := map[string]string{
		models.DataVisitorName:     params["visitorName"],
		models.DataDestinationUnit: destinationUnit,
	}
	if params["rut"] != "" {
		fragment[models.DataVisitorRut] = params["rut"]
	}
	if params["plate"] != "" {
		fragment[models.DataVisitorPlate] = params["plate"]
	}

	return toolOutcome{
		result: schemas.ToolResult{
			Success: true,
			Data:    map[string]string{"visit_id": visit.VisitID},
		},
		fragment: fragment,
	}
}

func (e *ToolExecutor) notifyResident(ctx context.Context, session *models.Session, params map[string]string) toolOutcome {
	residentID := params["residentId"]

	if _, err := e.units.GetResidentByID(ctx, residentID); err != nil {
		if err == models.ErrResidentNotFound {
			return toolOutcome{result: schemas.ToolResult{Success: false, Error: "resident_not_found"}}
		}
		return toolOutcome{result: schemas.ToolResult{Success: false, Error: err.Error()}}
	}

	approval, err := e.approvals.Request(session.ID, residentID, params["message"], session.VisitID, "")
	if err != nil {
		return toolOutcome{result: schemas.ToolResult{Success: false, Error: err.Error()}}
	}

	// Delivery is fire-and-forget: a broker failure is logged and the
	// approval simply expires if the resident never sees it.
	if err := e.notifier.NotifyResident(rabbitmq.ResidentNotification{
		ResidentID: residentID,
		Title:      "Visitor at reception",
		Message:    params["message"],
		SessionID:  session.ID,
		ApprovalID: approval.ID,
	}); err != nil {
		slog.Warn("Failed to publish resident notification",
			"resident_id", residentID,
			"session_id", session.ID,
			"error", err)
	}

	return toolOutcome{
		result: schemas.ToolResult{
			Success: true,
			Data: map[string]string{
				"approval_id":       approval.ID,
				"awaiting_approval": "true",
			},
		},
	}
}
