package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"condominium-service/src/models"
	"condominium-service/src/rabbitmq"
	"condominium-service/src/repository"
	"condominium-service/src/schemas"
	"condominium-service/src/ws"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIssuer struct {
	fail bool
}

func (f *fakeIssuer) IssueCredential(ctx context.Context, sessionID string) (*models.RealtimeCredential, error) {
	if f.fail {
		return nil, errors.New("credential provider unreachable")
	}
	return &models.RealtimeCredential{
		Token:     "ephemeral-" + sessionID,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}, nil
}

type fakeDirectory struct {
	units     map[string]*models.Unit
	residents map[string][]models.Resident
	panicOn   string
}

func (f *fakeDirectory) GetUnitByNumber(ctx context.Context, number string) (*models.Unit, error) {
	if number == f.panicOn && f.panicOn != "" {
		panic("directory corrupted")
	}
	unit, ok := f.units[number]
	if !ok {
		return nil, models.ErrUnitNotFound
	}
	return unit, nil
}

func (f *fakeDirectory) GetResidentsByUnit(ctx context.Context, unitID string) ([]models.Resident, error) {
	return f.residents[unitID], nil
}

func (f *fakeDirectory) GetResidentByID(ctx context.Context, residentID string) (*models.Resident, error) {
	for _, residents := range f.residents {
		for _, resident := range residents {
			if resident.ID == residentID {
				return &resident, nil
			}
		}
	}
	return nil, models.ErrResidentNotFound
}

type fakeVisits struct {
	mu            sync.Mutex
	created       []models.Visit
	statusUpdates map[string]models.VisitStatus

	// When set, CreateVisit signals entry and blocks until released,
	// letting tests order other calls inside an in-flight creation.
	createEntered chan struct{}
	createRelease chan struct{}
}

func (f *fakeVisits) CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error) {
	if f.createEntered != nil {
		f.createEntered <- struct{}{}
		<-f.createRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	created := *visit
	created.VisitID = uuid.New().String()
	created.Status = models.VisitPending
	created.CreatedAt = time.Now()
	f.created = append(f.created, created)
	return &created, nil
}

func (f *fakeVisits) ListRecentVisitsByUnit(ctx context.Context, unitNumber string, limit int) ([]models.Visit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var visits []models.Visit
	for _, visit := range f.created {
		if visit.DestinationUnit == unitNumber {
			visits = append(visits, visit)
		}
	}
	return visits, nil
}

func (f *fakeVisits) UpdateVisitStatus(ctx context.Context, visitID string, status models.VisitStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusUpdates == nil {
		f.statusUpdates = make(map[string]models.VisitStatus)
	}
	f.statusUpdates[visitID] = status
	return nil
}

func (f *fakeVisits) createdCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []rabbitmq.ResidentNotification
	fail bool
}

func (f *fakeNotifier) NotifyResident(notification rabbitmq.ResidentNotification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.sent = append(f.sent, notification)
	return nil
}

type fakePusher struct {
	mu     sync.Mutex
	events map[string][]ws.Event
}

func (f *fakePusher) Push(socketID string, event ws.Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.events == nil {
		f.events = make(map[string][]ws.Event)
	}
	f.events[socketID] = append(f.events[socketID], event)
	return true
}

type nopAudit struct{}

func (nopAudit) Record(ctx context.Context, actor, action, entity, entityID, detail string) {}

type conciergeFixture struct {
	store    *repository.SessionStore
	service  *ConciergeService
	issuer   *fakeIssuer
	visits   *fakeVisits
	notifier *fakeNotifier
	pusher   *fakePusher
}

func newConciergeFixture(t *testing.T, approvalTTL time.Duration) *conciergeFixture {
	t.Helper()

	store := repository.NewSessionStore()
	issuer := &fakeIssuer{}
	visits := &fakeVisits{}
	notifier := &fakeNotifier{}
	pusher := &fakePusher{}

	units := &fakeDirectory{
		units: map[string]*models.Unit{
			"303": {ID: "U-303", Number: "303", Floor: 3},
		},
		residents: map[string][]models.Resident{
			"U-303": {{ID: "R1", UnitID: "U-303", Name: "María Soto", Phone: "+56911111111"}},
		},
	}

	approvals := NewApprovalCorrelator(store, approvalTTL)
	tools := NewToolExecutor(units, visits, notifier, approvals)

	return &conciergeFixture{
		store:    store,
		issuer:   issuer,
		visits:   visits,
		notifier: notifier,
		pusher:   pusher,
		service:  NewConciergeService(store, issuer, tools, approvals, units, visits, pusher, nopAudit{}),
	}
}

func (f *conciergeFixture) start(t *testing.T) string {
	t.Helper()
	resp, err := f.service.StartSession(context.Background(), schemas.StartSessionRequest{SocketID: "sock-1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)
	require.NotEmpty(t, resp.EphemeralToken)
	return resp.SessionID
}

func TestUnknownSessionReturnsNotFound(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	bogus := uuid.New().String()

	_, err := f.service.ExecuteTool(context.Background(), bogus, schemas.ExecuteToolRequest{
		ToolName: ToolCreateVisit,
		Parameters: map[string]string{
			"visitorName":     "Ana",
			"destinationUnit": "303",
		},
	})
	requireStatus(t, err, 404)

	_, err = f.service.RespondToVisitor(context.Background(), bogus, true, "R1")
	requireStatus(t, err, 404)
}

func TestStartSessionFailureLeavesNoOrphan(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	f.issuer.fail = true

	_, err := f.service.StartSession(context.Background(), schemas.StartSessionRequest{})
	requireStatus(t, err, 503)
	assert.Equal(t, 0, f.store.ActiveSessionCount())

	status := f.service.IsSessionActive(uuid.New().String())
	assert.False(t, status.Active)
	assert.Equal(t, "not_found", status.Reason)
}

func TestUnknownToolKeepsSessionAlive(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	sessionID := f.start(t)

	result, err := f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{
		ToolName: "nonexistent_tool",
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "unknown tool: nonexistent_tool", result.Error)

	status := f.service.IsSessionActive(sessionID)
	assert.True(t, status.Active)
}

func TestExecuteToolOnEndedSessionIsTerminal(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	sessionID := f.start(t)

	_, err := f.service.EndSession(context.Background(), sessionID, "")
	require.NoError(t, err)

	for _, toolName := range []string{ToolCreateVisit, ToolLookupResidentByUnit, "nonexistent_tool"} {
		_, err := f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{ToolName: toolName})
		requireStatus(t, err, 409)
	}

	status := f.service.IsSessionActive(sessionID)
	assert.False(t, status.Active)
	assert.Equal(t, "ended", status.Reason)
}

func TestEndSessionIsIdempotent(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	sessionID := f.start(t)

	_, err := f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{
		ToolName: ToolCreateVisit,
		Parameters: map[string]string{
			"visitorName":     "Ana Pérez",
			"destinationUnit": "303",
		},
	})
	require.NoError(t, err)

	first, err := f.service.EndSession(context.Background(), sessionID, "")
	require.NoError(t, err)
	assert.True(t, first.VisitCreated)

	second, err := f.service.EndSession(context.Background(), sessionID, "abandoned")
	require.NoError(t, err)
	assert.Equal(t, first.DurationSeconds, second.DurationSeconds)
	assert.Equal(t, first.Status, second.Status)
	assert.False(t, second.VisitCreated)
	assert.Equal(t, 1, f.visits.createdCount())
}

func TestCreateVisitStraddlingEndIsRejected(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	sessionID := f.start(t)

	f.visits.createEntered = make(chan struct{})
	f.visits.createRelease = make(chan struct{})

	type toolReturn struct {
		result *schemas.ToolResult
		err    error
	}
	done := make(chan toolReturn, 1)
	go func() {
		result, err := f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{
			ToolName: ToolCreateVisit,
			Parameters: map[string]string{
				"visitorName":     "Ana Pérez",
				"destinationUnit": "303",
			},
		})
		done <- toolReturn{result, err}
	}()

	// End the session while the handler is inside its visit write.
	<-f.visits.createEntered
	end, err := f.service.EndSession(context.Background(), sessionID, "")
	require.NoError(t, err)
	assert.False(t, end.VisitCreated)

	close(f.visits.createRelease)
	ret := <-done

	// End acted as a barrier: the straddling call is rejected and leaves
	// no session state behind, so nothing gets flushed on top of the
	// handler's record.
	requireStatus(t, ret.err, 409)
	assert.Nil(t, ret.result)
	assert.Equal(t, 1, f.visits.createdCount())

	session, err := f.store.GetSession(sessionID)
	require.NoError(t, err)
	assert.Empty(t, session.VisitID)
	assert.Empty(t, session.CollectedData[models.DataVisitorName])

	second, err := f.service.EndSession(context.Background(), sessionID, "")
	require.NoError(t, err)
	assert.False(t, second.VisitCreated)
	assert.Equal(t, 1, f.visits.createdCount())
}

func TestFullVisitorScenario(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	sessionID := f.start(t)

	result, err := f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{
		ToolName: ToolCreateVisit,
		Parameters: map[string]string{
			"visitorName":     "Ana Pérez",
			"destinationUnit": "303",
		},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.NotEmpty(t, result.Data["visit_id"])

	result, err = f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{
		ToolName: ToolNotifyResident,
		Parameters: map[string]string{
			"residentId": "R1",
			"message":    "Ana espera en portería",
		},
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "true", result.Data["awaiting_approval"])
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "R1", f.notifier.sent[0].ResidentID)

	respond, err := f.service.RespondToVisitor(context.Background(), sessionID, true, "R1")
	require.NoError(t, err)
	assert.True(t, respond.Success)
	assert.Equal(t, "visitor approved", respond.Message)

	end, err := f.service.EndSession(context.Background(), sessionID, "")
	require.NoError(t, err)
	assert.Equal(t, "completed", end.Status)
	assert.True(t, end.VisitCreated)
	assert.GreaterOrEqual(t, end.DurationSeconds, int64(0))

	// The resident decision reached the visit record and the client socket.
	session, err := f.store.GetSession(sessionID)
	require.NoError(t, err)
	assert.Equal(t, "approved", session.CollectedData[models.DataResidentResponse])
	assert.Equal(t, models.VisitApproved, f.visits.statusUpdates[session.VisitID])

	events := f.pusher.events["sock-1"]
	require.NotEmpty(t, events)
	assert.Equal(t, "visitor_response", events[0].Type)
}

func TestConcurrentRespondResolvesExactlyOnce(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	sessionID := f.start(t)

	_, err := f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{
		ToolName: ToolNotifyResident,
		Parameters: map[string]string{
			"residentId": "R1",
			"message":    "visitor waiting",
		},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	messages := make([]string, 2)
	errs := make([]error, 2)
	for i, approved := range []bool{true, false} {
		wg.Add(1)
		go func(i int, approved bool) {
			defer wg.Done()
			resp, err := f.service.RespondToVisitor(context.Background(), sessionID, approved, fmt.Sprintf("R%d", i+1))
			if err != nil {
				errs[i] = err
				return
			}
			messages[i] = resp.Message
		}(i, approved)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Exactly one caller performed the resolution; the other observed it.
	resolutions := 0
	for _, message := range messages {
		if strings.HasPrefix(message, "visitor ") {
			resolutions++
		}
	}
	assert.Equal(t, 1, resolutions)

	approval, err := f.store.GetApproval(sessionID)
	require.NoError(t, err)
	assert.NotEqual(t, models.DecisionPending, approval.Decision)
	assert.NotNil(t, approval.RespondedAt)
}

func TestExpiredApprovalReadsAsDenied(t *testing.T) {
	f := newConciergeFixture(t, 20*time.Millisecond)
	sessionID := f.start(t)

	_, err := f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{
		ToolName: ToolNotifyResident,
		Parameters: map[string]string{
			"residentId": "R1",
			"message":    "visitor waiting",
		},
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	// No sweep ran; the lazy check must still report the denial.
	resp, err := f.service.RespondToVisitor(context.Background(), sessionID, true, "R1")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "approval already resolved: denied", resp.Message)

	approval, err := f.store.GetApproval(sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDenied, approval.Decision)
	assert.Empty(t, approval.RespondedBy)
}

func TestEndSessionDeniesOpenApproval(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	sessionID := f.start(t)

	_, err := f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{
		ToolName: ToolNotifyResident,
		Parameters: map[string]string{
			"residentId": "R1",
			"message":    "visitor waiting",
		},
	})
	require.NoError(t, err)

	_, err = f.service.EndSession(context.Background(), sessionID, "")
	require.NoError(t, err)

	approval, err := f.store.GetApproval(sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionDenied, approval.Decision)

	// A stale resident tap after session end is a no-op.
	resp, err := f.service.RespondToVisitor(context.Background(), sessionID, true, "R1")
	require.NoError(t, err)
	assert.Contains(t, resp.Message, "already resolved")
}

func TestRespondWithoutApprovalReturnsNotFound(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	sessionID := f.start(t)

	_, err := f.service.RespondToVisitor(context.Background(), sessionID, true, "R1")
	requireStatus(t, err, 404)
}

func TestCollectedDataSurvivesUnrelatedToolCalls(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)
	sessionID := f.start(t)

	require.NoError(t, f.store.MergeCollectedData(sessionID, map[string]string{
		models.DataVisitorName:     "Pedro Rojas",
		models.DataVisitorRut:      "12.345.678-9",
		models.DataDestinationUnit: "303",
	}))

	_, err := f.service.ExecuteTool(context.Background(), sessionID, schemas.ExecuteToolRequest{
		ToolName:   ToolLookupResidentByUnit,
		Parameters: map[string]string{"unitNumber": "303"},
	})
	require.NoError(t, err)

	end, err := f.service.EndSession(context.Background(), sessionID, "")
	require.NoError(t, err)
	assert.True(t, end.VisitCreated)

	require.Equal(t, 1, f.visits.createdCount())
	flushed := f.visits.created[0]
	assert.Equal(t, "Pedro Rojas", flushed.VisitorName)
	assert.Equal(t, "12.345.678-9", flushed.VisitorRut)
	assert.Equal(t, "303", flushed.DestinationUnit)
	assert.Equal(t, sessionID, flushed.SessionID)
}

func TestHouseContextSummarizesVisits(t *testing.T) {
	f := newConciergeFixture(t, time.Minute)

	_, err := f.visits.CreateVisit(context.Background(), &models.Visit{
		VisitorName:     "Carla Núñez",
		DestinationUnit: "303",
	})
	require.NoError(t, err)

	resp, err := f.service.GetHouseContext(context.Background(), "303")
	require.NoError(t, err)
	assert.Contains(t, resp.Context, "Carla Núñez")
	assert.Contains(t, resp.Context, "303")

	_, err = f.service.GetHouseContext(context.Background(), "999")
	requireStatus(t, err, 404)

	// Side-effect free: no session or visit state changed.
	assert.Equal(t, 1, f.visits.createdCount())
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var apiErr *schemas.ErrorResponse
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, status, apiErr.Status)
}
