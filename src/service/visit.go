package service

import (
	"context"
	"errors"
	"fmt"

	"condominium-service/src/models"
	"condominium-service/src/repository"
	"condominium-service/src/schemas"
)

// VisitService handles visit registration outside the concierge flow
// (front-desk manual entry)
type VisitService struct {
	repo      *repository.VisitRepository
	residents *repository.ResidentRepository
	audit     AuditRecorder
}

// NewVisitService creates a new visit service
func NewVisitService(repo *repository.VisitRepository, residents *repository.ResidentRepository, audit AuditRecorder) *VisitService {
	return &VisitService{
		repo:      repo,
		residents: residents,
		audit:     audit,
	}
}

// CreateVisit registers a pending visit after validating the destination unit
func (s *VisitService) CreateVisit(ctx context.Context, actor string, req schemas.CreateVisitRequest) (*models.Visit, error) {
	if _, err := s.residents.GetUnitByNumber(ctx, req.DestinationUnit); err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			return nil, schemas.NewNotFoundError(
				fmt.Sprintf("unit %s not found", req.DestinationUnit), "/visits")
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to look up unit: %v", err), "/visits")
	}

	visit, err := s.repo.CreateVisit(ctx, &models.Visit{
		VisitorName:     req.VisitorName,
		VisitorRut:      req.VisitorRut,
		VisitorPlate:    req.VisitorPlate,
		DestinationUnit: req.DestinationUnit,
	})
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to create visit: %v", err), "/visits")
	}

	s.audit.Record(ctx, actor, "visit_create", "visit", visit.VisitID, visit.VisitorName)
	return visit, nil
}

// GetVisit retrieves a visit by ID
func (s *VisitService) GetVisit(ctx context.Context, visitID string) (*models.Visit, error) {
	visit, err := s.repo.GetVisitByID(ctx, visitID)
	if err != nil {
		if errors.Is(err, models.ErrVisitNotFound) {
			return nil, schemas.NewNotFoundError(
				fmt.Sprintf("visit %s not found", visitID), "/visits/"+visitID)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to get visit: %v", err), "/visits/"+visitID)
	}
	return visit, nil
}

// UpdateVisitStatus moves a visit to the given status
func (s *VisitService) UpdateVisitStatus(ctx context.Context, actor, visitID, status string) error {
	instance := "/visits/" + visitID + "/status"

	switch models.VisitStatus(status) {
	case models.VisitPending, models.VisitApproved, models.VisitDenied, models.VisitCompleted:
	default:
		return schemas.NewBadRequestError(
			fmt.Sprintf("invalid visit status %q", status), instance)
	}

	err := s.repo.UpdateVisitStatus(ctx, visitID, models.VisitStatus(status))
	if err != nil {
		if errors.Is(err, models.ErrVisitNotFound) {
			return schemas.NewNotFoundError(
				fmt.Sprintf("visit %s not found", visitID), instance)
		}
		return schemas.NewInternalError(
			fmt.Sprintf("failed to update visit status: %v", err), instance)
	}

	s.audit.Record(ctx, actor, "visit_status_update", "visit", visitID, status)
	return nil
}

// ListRecentVisitsByUnit retrieves the latest visits for a unit
func (s *VisitService) ListRecentVisitsByUnit(ctx context.Context, unitNumber string, limit int) ([]models.Visit, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	visits, err := s.repo.ListRecentVisitsByUnit(ctx, unitNumber, limit)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to list visits: %v", err), "/units/"+unitNumber+"/visits")
	}
	return visits, nil
}
