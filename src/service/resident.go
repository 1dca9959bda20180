package service

import (
	"context"
	"errors"
	"fmt"

	"condominium-service/src/models"
	"condominium-service/src/repository"
	"condominium-service/src/schemas"
)

// ResidentService handles unit and resident management
type ResidentService struct {
	repo  *repository.ResidentRepository
	audit AuditRecorder
}

// NewResidentService creates a new resident service
func NewResidentService(repo *repository.ResidentRepository, audit AuditRecorder) *ResidentService {
	return &ResidentService{
		repo:  repo,
		audit: audit,
	}
}

// CreateUnit registers a unit
func (s *ResidentService) CreateUnit(ctx context.Context, actor string, req schemas.CreateUnitRequest) (*models.Unit, error) {
	unit, err := s.repo.CreateUnit(ctx, req.Number, req.Floor, req.Tower)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to create unit: %v", err), "/units")
	}
	s.audit.Record(ctx, actor, "unit_create", "unit", unit.ID, unit.Number)
	return unit, nil
}

// CreateResident registers a resident in an existing unit
func (s *ResidentService) CreateResident(ctx context.Context, actor string, req schemas.CreateResidentRequest) (*models.Resident, error) {
	unit, err := s.repo.GetUnitByNumber(ctx, req.UnitNumber)
	if err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			return nil, schemas.NewNotFoundError(
				fmt.Sprintf("unit %s not found", req.UnitNumber), "/residents")
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to look up unit: %v", err), "/residents")
	}

	role := models.ResidentRole(req.Role)
	if role == "" {
		role = models.RoleResident
	}

	resident, err := s.repo.CreateResident(ctx, &models.Resident{
		UnitID: unit.ID,
		Name:   req.Name,
		Rut:    req.Rut,
		Email:  req.Email,
		Phone:  req.Phone,
		Role:   role,
	})
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to create resident: %v", err), "/residents")
	}

	s.audit.Record(ctx, actor, "resident_create", "resident", resident.ID, resident.Name)
	return resident, nil
}

// GetResident retrieves a resident by ID
func (s *ResidentService) GetResident(ctx context.Context, residentID string) (*models.Resident, error) {
	resident, err := s.repo.GetResidentByID(ctx, residentID)
	if err != nil {
		if errors.Is(err, models.ErrResidentNotFound) {
			return nil, schemas.NewNotFoundError(
				fmt.Sprintf("resident %s not found", residentID), "/residents/"+residentID)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to get resident: %v", err), "/residents/"+residentID)
	}
	return resident, nil
}

// ListResidentsByUnit retrieves all residents of the unit with the given number
func (s *ResidentService) ListResidentsByUnit(ctx context.Context, unitNumber string) ([]models.Resident, error) {
	instance := "/units/" + unitNumber + "/residents"

	unit, err := s.repo.GetUnitByNumber(ctx, unitNumber)
	if err != nil {
		if errors.Is(err, models.ErrUnitNotFound) {
			return nil, schemas.NewNotFoundError(
				fmt.Sprintf("unit %s not found", unitNumber), instance)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to look up unit: %v", err), instance)
	}

	residents, err := s.repo.GetResidentsByUnit(ctx, unit.ID)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to list residents: %v", err), instance)
	}
	return residents, nil
}

// UpdateResident updates mutable resident fields
func (s *ResidentService) UpdateResident(ctx context.Context, actor, residentID string, req schemas.UpdateResidentRequest) error {
	instance := "/residents/" + residentID

	err := s.repo.UpdateResident(ctx, residentID, req.Name, req.Email, req.Phone, req.Role)
	if err != nil {
		if errors.Is(err, models.ErrResidentNotFound) {
			return schemas.NewNotFoundError(
				fmt.Sprintf("resident %s not found", residentID), instance)
		}
		return schemas.NewInternalError(
			fmt.Sprintf("failed to update resident: %v", err), instance)
	}

	s.audit.Record(ctx, actor, "resident_update", "resident", residentID, "")
	return nil
}

// DeleteResident removes a resident
func (s *ResidentService) DeleteResident(ctx context.Context, actor, residentID string) error {
	instance := "/residents/" + residentID

	err := s.repo.DeleteResident(ctx, residentID)
	if err != nil {
		if errors.Is(err, models.ErrResidentNotFound) {
			return schemas.NewNotFoundError(
				fmt.Sprintf("resident %s not found", residentID), instance)
		}
		return schemas.NewInternalError(
			fmt.Sprintf("failed to delete resident: %v", err), instance)
	}

	s.audit.Record(ctx, actor, "resident_delete", "resident", residentID, "")
	return nil
}
