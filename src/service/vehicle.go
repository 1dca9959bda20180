package service

import (
	"context"
	"errors"
	"fmt"

	"condominium-service/src/models"
	"condominium-service/src/repository"
	"condominium-service/src/schemas"
)

// VehicleService handles resident vehicle registration
type VehicleService struct {
	repo      *repository.VehicleRepository
	residents *repository.ResidentRepository
	audit     AuditRecorder
}

// NewVehicleService creates a new vehicle service
func NewVehicleService(repo *repository.VehicleRepository, residents *repository.ResidentRepository, audit AuditRecorder) *VehicleService {
	return &VehicleService{
		repo:      repo,
		residents: residents,
		audit:     audit,
	}
}

// CreateVehicle registers a vehicle to an existing resident
func (s *VehicleService) CreateVehicle(ctx context.Context, actor string, req schemas.CreateVehicleRequest) (*models.Vehicle, error) {
	if _, err := s.residents.GetResidentByID(ctx, req.ResidentID); err != nil {
		if errors.Is(err, models.ErrResidentNotFound) {
			return nil, schemas.NewNotFoundError(
				fmt.Sprintf("resident %s not found", req.ResidentID), "/vehicles")
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to look up resident: %v", err), "/vehicles")
	}

	vehicle, err := s.repo.CreateVehicle(ctx, &models.Vehicle{
		ResidentID: req.ResidentID,
		Plate:      req.Plate,
		Brand:      req.Brand,
		Model:      req.Model,
		Color:      req.Color,
	})
	if err != nil {
		if errors.Is(err, models.ErrDuplicatePlate) {
			return nil, schemas.NewConflictError(
				fmt.Sprintf("plate %s is already registered", models.NormalizePlate(req.Plate)), "/vehicles")
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to create vehicle: %v", err), "/vehicles")
	}

	s.audit.Record(ctx, actor, "vehicle_create", "vehicle", vehicle.VehicleID, vehicle.Plate)
	return vehicle, nil
}

// ListVehiclesByResident retrieves a resident's registered vehicles
func (s *VehicleService) ListVehiclesByResident(ctx context.Context, residentID string) ([]models.Vehicle, error) {
	vehicles, err := s.repo.ListVehiclesByResident(ctx, residentID)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to list vehicles: %v", err), "/residents/"+residentID+"/vehicles")
	}
	return vehicles, nil
}

// DeleteVehicle removes a registered vehicle
func (s *VehicleService) DeleteVehicle(ctx context.Context, actor, vehicleID string) error {
	instance := "/vehicles/" + vehicleID

	err := s.repo.DeleteVehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, models.ErrVehicleNotFound) {
			return schemas.NewNotFoundError(
				fmt.Sprintf("vehicle %s not found", vehicleID), instance)
		}
		return schemas.NewInternalError(
			fmt.Sprintf("failed to delete vehicle: %v", err), instance)
	}

	s.audit.Record(ctx, actor, "vehicle_delete", "vehicle", vehicleID, "")
	return nil
}
