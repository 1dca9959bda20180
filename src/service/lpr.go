package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"condominium-service/src/models"
	"condominium-service/src/rabbitmq"
	"condominium-service/src/repository"
	"condominium-service/src/schemas"
)

// LPRService ingests license-plate-recognition events from gate cameras,
// matches them against registered vehicles and notifies residents on
// unregistered plates.
type LPRService struct {
	repo     *repository.LPRRepository
	vehicles *repository.VehicleRepository
	notifier ResidentNotifier
	audit    AuditRecorder
}

// NewLPRService creates a new LPR service
func NewLPRService(repo *repository.LPRRepository, vehicles *repository.VehicleRepository, notifier ResidentNotifier, audit AuditRecorder) *LPRService {
	return &LPRService{
		repo:     repo,
		vehicles: vehicles,
		notifier: notifier,
		audit:    audit,
	}
}

// IngestEvent stores one plate detection and reports the match outcome
func (s *LPRService) IngestEvent(ctx context.Context, req schemas.PlateEventRequest) (*schemas.PlateEventResponse, error) {
	detection := &models.PlateDetection{
		Plate:      req.Plate,
		CameraID:   req.CameraID,
		Confidence: req.Confidence,
	}

	var residentID string
	vehicle, err := s.vehicles.GetVehicleByPlate(ctx, req.Plate)
	switch {
	case err == nil:
		detection.Registered = true
		detection.VehicleID = vehicle.VehicleID
		residentID = vehicle.ResidentID
	case errors.Is(err, models.ErrVehicleNotFound):
		detection.Registered = false
	default:
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to match plate: %v", err), "/lpr/events")
	}

	created, err := s.repo.CreateDetection(ctx, detection)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to store detection: %v", err), "/lpr/events")
	}

	s.audit.Record(ctx, "lpr:"+req.CameraID, "plate_detected", "detection",
		created.DetectionID, created.Plate)

	// An unregistered plate at a gate is worth a heads-up; delivery is
	// fire-and-forget and never fails the ingestion.
	if !created.Registered {
		if err := s.notifier.NotifyResident(rabbitmq.ResidentNotification{
			Title:       "Unregistered vehicle at gate",
			Message:     fmt.Sprintf("Plate %s detected by camera %s", created.Plate, req.CameraID),
			DetectionID: created.DetectionID,
		}); err != nil {
			slog.Warn("Failed to publish unregistered-plate notification",
				"detection_id", created.DetectionID,
				"error", err)
		}
	}

	return &schemas.PlateEventResponse{
		DetectionID: created.DetectionID,
		Registered:  created.Registered,
		VehicleID:   created.VehicleID,
		ResidentID:  residentID,
	}, nil
}

// ListRecentDetections retrieves the latest detections
func (s *LPRService) ListRecentDetections(ctx context.Context, limit int) ([]models.PlateDetection, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	detections, err := s.repo.ListRecentDetections(ctx, limit)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to list detections: %v", err), "/lpr/events")
	}
	return detections, nil
}
