package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"condominium-service/src/models"
	"condominium-service/src/repository"
	"condominium-service/src/schemas"
)

// CameraService manages the camera registry. The media gateway owns all
// WebRTC negotiation; this service only resolves a camera to the
// gateway's WHEP endpoint for its mount.
type CameraService struct {
	repo            *repository.LPRRepository
	mediaGatewayURL string
	audit           AuditRecorder
}

// NewCameraService creates a new camera service
func NewCameraService(repo *repository.LPRRepository, mediaGatewayURL string, audit AuditRecorder) *CameraService {
	return &CameraService{
		repo:            repo,
		mediaGatewayURL: strings.TrimRight(mediaGatewayURL, "/"),
		audit:           audit,
	}
}

// CreateCamera registers a camera mount
func (s *CameraService) CreateCamera(ctx context.Context, actor string, req schemas.CreateCameraRequest) (*models.Camera, error) {
	camera, err := s.repo.CreateCamera(ctx, &models.Camera{
		Name:     req.Name,
		Mount:    req.Mount,
		Location: req.Location,
	})
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to create camera: %v", err), "/cameras")
	}

	s.audit.Record(ctx, actor, "camera_create", "camera", camera.CameraID, camera.Mount)
	return camera, nil
}

// ListCameras retrieves all registered cameras
func (s *CameraService) ListCameras(ctx context.Context) ([]models.Camera, error) {
	cameras, err := s.repo.ListCameras(ctx)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to list cameras: %v", err), "/cameras")
	}
	return cameras, nil
}

// GetStreamEndpoint resolves a camera to its WHEP URL on the media gateway
func (s *CameraService) GetStreamEndpoint(ctx context.Context, cameraID string) (*schemas.CameraStreamResponse, error) {
	instance := "/cameras/" + cameraID + "/stream"

	camera, err := s.repo.GetCameraByID(ctx, cameraID)
	if err != nil {
		if errors.Is(err, models.ErrCameraNotFound) {
			return nil, schemas.NewNotFoundError(
				fmt.Sprintf("camera %s not found", cameraID), instance)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to get camera: %v", err), instance)
	}
	if !camera.Enabled {
		return nil, schemas.NewConflictError(
			fmt.Sprintf("camera %s is disabled", cameraID), instance)
	}

	return &schemas.CameraStreamResponse{
		CameraID: camera.CameraID,
		WHEPURL:  fmt.Sprintf("%s/%s/whep", s.mediaGatewayURL, camera.Mount),
	}, nil
}
