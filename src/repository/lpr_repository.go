package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"condominium-service/src/db"
	"condominium-service/src/models"

	"github.com/google/uuid"
)

// LPRRepository handles database operations for plate detections and cameras
type LPRRepository struct {
	db *db.DB
}

// NewLPRRepository creates a new LPR repository
func NewLPRRepository(database *db.DB) *LPRRepository {
	return &LPRRepository{
		db: database,
	}
}

// CreateDetection stores one plate detection event
func (r *LPRRepository) CreateDetection(ctx context.Context, detection *models.PlateDetection) (*models.PlateDetection, error) {
	query := `
		INSERT INTO plate_detections (detection_id, plate, camera_id, confidence, registered, vehicle_id, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING detection_id, plate, camera_id, confidence, registered, vehicle_id, detected_at
	`

	var created models.PlateDetection
	err := r.db.GetConnection().QueryRowContext(
		ctx,
		query,
		uuid.New().String(),
		models.NormalizePlate(detection.Plate),
		detection.CameraID,
		detection.Confidence,
		detection.Registered,
		detection.VehicleID,
		time.Now(),
	).Scan(
		&created.DetectionID,
		&created.Plate,
		&created.CameraID,
		&created.Confidence,
		&created.Registered,
		&created.VehicleID,
		&created.DetectedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create detection: %w", err)
	}

	slog.Info("Stored plate detection",
		"detection_id", created.DetectionID,
		"plate", created.Plate,
		"registered", created.Registered)

	return &created, nil
}

// ListRecentDetections retrieves the latest plate detections
func (r *LPRRepository) ListRecentDetections(ctx context.Context, limit int) ([]models.PlateDetection, error) {
	query := `
		SELECT detection_id, plate, camera_id, confidence, registered, vehicle_id, detected_at
		FROM plate_detections
		ORDER BY detected_at DESC
		LIMIT $1
	`

	rows, err := r.db.GetConnection().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list detections: %w", err)
	}
	defer rows.Close()

	var detections []models.PlateDetection
	for rows.Next() {
		var detection models.PlateDetection
		if err := rows.Scan(
			&detection.DetectionID,
			&detection.Plate,
			&detection.CameraID,
			&detection.Confidence,
			&detection.Registered,
			&detection.VehicleID,
			&detection.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan detection: %w", err)
		}
		detections = append(detections, detection)
	}

	return detections, rows.Err()
}

// CreateCamera registers a camera mount
func (r *LPRRepository) CreateCamera(ctx context.Context, camera *models.Camera) (*models.Camera, error) {
	query := `
		INSERT INTO cameras (camera_id, name, mount, location, enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING camera_id, name, mount, location, enabled, created_at
	`

	var created models.Camera
	err := r.db.GetConnection().QueryRowContext(
		ctx,
		query,
		uuid.New().String(),
		camera.Name,
		camera.Mount,
		camera.Location,
		true,
		time.Now(),
	).Scan(
		&created.CameraID,
		&created.Name,
		&created.Mount,
		&created.Location,
		&created.Enabled,
		&created.CreatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create camera: %w", err)
	}

	return &created, nil
}

// GetCameraByID retrieves a camera by ID
func (r *LPRRepository) GetCameraByID(ctx context.Context, cameraID string) (*models.Camera, error) {
	query := `
		SELECT camera_id, name, mount, location, enabled, created_at
		FROM cameras
		WHERE camera_id = $1
	`

	var camera models.Camera
	err := r.db.GetConnection().QueryRowContext(ctx, query, cameraID).Scan(
		&camera.CameraID,
		&camera.Name,
		&camera.Mount,
		&camera.Location,
		&camera.Enabled,
		&camera.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrCameraNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get camera: %w", err)
	}

	return &camera, nil
}

// ListCameras retrieves all registered cameras
func (r *LPRRepository) ListCameras(ctx context.Context) ([]models.Camera, error) {
	query := `
		SELECT camera_id, name, mount, location, enabled, created_at
		FROM cameras
		ORDER BY name
	`

	rows, err := r.db.GetConnection().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cameras: %w", err)
	}
	defer rows.Close()

	var cameras []models.Camera
	for rows.Next() {
		var camera models.Camera
		if err := rows.Scan(
			&camera.CameraID,
			&camera.Name,
			&camera.Mount,
			&camera.Location,
			&camera.Enabled,
			&camera.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan camera: %w", err)
		}
		cameras = append(cameras, camera)
	}

	return cameras, rows.Err()
}
