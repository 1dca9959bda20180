package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"condominium-service/src/db"
	"condominium-service/src/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgreSQL error codes checked by this repository
const (
	pgErrUniqueViolation = "23505" // unique_violation
)

// VehicleRepository handles all database operations for registered vehicles
type VehicleRepository struct {
	db *db.DB
}

// NewVehicleRepository creates a new vehicle repository
func NewVehicleRepository(database *db.DB) *VehicleRepository {
	return &VehicleRepository{
		db: database,
	}
}

// CreateVehicle registers a vehicle to a resident. The plate is stored
// normalized so LPR readings match.
func (r *VehicleRepository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	query := `
		INSERT INTO vehicles (vehicle_id, resident_id, plate, brand, model, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING vehicle_id, resident_id, plate, brand, model, color, created_at
	`

	var created models.Vehicle
	err := r.db.GetConnection().QueryRowContext(
		ctx,
		query,
		uuid.New().String(),
		vehicle.ResidentID,
		models.NormalizePlate(vehicle.Plate),
		vehicle.Brand,
		vehicle.Model,
		vehicle.Color,
		time.Now(),
	).Scan(
		&created.VehicleID,
		&created.ResidentID,
		&created.Plate,
		&created.Brand,
		&created.Model,
		&created.Color,
		&created.CreatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgErrUniqueViolation {
			return nil, models.ErrDuplicatePlate
		}
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	slog.Info("Registered vehicle",
		"vehicle_id", created.VehicleID,
		"plate", created.Plate)

	return &created, nil
}

// GetVehicleByPlate retrieves a vehicle by its normalized plate
func (r *VehicleRepository) GetVehicleByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	query := `
		SELECT vehicle_id, resident_id, plate, brand, model, color, created_at
		FROM vehicles
		WHERE plate = $1
	`

	var vehicle models.Vehicle
	err := r.db.GetConnection().QueryRowContext(ctx, query, models.NormalizePlate(plate)).Scan(
		&vehicle.VehicleID,
		&vehicle.ResidentID,
		&vehicle.Plate,
		&vehicle.Brand,
		&vehicle.Model,
		&vehicle.Color,
		&vehicle.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrVehicleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	return &vehicle, nil
}

// ListVehiclesByResident retrieves all vehicles registered to a resident
func (r *VehicleRepository) ListVehiclesByResident(ctx context.Context, residentID string) ([]models.Vehicle, error) {
	query := `
		SELECT vehicle_id, resident_id, plate, brand, model, color, created_at
		FROM vehicles
		WHERE resident_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.GetConnection().QueryContext(ctx, query, residentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []models.Vehicle
	for rows.Next() {
		var vehicle models.Vehicle
		if err := rows.Scan(
			&vehicle.VehicleID,
			&vehicle.ResidentID,
			&vehicle.Plate,
			&vehicle.Brand,
			&vehicle.Model,
			&vehicle.Color,
			&vehicle.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}

// DeleteVehicle removes a registered vehicle
func (r *VehicleRepository) DeleteVehicle(ctx context.Context, vehicleID string) error {
	result, err := r.db.GetConnection().ExecContext(ctx,
		`DELETE FROM vehicles WHERE vehicle_id = $1`, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrVehicleNotFound
	}

	return nil
}
