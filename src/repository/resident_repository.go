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

// ResidentRepository handles all database operations for units and residents
type ResidentRepository struct {
	db *db.DB
}

// NewResidentRepository creates a new resident repository
func NewResidentRepository(database *db.DB) *ResidentRepository {
	return &ResidentRepository{
		db: database,
	}
}

// CreateUnit registers a new unit
func (r *ResidentRepository) CreateUnit(ctx context.Context, number string, floor int, tower string) (*models.Unit, error) {
	query := `
		INSERT INTO units (unit_id, number, floor, tower, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING unit_id, number, floor, tower, created_at
	`

	var unit models.Unit
	err := r.db.GetConnection().QueryRowContext(
		ctx,
		query,
		uuid.New().String(),
		number,
		floor,
		tower,
		time.Now(),
	).Scan(&unit.ID, &unit.Number, &unit.Floor, &unit.Tower, &unit.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create unit: %w", err)
	}

	slog.Info("Created unit", "unit_id", unit.ID, "number", unit.Number)
	return &unit, nil
}

// GetUnitByNumber retrieves a unit by its display number
func (r *ResidentRepository) GetUnitByNumber(ctx context.Context, number string) (*models.Unit, error) {
	query := `
		SELECT unit_id, number, floor, tower, created_at
		FROM units
		WHERE number = $1
	`

	var unit models.Unit
	err := r.db.GetConnection().QueryRowContext(ctx, query, number).Scan(
		&unit.ID,
		&unit.Number,
		&unit.Floor,
		&unit.Tower,
		&unit.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrUnitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}

	return &unit, nil
}

// CreateResident registers a new resident in a unit
func (r *ResidentRepository) CreateResident(ctx context.Context, resident *models.Resident) (*models.Resident, error) {
	now := time.Now()

	query := `
		INSERT INTO residents (resident_id, unit_id, name, rut, email, phone, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING resident_id, unit_id, name, rut, email, phone, role, created_at, updated_at
	`

	var created models.Resident
	err := r.db.GetConnection().QueryRowContext(
		ctx,
		query,
		uuid.New().String(),
		resident.UnitID,
		resident.Name,
		resident.Rut,
		resident.Email,
		resident.Phone,
		resident.Role,
		now,
		now,
	).Scan(
		&created.ID,
		&created.UnitID,
		&created.Name,
		&created.Rut,
		&created.Email,
		&created.Phone,
		&created.Role,
		&created.CreatedAt,
		&created.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create resident: %w", err)
	}

	slog.Info("Created resident",
		"resident_id", created.ID,
		"unit_id", created.UnitID)

	return &created, nil
}

// GetResidentByID retrieves a resident by ID
func (r *ResidentRepository) GetResidentByID(ctx context.Context, residentID string) (*models.Resident, error) {
	query := `
		SELECT resident_id, unit_id, name, rut, email, phone, role, created_at, updated_at
		FROM residents
		WHERE resident_id = $1
	`

	var resident models.Resident
	err := r.db.GetConnection().QueryRowContext(ctx, query, residentID).Scan(
		&resident.ID,
		&resident.UnitID,
		&resident.Name,
		&resident.Rut,
		&resident.Email,
		&resident.Phone,
		&resident.Role,
		&resident.CreatedAt,
		&resident.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrResidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}

	return &resident, nil
}

// GetResidentsByUnit retrieves all residents of a unit
func (r *ResidentRepository) GetResidentsByUnit(ctx context.Context, unitID string) ([]models.Resident, error) {
	query := `
		SELECT resident_id, unit_id, name, rut, email, phone, role, created_at, updated_at
		FROM residents
		WHERE unit_id = $1
		ORDER BY name
	`

	rows, err := r.db.GetConnection().QueryContext(ctx, query, unitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	defer rows.Close()

	var residents []models.Resident
	for rows.Next() {
		var resident models.Resident
		if err := rows.Scan(
			&resident.ID,
			&resident.UnitID,
			&resident.Name,
			&resident.Rut,
			&resident.Email,
			&resident.Phone,
			&resident.Role,
			&resident.CreatedAt,
			&resident.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan resident: %w", err)
		}
		residents = append(residents, resident)
	}

	return residents, rows.Err()
}

// UpdateResident updates mutable resident fields
func (r *ResidentRepository) UpdateResident(ctx context.Context, residentID string, name, email, phone, role string) error {
	query := `
		UPDATE residents
		SET name = COALESCE(NULLIF($1, ''), name),
		    email = COALESCE(NULLIF($2, ''), email),
		    phone = COALESCE(NULLIF($3, ''), phone),
		    role = COALESCE(NULLIF($4, ''), role),
		    updated_at = $5
		WHERE resident_id = $6
	`

	result, err := r.db.GetConnection().ExecContext(ctx, query, name, email, phone, role, time.Now(), residentID)
	if err != nil {
		return fmt.Errorf("failed to update resident: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrResidentNotFound
	}

	return nil
}

// DeleteResident removes a resident
func (r *ResidentRepository) DeleteResident(ctx context.Context, residentID string) error {
	result, err := r.db.GetConnection().ExecContext(ctx,
		`DELETE FROM residents WHERE resident_id = $1`, residentID)
	if err != nil {
		return fmt.Errorf("failed to delete resident: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrResidentNotFound
	}

	slog.Info("Deleted resident", "resident_id", residentID)
	return nil
}
