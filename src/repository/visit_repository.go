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

// VisitRepository handles all database operations for visits
type VisitRepository struct {
	db *db.DB
}

// NewVisitRepository creates a new visit repository
func NewVisitRepository(database *db.DB) *VisitRepository {
	return &VisitRepository{
		db: database,
	}
}

// CreateVisit registers a new pending visit
func (r *VisitRepository) CreateVisit(ctx context.Context, visit *models.Visit) (*models.Visit, error) {
	query := `
		INSERT INTO visits
		(visit_id, visitor_name, visitor_rut, visitor_plate, destination_unit, session_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING visit_id, visitor_name, visitor_rut, visitor_plate, destination_unit, session_id, status, created_at, completed_at
	`

	var created models.Visit
	err := r.db.GetConnection().QueryRowContext(
		ctx,
		query,
		uuid.New().String(),
		visit.VisitorName,
		visit.VisitorRut,
		visit.VisitorPlate,
		visit.DestinationUnit,
		visit.SessionID,
		models.VisitPending,
		time.Now(),
	).Scan(
		&created.VisitID,
		&created.VisitorName,
		&created.VisitorRut,
		&created.VisitorPlate,
		&created.DestinationUnit,
		&created.SessionID,
		&created.Status,
		&created.CreatedAt,
		&created.CompletedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create visit: %w", err)
	}

	slog.Info("Created visit",
		"visit_id", created.VisitID,
		"destination_unit", created.DestinationUnit,
		"session_id", created.SessionID)

	return &created, nil
}

// GetVisitByID retrieves a visit by ID
func (r *VisitRepository) GetVisitByID(ctx context.Context, visitID string) (*models.Visit, error) {
	query := `
		SELECT visit_id, visitor_name, visitor_rut, visitor_plate, destination_unit, session_id, status, created_at, completed_at
		FROM visits
		WHERE visit_id = $1
	`

	var visit models.Visit
	err := r.db.GetConnection().QueryRowContext(ctx, query, visitID).Scan(
		&visit.VisitID,
		&visit.VisitorName,
		&visit.VisitorRut,
		&visit.VisitorPlate,
		&visit.DestinationUnit,
		&visit.SessionID,
		&visit.Status,
		&visit.CreatedAt,
		&visit.CompletedAt,
	)

	if err == sql.ErrNoRows {
		return nil, models.ErrVisitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}

	return &visit, nil
}

// UpdateVisitStatus updates the status of a visit; terminal statuses also
// stamp completed_at.
func (r *VisitRepository) UpdateVisitStatus(ctx context.Context, visitID string, status models.VisitStatus) error {
	query := `
		UPDATE visits
		SET status = $1,
		    completed_at = CASE WHEN $1 IN ('DENIED', 'COMPLETED') THEN $2 ELSE completed_at END
		WHERE visit_id = $3
	`

	result, err := r.db.GetConnection().ExecContext(ctx, query, status, time.Now(), visitID)
	if err != nil {
		return fmt.Errorf("failed to update visit status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrVisitNotFound
	}

	slog.Info("Updated visit status",
		"visit_id", visitID,
		"status", status)

	return nil
}

// ListRecentVisitsByUnit retrieves the latest visits for a destination unit
func (r *VisitRepository) ListRecentVisitsByUnit(ctx context.Context, unitNumber string, limit int) ([]models.Visit, error) {
	query := `
		SELECT visit_id, visitor_name, visitor_rut, visitor_plate, destination_unit, session_id, status, created_at, completed_at
		FROM visits
		WHERE destination_unit = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.GetConnection().QueryContext(ctx, query, unitNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	defer rows.Close()

	var visits []models.Visit
	for rows.Next() {
		var visit models.Visit
		if err := rows.Scan(
			&visit.VisitID,
			&visit.VisitorName,
			&visit.VisitorRut,
			&visit.VisitorPlate,
			&visit.DestinationUnit,
			&visit.SessionID,
			&visit.Status,
			&visit.CreatedAt,
			&visit.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		visits = append(visits, visit)
	}

	return visits, rows.Err()
}
