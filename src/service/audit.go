package service

import (
	"context"
	"log/slog"

	"condominium-service/src/models"
	"condominium-service/src/repository"
)

// AuditRecorder appends audit entries; failures are logged, never
// propagated, so auditing cannot fail a business operation.
type AuditRecorder interface {
	Record(ctx context.Context, actor, action, entity, entityID, detail string)
}

// AuditService writes the append-only audit log
type AuditService struct {
	repo *repository.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(repo *repository.AuditRepository) *AuditService {
	return &AuditService{
		repo: repo,
	}
}

// Record appends one audit entry
func (s *AuditService) Record(ctx context.Context, actor, action, entity, entityID, detail string) {
	err := s.repo.Insert(ctx, &models.AuditEntry{
		Actor:    actor,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
	})
	if err != nil {
		slog.Error("Failed to write audit entry",
			"action", action,
			"entity", entity,
			"entity_id", entityID,
			"error", err)
	}
}

// ListRecent retrieves the latest audit entries
func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.repo.ListRecent(ctx, limit)
}
