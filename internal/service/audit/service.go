package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
)

type AuditService interface {
	Log(ctx context.Context, staffID uuid.UUID, action, entityType string, entityID uuid.UUID, changes interface{})
	List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error)
	Cleanup(ctx context.Context, before time.Time) (int64, error)
}

type Service struct {
	repo   repository.AuditRepository
	logger *logger.Logger
}

func NewService(repo repository.AuditRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an audit entry. Audit failures are logged and swallowed; they
// must never fail the operation being audited.
func (s *Service) Log(ctx context.Context, staffID uuid.UUID, action, entityType string, entityID uuid.UUID, changes interface{}) {
	var payload json.RawMessage
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			s.logger.Error(err, "failed to marshal audit changes")
		} else {
			payload = data
		}
	}

	entry := &model.AuditLog{
		ID:         uuid.New(),
		StaffID:    staffID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Changes:    payload,
		CreatedAt:  time.Now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error(err, "failed to write audit log",
			"action", action, "entity_type", entityType)
	}
}

func (s *Service) List(ctx context.Context, filters *model.AuditFilters) ([]*model.AuditLog, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeleteBefore(ctx, before)
}
