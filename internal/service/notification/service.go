package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
)

type NotificationService interface {
	NotifyStaff(ctx context.Context, staffID uuid.UUID, nType model.NotificationType, title, body string, patientID *uuid.UUID) error
	FanOutToRole(ctx context.Context, min model.StaffRole, nType model.NotificationType, title, body string, patientID *uuid.UUID) error
	ListForStaff(ctx context.Context, staffID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id, staffID uuid.UUID) error
}

type Service struct {
	repo   repository.NotificationRepository
	staff  repository.StaffRepository
	logger *logger.Logger
}

func NewService(repo repository.NotificationRepository, staff repository.StaffRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, staff: staff, logger: logger}
}

func (s *Service) NotifyStaff(ctx context.Context, staffID uuid.UUID, nType model.NotificationType, title, body string, patientID *uuid.UUID) error {
	n := &model.Notification{
		ID:        uuid.New(),
		StaffID:   staffID,
		Type:      nType,
		Title:     title,
		Body:      body,
		PatientID: patientID,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// FanOutToRole delivers one notification to every active staff member at or
// above the given role. Per-recipient failures are logged and skipped so
// one bad row does not starve the rest.
func (s *Service) FanOutToRole(ctx context.Context, min model.StaffRole, nType model.NotificationType, title, body string, patientID *uuid.UUID) error {
	recipients, err := s.staff.ListByRole(ctx, min)
	if err != nil {
		return fmt.Errorf("failed to resolve recipients: %w", err)
	}

	for _, r := range recipients {
		if err := s.NotifyStaff(ctx, r.ID, nType, title, body, patientID); err != nil {
			s.logger.Error(err, "failed to deliver notification", "staff_id", r.ID.String())
		}
	}
	return nil
}

func (s *Service) ListForStaff(ctx context.Context, staffID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	return s.repo.ListForStaff(ctx, staffID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, id, staffID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, staffID)
}
