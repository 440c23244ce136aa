package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
)

type AppointmentService interface {
	CreateAppointment(ctx context.Context, patientID uuid.UUID, req *model.CreateAppointmentRequest, actorID uuid.UUID) (*model.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	CompleteAppointment(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, reason string, actorID uuid.UUID) (*model.Appointment, error)
}

type Service struct {
	repo     repository.AppointmentRepository
	patients repository.PatientRepository
	auditor  *audit.Service
}

func NewService(repo repository.AppointmentRepository, patients repository.PatientRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, patients: patients, auditor: auditor}
}

func (s *Service) CreateAppointment(ctx context.Context, patientID uuid.UUID, req *model.CreateAppointmentRequest, actorID uuid.UUID) (*model.Appointment, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.Status == model.PatientStatusDischarged {
		return nil, errors.InvalidState("cannot schedule an appointment for a discharged patient")
	}

	now := time.Now()
	appt := &model.Appointment{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID: patientID,
		StaffID:   req.StaffID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.AppointmentStatusScheduled,
		Notes:     req.Notes,
	}

	if err := s.repo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.auditor.Log(ctx, actorID, "create", "appointment", appt.ID, appt)
	return appt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*model.Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentStatusScheduled {
		return nil, errors.InvalidState(fmt.Sprintf("cannot complete: appointment is %s", appt.Status))
	}

	appt.Status = model.AppointmentStatusCompleted
	appt.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actorID, "complete", "appointment", id, nil)
	return appt, nil
}

func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string, actorID uuid.UUID) (*model.Appointment, error) {
	if reason == "" {
		return nil, errors.BadRequest("a cancellation reason is required", nil)
	}

	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != model.AppointmentStatusScheduled {
		return nil, errors.InvalidState(fmt.Sprintf("cannot cancel: appointment is %s", appt.Status))
	}

	appt.Status = model.AppointmentStatusCancelled
	appt.CancelReason = &reason
	appt.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, appt); err != nil {
		return nil, err
	}

	s.auditor.Log(ctx, actorID, "cancel", "appointment", id, map[string]string{"reason": reason})
	return appt, nil
}
