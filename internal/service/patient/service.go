package patient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/lifecycle"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/logger"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/metrics"
)

type PatientService interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest, actorID uuid.UUID) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, actorID uuid.UUID) (*model.Patient, error)
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	SetStatus(ctx context.Context, id uuid.UUID, next model.PatientStatus, actorID uuid.UUID, role model.StaffRole) (*model.Patient, error)
	RemoveFromProgram(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*model.Patient, error)
}

type Service struct {
	repo    repository.PatientRepository
	outbox  repository.OutboxRepository
	auditor *audit.Service
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(repo repository.PatientRepository, outbox repository.OutboxRepository, auditor *audit.Service, m *metrics.Metrics, logger *logger.Logger) *Service {
	return &Service{
		repo:    repo,
		outbox:  outbox,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}
}

// CreatePatient is the intake path. Lifecycle always starts active with the
// intake date stamped; clients cannot choose an initial status.
func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest, actorID uuid.UUID) (*model.Patient, error) {
	now := time.Now()
	patient := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		Email:               req.Email,
		Phone:               req.Phone,
		DateOfBirth:         req.DateOfBirth,
		Status:              model.PatientStatusActive,
		LevelOfCare:         req.LevelOfCare,
		AssignedTherapistID: req.AssignedTherapistID,
		AssignedClinicalID:  req.AssignedClinicalID,
		IntakeDate:          now,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}

	s.publishEvent(ctx, model.EventPatientCreated, patient)
	s.auditor.Log(ctx, actorID, "create", "patient", patient.ID, patient)

	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

// UpdatePatient changes demographics and assignment only. Status is not an
// updatable field here; all status writes go through SetStatus so the
// transition guard cannot be bypassed.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest, actorID uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		patient.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.LevelOfCare != nil {
		patient.LevelOfCare = req.LevelOfCare
	}
	if req.AssignedTherapistID != nil {
		patient.AssignedTherapistID = req.AssignedTherapistID
	}
	if req.AssignedClinicalID != nil {
		patient.AssignedClinicalID = req.AssignedClinicalID
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, model.EventPatientUpdated, patient)
	s.auditor.Log(ctx, actorID, "update", "patient", id, req)

	return patient, nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return s.repo.List(ctx, filters)
}

// SetStatus is the manual status-change path. The transition guard decides
// legality; the repository's compare-and-set decides races.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, next model.PatientStatus, actorID uuid.UUID, role model.StaffRole) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := lifecycle.Authorize(patient.Status, next, role, lifecycle.ViaManual); err != nil {
		return nil, err
	}

	var dischargeDate *time.Time
	if next == model.PatientStatusDischarged {
		now := time.Now()
		dischargeDate = &now
	}

	changed, err := s.repo.SetStatus(ctx, id, patient.Status, next, dischargeDate)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, errors.Conflict("patient status changed concurrently; re-fetch and retry")
	}

	previous := patient.Status
	patient.Status = next
	patient.DischargeDate = dischargeDate

	s.publishEvent(ctx, model.EventPatientStatusChanged, map[string]interface{}{
		"patient_id": id,
		"from":       previous,
		"to":         next,
		"actor_id":   actorID,
	})
	s.auditor.Log(ctx, actorID, "set_status", "patient", id, map[string]interface{}{
		"from": previous, "to": next,
	})
	s.metrics.StatusTransitions.WithLabelValues(string(next)).Inc()

	return patient, nil
}

// RemoveFromProgram clears the level-of-care assignment. This is program
// membership, not lifecycle: the patient's status is left exactly as it
// was.
func (s *Service) RemoveFromProgram(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ClearLevelOfCare(ctx, id); err != nil {
		return nil, err
	}
	patient.LevelOfCare = nil

	s.auditor.Log(ctx, actorID, "remove_from_program", "patient", id, nil)
	return patient, nil
}

func (s *Service) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal outbox payload", "event_type", eventType)
		return
	}
	if err := s.outbox.Create(ctx, &model.OutboxEvent{EventType: eventType, Payload: data}); err != nil {
		s.logger.Error(err, "failed to create outbox event", "event_type", eventType)
	}
}
