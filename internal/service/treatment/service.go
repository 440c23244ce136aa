package treatment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/lifecycle"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
)

type TreatmentService interface {
	AddRecord(ctx context.Context, patientID uuid.UUID, req *model.CreateTreatmentRecordRequest, clinicianID uuid.UUID) (*model.TreatmentRecord, error)
	GetRecord(ctx context.Context, id uuid.UUID) (*model.TreatmentRecord, error)
	ListRecords(ctx context.Context, patientID uuid.UUID, filters *model.TreatmentRecordFilters) ([]*model.TreatmentRecord, error)
	SignOff(ctx context.Context, recordID, staffID uuid.UUID, role model.StaffRole) error
}

type Service struct {
	repo     repository.TreatmentRecordRepository
	patients repository.PatientRepository
	auditor  *audit.Service
}

func NewService(repo repository.TreatmentRecordRepository, patients repository.PatientRepository, auditor *audit.Service) *Service {
	return &Service{repo: repo, patients: patients, auditor: auditor}
}

func (s *Service) AddRecord(ctx context.Context, patientID uuid.UUID, req *model.CreateTreatmentRecordRequest, clinicianID uuid.UUID) (*model.TreatmentRecord, error) {
	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if patient.Status == model.PatientStatusDischarged {
		return nil, errors.InvalidState("cannot add a treatment record to a discharged patient")
	}

	now := time.Now()
	record := &model.TreatmentRecord{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		PatientID:     patientID,
		ClinicianID:   clinicianID,
		SessionDate:   req.SessionDate,
		Type:          req.Type,
		Notes:         req.Notes,
		GoalsComplete: req.GoalsComplete,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to add treatment record: %w", err)
	}

	s.auditor.Log(ctx, clinicianID, "create", "treatment_record", record.ID, record)
	return record, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*model.TreatmentRecord, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListRecords(ctx context.Context, patientID uuid.UUID, filters *model.TreatmentRecordFilters) ([]*model.TreatmentRecord, error) {
	return s.repo.List(ctx, patientID, filters)
}

// SignOff records the clinician attestation the discharge evaluator looks
// for. Only clinical staff and above may sign.
func (s *Service) SignOff(ctx context.Context, recordID, staffID uuid.UUID, role model.StaffRole) error {
	if !lifecycle.RoleAtLeast(role, model.RoleClinician) {
		return errors.Forbidden(fmt.Sprintf("role %s may not sign off treatment records", role))
	}

	if err := s.repo.SignOff(ctx, recordID, staffID); err != nil {
		return err
	}

	s.auditor.Log(ctx, staffID, "sign_off", "treatment_record", recordID, nil)
	return nil
}
