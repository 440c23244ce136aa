package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	apperrors "github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, first_name, last_name, email, phone, date_of_birth, status,
			level_of_care, assigned_therapist_id, assigned_clinical_id,
			intake_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.DateOfBirth,
		patient.Status,
		patient.LevelOfCare,
		patient.AssignedTherapistID,
		patient.AssignedClinicalID,
		patient.IntakeDate,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1 AND deleted_at IS NULL`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			level_of_care = $5, assigned_therapist_id = $6,
			assigned_clinical_id = $7, updated_at = $8
		WHERE id = $9 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query,
		patient.FirstName,
		patient.LastName,
		patient.Email,
		patient.Phone,
		patient.LevelOfCare,
		patient.AssignedTherapistID,
		patient.AssignedClinicalID,
		time.Now(),
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE deleted_at IS NULL`
	args := []interface{}{}
	idx := 1

	if filters != nil {
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", idx)
			args = append(args, filters.Status)
			idx++
		}
		if filters.TherapistID != uuid.Nil {
			query += fmt.Sprintf(" AND assigned_therapist_id = $%d", idx)
			args = append(args, filters.TherapistID)
			idx++
		}
		if filters.SearchTerm != "" {
			query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", idx, idx, idx)
			args = append(args, "%"+filters.SearchTerm+"%")
			idx++
		}
	}
	query += " ORDER BY created_at DESC"

	var patients []*model.Patient
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// SetStatus is the single write path for the status column outside the
// review transaction. The expected-status predicate makes concurrent
// writers lose cleanly instead of overwriting each other.
func (r *patientRepository) SetStatus(ctx context.Context, id uuid.UUID, expected, next model.PatientStatus, dischargeDate *time.Time) (bool, error) {
	query := `
		UPDATE patients
		SET status = $1,
			discharge_date = COALESCE($2, discharge_date),
			updated_at = NOW()
		WHERE id = $3 AND status = $4 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, next, dischargeDate, id, expected)
	if err != nil {
		return false, fmt.Errorf("failed to set patient status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *patientRepository) Discharge(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	query := `
		UPDATE patients
		SET status = $1, discharge_date = $2, updated_at = NOW()
		WHERE id = $3 AND status <> $1 AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, model.PatientStatusDischarged, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to discharge patient: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *patientRepository) ClearLevelOfCare(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE patients SET level_of_care = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to clear level of care: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.NotFound("patient", nil)
	}
	return nil
}
