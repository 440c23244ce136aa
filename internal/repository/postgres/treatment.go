package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	apperrors "github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
)

type treatmentRecordRepository struct {
	db *sqlx.DB
}

func NewTreatmentRecordRepository(db *sqlx.DB) repository.TreatmentRecordRepository {
	return &treatmentRecordRepository{db: db}
}

func (r *treatmentRecordRepository) Create(ctx context.Context, record *model.TreatmentRecord) error {
	query := `
		INSERT INTO treatment_records (
			id, patient_id, clinician_id, session_date, type, notes,
			goals_complete, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.PatientID,
		record.ClinicianID,
		record.SessionDate,
		record.Type,
		record.Notes,
		record.GoalsComplete,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create treatment record: %w", err)
	}
	return nil
}

func (r *treatmentRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.TreatmentRecord, error) {
	query := `SELECT * FROM treatment_records WHERE id = $1 AND deleted_at IS NULL`
	var record model.TreatmentRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("treatment record", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get treatment record: %w", err)
	}
	return &record, nil
}

func (r *treatmentRecordRepository) List(ctx context.Context, patientID uuid.UUID, filters *model.TreatmentRecordFilters) ([]*model.TreatmentRecord, error) {
	query := `SELECT * FROM treatment_records WHERE patient_id = $1 AND deleted_at IS NULL`
	args := []interface{}{patientID}
	idx := 2

	if filters != nil {
		if filters.Type != "" {
			query += fmt.Sprintf(" AND type = $%d", idx)
			args = append(args, filters.Type)
			idx++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND session_date >= $%d", idx)
			args = append(args, filters.StartDate)
			idx++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND session_date <= $%d", idx)
			args = append(args, filters.EndDate)
			idx++
		}
	}
	query += " ORDER BY session_date DESC"

	var records []*model.TreatmentRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list treatment records: %w", err)
	}
	return records, nil
}

func (r *treatmentRecordRepository) SignOff(ctx context.Context, id, staffID uuid.UUID) error {
	query := `
		UPDATE treatment_records
		SET signed_off_by = $1, signed_off_at = NOW(), updated_at = NOW()
		WHERE id = $2 AND signed_off_by IS NULL AND deleted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, staffID, id)
	if err != nil {
		return fmt.Errorf("failed to sign off treatment record: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return apperrors.InvalidState("treatment record is already signed off or does not exist")
	}
	return nil
}

// GoalsComplete reads the flag from the most recent record; an empty
// history means goals are not complete.
func (r *treatmentRecordRepository) GoalsComplete(ctx context.Context, patientID uuid.UUID) (bool, error) {
	query := `
		SELECT goals_complete FROM treatment_records
		WHERE patient_id = $1 AND deleted_at IS NULL
		ORDER BY session_date DESC
		LIMIT 1
	`
	var complete bool
	err := r.db.GetContext(ctx, &complete, query, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read goals flag: %w", err)
	}
	return complete, nil
}

func (r *treatmentRecordRepository) HasSignOff(ctx context.Context, patientID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM treatment_records
			WHERE patient_id = $1 AND signed_off_by IS NOT NULL AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, patientID); err != nil {
		return false, fmt.Errorf("failed to check sign-off: %w", err)
	}
	return exists, nil
}
