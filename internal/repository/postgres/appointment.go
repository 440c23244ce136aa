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

type appointmentRepository struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, staff_id, start_time, end_time, status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		appt.ID,
		appt.PatientID,
		appt.StaffID,
		appt.StartTime,
		appt.EndTime,
		appt.Status,
		appt.Notes,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE id = $1 AND deleted_at IS NULL`
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, status = $3, notes = $4,
			cancel_reason = $5, updated_at = $6
		WHERE id = $7 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query,
		appt.StartTime,
		appt.EndTime,
		appt.Status,
		appt.Notes,
		appt.CancelReason,
		time.Now(),
		appt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `SELECT * FROM appointments WHERE deleted_at IS NULL`
	args := []interface{}{}
	idx := 1

	if filters != nil {
		if filters.PatientID != uuid.Nil {
			query += fmt.Sprintf(" AND patient_id = $%d", idx)
			args = append(args, filters.PatientID)
			idx++
		}
		if filters.StaffID != uuid.Nil {
			query += fmt.Sprintf(" AND staff_id = $%d", idx)
			args = append(args, filters.StaffID)
			idx++
		}
		if filters.Status != "" {
			query += fmt.Sprintf(" AND status = $%d", idx)
			args = append(args, filters.Status)
			idx++
		}
		if !filters.StartDate.IsZero() {
			query += fmt.Sprintf(" AND start_time >= $%d", idx)
			args = append(args, filters.StartDate)
			idx++
		}
		if !filters.EndDate.IsZero() {
			query += fmt.Sprintf(" AND start_time <= $%d", idx)
			args = append(args, filters.EndDate)
			idx++
		}
	}
	query += " ORDER BY start_time DESC"

	var appts []*model.Appointment
	if err := r.db.SelectContext(ctx, &appts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) CountCompleted(ctx context.Context, patientID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM appointments WHERE patient_id = $1 AND status = $2 AND deleted_at IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, query, patientID, model.AppointmentStatusCompleted); err != nil {
		return 0, fmt.Errorf("failed to count completed appointments: %w", err)
	}
	return count, nil
}

func (r *appointmentRepository) LastContact(ctx context.Context, patientID uuid.UUID) (*time.Time, error) {
	query := `
		SELECT MAX(start_time) FROM appointments
		WHERE patient_id = $1 AND status = $2 AND deleted_at IS NULL
	`
	var last sql.NullTime
	if err := r.db.GetContext(ctx, &last, query, patientID, model.AppointmentStatusCompleted); err != nil {
		return nil, fmt.Errorf("failed to get last contact: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}

func (r *appointmentRepository) HasUpcoming(ctx context.Context, patientID uuid.UUID, after time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE patient_id = $1 AND status = $2 AND start_time > $3 AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, patientID, model.AppointmentStatusScheduled, after); err != nil {
		return false, fmt.Errorf("failed to check upcoming appointments: %w", err)
	}
	return exists, nil
}
