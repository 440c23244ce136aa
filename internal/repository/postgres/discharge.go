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

type dischargeRequestRepository struct {
	db *sqlx.DB
}

func NewDischargeRequestRepository(db *sqlx.DB) repository.DischargeRequestRepository {
	return &dischargeRequestRepository{db: db}
}

func (r *dischargeRequestRepository) Create(ctx context.Context, req *model.DischargeRequest) error {
	query := `
		INSERT INTO discharge_requests (
			id, patient_id, requested_by, requested_by_role, requested_at,
			reason, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.PatientID,
		req.RequestedBy,
		req.RequestedByRole,
		req.RequestedAt,
		req.Reason,
		req.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create discharge request: %w", err)
	}
	return nil
}

func (r *dischargeRequestRepository) Get(ctx context.Context, id uuid.UUID) (*model.DischargeRequest, error) {
	query := `SELECT * FROM discharge_requests WHERE id = $1`
	var req model.DischargeRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("discharge request", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get discharge request: %w", err)
	}
	return &req, nil
}

func (r *dischargeRequestRepository) List(ctx context.Context, patientID *uuid.UUID) ([]*model.DischargeRequest, error) {
	query := `SELECT * FROM discharge_requests`
	args := []interface{}{}
	if patientID != nil {
		query += ` WHERE patient_id = $1`
		args = append(args, *patientID)
	}
	query += ` ORDER BY requested_at DESC`

	var reqs []*model.DischargeRequest
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list discharge requests: %w", err)
	}
	return reqs, nil
}

func (r *dischargeRequestRepository) HasPending(ctx context.Context, patientID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM discharge_requests WHERE patient_id = $1 AND status = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, patientID, model.DischargeRequestPending); err != nil {
		return false, fmt.Errorf("failed to check pending discharge request: %w", err)
	}
	return exists, nil
}

// Review moves a request out of pending and, on approval, discharges the
// patient in the same transaction. The pending predicate guarantees
// at-most-one successful transition out of pending; a concurrent reviewer
// sees zero rows and the transaction rolls back.
func (r *dischargeRequestRepository) Review(ctx context.Context, req *model.DischargeRequest, dischargePatient bool) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin review transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE discharge_requests
		SET status = $1, reviewed_by = $2, reviewed_at = $3, review_notes = $4
		WHERE id = $5 AND status = $6
	`, req.Status, req.ReviewedBy, req.ReviewedAt, req.ReviewNotes, req.ID, model.DischargeRequestPending)
	if err != nil {
		return false, fmt.Errorf("failed to update discharge request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows == 0 {
		return false, nil
	}

	if dischargePatient {
		res, err = tx.ExecContext(ctx, `
			UPDATE patients
			SET status = $1, discharge_date = $2, updated_at = NOW()
			WHERE id = $3 AND status <> $1 AND deleted_at IS NULL
		`, model.PatientStatusDischarged, req.ReviewedAt, req.PatientID)
		if err != nil {
			return false, fmt.Errorf("failed to discharge patient on approval: %w", err)
		}
		rows, err = res.RowsAffected()
		if err != nil {
			return false, err
		}
		if rows == 0 {
			// Patient was discharged by another actor; approving this
			// request must not silently succeed.
			return false, apperrors.Conflict("patient was already discharged by another action")
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit review transaction: %w", err)
	}
	return true, nil
}
