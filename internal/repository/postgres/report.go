package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Summary(ctx context.Context, start, end time.Time) (*model.OperationalSummary, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE status = 'active' AND deleted_at IS NULL)   AS active_patients,
			(SELECT COUNT(*) FROM patients WHERE status = 'inactive' AND deleted_at IS NULL) AS inactive_patients,
			(SELECT COUNT(*) FROM patients WHERE status = 'discharged' AND deleted_at IS NULL) AS discharged_patients,
			(SELECT COUNT(*) FROM discharge_requests WHERE status = 'pending')               AS pending_discharge_requests,
			(SELECT COUNT(*) FROM patients WHERE discharge_date BETWEEN $1 AND $2 AND deleted_at IS NULL) AS discharges_in_period,
			(SELECT COUNT(*) FROM patients WHERE intake_date BETWEEN $1 AND $2 AND deleted_at IS NULL)    AS intakes_in_period
	`
	var summary model.OperationalSummary
	if err := r.db.GetContext(ctx, &summary, query, start, end); err != nil {
		return nil, fmt.Errorf("failed to build operational summary: %w", err)
	}
	summary.PeriodStart = start
	summary.PeriodEnd = end
	return &summary, nil
}
