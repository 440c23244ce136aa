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

type staffRepository struct {
	db *sqlx.DB
}

func NewStaffRepository(db *sqlx.DB) repository.StaffRepository {
	return &staffRepository{db: db}
}

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (
			id, first_name, last_name, email, password_hash, role, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.FirstName,
		staff.LastName,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.Active,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `SELECT * FROM staff WHERE id = $1 AND deleted_at IS NULL`
	var staff model.Staff
	err := r.db.GetContext(ctx, &staff, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("staff", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	query := `SELECT * FROM staff WHERE email = $1 AND deleted_at IS NULL`
	var staff model.Staff
	err := r.db.GetContext(ctx, &staff, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("staff", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff by email: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, filters *model.StaffFilters) ([]*model.Staff, error) {
	query := `SELECT * FROM staff WHERE deleted_at IS NULL`
	args := []interface{}{}
	idx := 1

	if filters != nil {
		if filters.Role != "" {
			query += fmt.Sprintf(" AND role = $%d", idx)
			args = append(args, filters.Role)
			idx++
		}
		if filters.ActiveOnly {
			query += " AND active = TRUE"
		}
		if filters.SearchTerm != "" {
			query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d)", idx, idx, idx)
			args = append(args, "%"+filters.SearchTerm+"%")
			idx++
		}
	}
	query += " ORDER BY last_name, first_name"

	var staff []*model.Staff
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

// ListByRole returns active staff whose role ranks at or above min. Used to
// fan notifications out to everyone who can act on a discharge request.
func (r *staffRepository) ListByRole(ctx context.Context, min model.StaffRole) ([]*model.Staff, error) {
	ranked := map[model.StaffRole][]model.StaffRole{
		model.RoleFrontDesk:  {model.RoleFrontDesk, model.RoleTherapist, model.RoleClinician, model.RoleSupervisor, model.RoleAdmin},
		model.RoleTherapist:  {model.RoleTherapist, model.RoleClinician, model.RoleSupervisor, model.RoleAdmin},
		model.RoleClinician:  {model.RoleClinician, model.RoleSupervisor, model.RoleAdmin},
		model.RoleSupervisor: {model.RoleSupervisor, model.RoleAdmin},
		model.RoleAdmin:      {model.RoleAdmin},
	}
	roles, ok := ranked[min]
	if !ok {
		return nil, fmt.Errorf("unrecognized role %q", min)
	}

	query, args, err := sqlx.In(
		`SELECT * FROM staff WHERE active = TRUE AND deleted_at IS NULL AND role IN (?) ORDER BY last_name`,
		roles,
	)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	var staff []*model.Staff
	if err := r.db.SelectContext(ctx, &staff, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list staff by role: %w", err)
	}
	return staff, nil
}
