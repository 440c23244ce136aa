package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/security"
)

type StaffService interface {
	CreateStaff(ctx context.Context, req *model.CreateStaffRequest, actorID uuid.UUID, actorRole model.StaffRole) (*model.Staff, error)
	GetStaff(ctx context.Context, id uuid.UUID) (*model.Staff, error)
	ListStaff(ctx context.Context, filters *model.StaffFilters) ([]*model.Staff, error)
}

type Service struct {
	repo    repository.StaffRepository
	hasher  security.PasswordHasher
	auditor *audit.Service
}

func NewService(repo repository.StaffRepository, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{repo: repo, hasher: hasher, auditor: auditor}
}

// CreateStaff provisions a staff account. Only admins manage accounts.
func (s *Service) CreateStaff(ctx context.Context, req *model.CreateStaffRequest, actorID uuid.UUID, actorRole model.StaffRole) (*model.Staff, error) {
	if actorRole != model.RoleAdmin {
		return nil, errors.Forbidden(fmt.Sprintf("role %s may not manage staff accounts", actorRole))
	}

	role, ok := model.ParseStaffRole(req.Role)
	if !ok {
		return nil, errors.BadRequest(fmt.Sprintf("unrecognized role %q", req.Role), nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.BadRequest("invalid password", err)
	}

	now := time.Now()
	staff := &model.Staff{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}

	if err := s.repo.Create(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}

	s.auditor.Log(ctx, actorID, "create", "staff", staff.ID, map[string]interface{}{
		"email": staff.Email, "role": staff.Role,
	})
	return staff, nil
}

func (s *Service) GetStaff(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListStaff(ctx context.Context, filters *model.StaffFilters) ([]*model.Staff, error) {
	return s.repo.List(ctx, filters)
}
