package auth

import (
	"context"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/repository"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/auth"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/security"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

type Service struct {
	staffRepo repository.StaffRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
	auditor   *audit.Service
}

func NewService(staffRepo repository.StaffRepository, jwtSvc auth.JWTService, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{
		staffRepo: staffRepo,
		jwtSvc:    jwtSvc,
		hasher:    hasher,
		auditor:   auditor,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		// Same answer for a missing account and a bad password.
		return nil, errors.Unauthorized(nil)
	}
	if !staff.Active {
		return nil, errors.Unauthorized(nil)
	}

	if err := s.hasher.Compare(staff.PasswordHash, password); err != nil {
		return nil, errors.Unauthorized(err)
	}

	return s.issueTokens(ctx, staff)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}

	staff, err := s.staffRepo.Get(ctx, claims.StaffID)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}
	if !staff.Active {
		return nil, errors.Unauthorized(nil)
	}

	return s.issueTokens(ctx, staff)
}

func (s *Service) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}
	return claims, nil
}

func (s *Service) issueTokens(ctx context.Context, staff *model.Staff) (*model.LoginResponse, error) {
	access, err := s.jwtSvc.GenerateAccessToken(staff)
	if err != nil {
		return nil, errors.Internal(err)
	}
	refresh, err := s.jwtSvc.GenerateRefreshToken(staff)
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.auditor.Log(ctx, staff.ID, "login", "auth", staff.ID, nil)

	return &model.LoginResponse{
		Token:        access,
		RefreshToken: refresh,
		Staff:        staff,
	}, nil
}
