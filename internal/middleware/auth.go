package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/lifecycle"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/auth"
	apperrors "github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/httputil"
)

const (
	ContextStaffID    = "staff_id"
	ContextStaffEmail = "staff_email"
	ContextStaffRole  = "staff_role"
)

type AuthMiddleware struct {
	authService auth.AuthService
}

func NewAuthMiddleware(authService auth.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the bearer token and sets the staff identity in
// context for downstream handlers.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondWithError(c, apperrors.Unauthorized(nil))
			c.Abort()
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			httputil.RespondWithError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextStaffID, claims.StaffID.String())
		c.Set(ContextStaffEmail, claims.Email)
		c.Set(ContextStaffRole, string(claims.Role))
		c.Next()
	}
}

// RequireRole rejects requests from staff below the given role.
func (m *AuthMiddleware) RequireRole(min model.StaffRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := model.ParseStaffRole(c.GetString(ContextStaffRole))
		if !ok {
			httputil.RespondWithError(c, apperrors.Forbidden("unknown role"))
			c.Abort()
			return
		}
		if !lifecycle.RoleAtLeast(role, min) {
			httputil.RespondWithError(c, apperrors.Forbidden("insufficient role"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Actor extracts the authenticated staff ID and role set by Authenticate.
func Actor(c *gin.Context) (uuid.UUID, model.StaffRole, error) {
	staffID, err := uuid.Parse(c.GetString(ContextStaffID))
	if err != nil {
		return uuid.Nil, "", apperrors.Unauthorized(err)
	}
	role, ok := model.ParseStaffRole(c.GetString(ContextStaffRole))
	if !ok {
		return uuid.Nil, "", apperrors.Unauthorized(nil)
	}
	return staffID, role, nil
}
