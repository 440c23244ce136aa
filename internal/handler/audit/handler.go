package audit

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/audit"
	apperrors "github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/httputil"
)

type Handler struct {
	service audit.AuditService
}

func NewHandler(service audit.AuditService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/audit-logs", h.ListLogs)
}

func (h *Handler) ListLogs(c *gin.Context) {
	filters := &model.AuditFilters{
		EntityType: c.Query("entity_type"),
	}
	if raw := c.Query("staff_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid staff ID", err))
			return
		}
		filters.StaffID = id
	}
	if raw := c.Query("entity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid entity ID", err))
			return
		}
		filters.EntityID = id
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid from date", err))
			return
		}
		filters.StartDate = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid to date", err))
			return
		}
		filters.EndDate = t
	}

	logs, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, logs)
}
