package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/middleware"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/notification"
	apperrors "github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/httputil"
)

type Handler struct {
	service notification.NotificationService
}

func NewHandler(service notification.NotificationService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	n := r.Group("/notifications")
	{
		n.GET("", h.ListNotifications)
		n.POST("/:id/read", h.MarkRead)
	}
}

func (h *Handler) ListNotifications(c *gin.Context) {
	staffID, _, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	unreadOnly := c.Query("unread") == "true"
	notifications, err := h.service.ListForStaff(c.Request.Context(), staffID, unreadOnly)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, notifications)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid notification ID", err))
		return
	}

	staffID, _, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, staffID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"read": true})
}
