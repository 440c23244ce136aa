package staff

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/middleware"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/staff"
	apperrors "github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/httputil"
)

type Handler struct {
	service staff.StaffService
}

func NewHandler(service staff.StaffService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	s := r.Group("/staff")
	{
		s.POST("", h.CreateStaff)
		s.GET("", h.ListStaff)
		s.GET("/:id", h.GetStaff)
	}
}

func (h *Handler) CreateStaff(c *gin.Context) {
	var req model.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	actorID, role, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.service.CreateStaff(c.Request.Context(), &req, actorID, role)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, created)
}

func (h *Handler) GetStaff(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid staff ID", err))
		return
	}

	s, err := h.service.GetStaff(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, s)
}

func (h *Handler) ListStaff(c *gin.Context) {
	filters := &model.StaffFilters{
		SearchTerm: c.Query("search"),
		ActiveOnly: c.Query("active") == "true",
	}
	if role := c.Query("role"); role != "" {
		parsed, ok := model.ParseStaffRole(role)
		if !ok {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid role filter", nil))
			return
		}
		filters.Role = parsed
	}

	staffList, err := h.service.ListStaff(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, staffList)
}
