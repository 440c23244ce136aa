package patient

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/middleware"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/patient"
	apperrors "github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/httputil"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.PUT("/:id/status", h.SetStatus)
		patients.DELETE("/:id/program", h.RemoveFromProgram)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	actorID, _, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.service.CreatePatient(c.Request.Context(), &req, actorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, created)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	p, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, p)
}

func (h *Handler) ListPatients(c *gin.Context) {
	filters := &model.PatientFilters{
		SearchTerm: c.Query("search"),
	}
	if status := c.Query("status"); status != "" {
		parsed, ok := model.ParsePatientStatus(status)
		if !ok {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid status filter", nil))
			return
		}
		filters.Status = parsed
	}
	if therapist := c.Query("therapist_id"); therapist != "" {
		id, err := uuid.Parse(therapist)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid therapist ID", err))
			return
		}
		filters.TherapistID = id
	}

	patients, err := h.service.ListPatients(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patients)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	actorID, _, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	updated, err := h.service.UpdatePatient(c.Request.Context(), id, &req, actorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

// SetStatus is the only endpoint that changes a patient's lifecycle status.
// The transition guard decides, per role, whether the change is allowed.
func (h *Handler) SetStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	var req model.SetPatientStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	next, ok := model.ParsePatientStatus(req.Status)
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid status", nil))
		return
	}

	actorID, role, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	updated, err := h.service.SetStatus(c.Request.Context(), id, next, actorID, role)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}

func (h *Handler) RemoveFromProgram(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	actorID, _, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	updated, err := h.service.RemoveFromProgram(c.Request.Context(), id, actorID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, updated)
}
