package discharge

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/middleware"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/model"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/discharge"
	apperrors "github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/httputil"
)

type Handler struct {
	service discharge.DischargeService
}

func NewHandler(service discharge.DischargeService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients/:id")
	{
		patients.POST("/discharge-evaluation", h.Evaluate)
		patients.POST("/auto-discharge", h.AutoDischarge)
		patients.POST("/discharge-requests", h.CreateRequest)
	}

	requests := r.Group("/discharge-requests")
	{
		requests.GET("", h.ListRequests)
		requests.POST("/:id/review", h.ReviewRequest)
	}
}

// Evaluate runs the discharge criteria against the patient's current
// record. When all criteria pass the result carries a short-lived token
// that authorizes a subsequent auto-discharge.
func (h *Handler) Evaluate(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	result, err := h.service.EvaluateDischarge(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) AutoDischarge(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	var req model.AutoDischargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	actorID, role, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	patient, err := h.service.AutoDischarge(c.Request.Context(), patientID, req.EvaluationToken, actorID, role)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, patient)
}

func (h *Handler) CreateRequest(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
		return
	}

	var req model.CreateDischargeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	actorID, role, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	created, err := h.service.CreateDischargeRequest(c.Request.Context(), patientID, actorID, role, req.Reason)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, created)
}

func (h *Handler) ReviewRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request ID", err))
		return
	}

	var req model.ReviewDischargeRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid request body", err))
		return
	}

	decision, ok := model.ParseDischargeDecision(req.Decision)
	if !ok {
		httputil.RespondWithError(c, apperrors.BadRequest("invalid decision", nil))
		return
	}

	reviewerID, role, err := middleware.Actor(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	reviewed, err := h.service.ReviewDischargeRequest(c.Request.Context(), requestID, reviewerID, role, decision, req.Notes)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, reviewed)
}

func (h *Handler) ListRequests(c *gin.Context) {
	var patientID *uuid.UUID
	if raw := c.Query("patient_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid patient ID", err))
			return
		}
		patientID = &id
	}

	requests, err := h.service.ListDischargeRequests(c.Request.Context(), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, requests)
}
