package report

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Judeyaw1/MentalhealthCRM-sub002/internal/service/report"
	apperrors "github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/errors"
	"github.com/Judeyaw1/MentalhealthCRM-sub002/pkg/httputil"
)

type Handler struct {
	service report.ReportService
}

func NewHandler(service report.ReportService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/reports/summary", h.Summary)
}

func (h *Handler) Summary(c *gin.Context) {
	var start, end time.Time
	var err error

	if raw := c.Query("from"); raw != "" {
		start, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid from date", err))
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		end, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest("invalid to date", err))
			return
		}
	}

	summary, err := h.service.Summary(c.Request.Context(), start, end)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, summary)
}
