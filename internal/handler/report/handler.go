package report

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frontierlab/labdesk/internal/handler"
	"github.com/frontierlab/labdesk/internal/model"
	reportService "github.com/frontierlab/labdesk/internal/service/report"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
	"github.com/frontierlab/labdesk/pkg/httputil"
)

type Service interface {
	Generate(ctx context.Context, visitID int64) ([]byte, *model.Report, error)
	RenderNotFound(visitID int64) []byte
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/visits/:id/report", h.GenerateReport)
}

// GenerateReport serves the report document. A missing visit gets the
// not-found document with a 404.
func (h *Handler) GenerateReport(c *gin.Context) {
	visitID, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	doc, report, err := h.service.Generate(c.Request.Context(), visitID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			httputil.RespondWithDocument(c, http.StatusNotFound, h.service.RenderNotFound(visitID), "", false)
			return
		}
		_ = c.Error(err)
		return
	}

	httputil.RespondWithDocument(c, http.StatusOK, doc, reportService.FileName(report), handler.Download(c))
}
