package result

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/frontierlab/labdesk/internal/handler"
	"github.com/frontierlab/labdesk/internal/middleware"
	"github.com/frontierlab/labdesk/internal/model"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
	"github.com/frontierlab/labdesk/pkg/httputil"
)

type Service interface {
	Get(ctx context.Context, visitID, testID int64) (*model.Result, error)
	ListForVisit(ctx context.Context, visitID int64) ([]*model.ResultEntry, error)
	Save(ctx context.Context, visitID int64, in model.ResultInput) model.SaveOutcome
	SaveBatch(ctx context.Context, visitID int64, entries []model.ResultInput) (*model.BatchResult, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	results := r.Group("/visits/:id/results")
	{
		results.GET("", h.ListResults)
		results.PUT("", h.SaveResults)
		results.GET("/:testId", h.GetResult)
		results.PUT("/:testId", h.SaveResult)
	}
}

func (h *Handler) ListResults(c *gin.Context) {
	visitID, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	entries, err := h.service.ListForVisit(c.Request.Context(), visitID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) GetResult(c *gin.Context) {
	visitID, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	testID, err := handler.ParamID(c, "testId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	res, err := h.service.Get(c.Request.Context(), visitID, testID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

type resultRequest struct {
	Value   string `json:"value" binding:"max=200"`
	Remarks string `json:"remarks" binding:"max=500"`
}

func (h *Handler) SaveResult(c *gin.Context) {
	visitID, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	testID, err := handler.ParamID(c, "testId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req resultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BindingError(err))
		return
	}

	outcome := h.service.Save(c.Request.Context(), visitID, model.ResultInput{
		TestID:  testID,
		Value:   req.Value,
		Remarks: req.Remarks,
	})
	if !outcome.OK() {
		_ = c.Error(apperrors.Persistence("save result", errors.New(outcome.Error)))
		return
	}
	httputil.RespondWithSuccess(c, outcome)
}

type batchRequest struct {
	Results []batchEntry `json:"results" binding:"required,min=1,dive"`
}

type batchEntry struct {
	TestID  int64  `json:"test_id" binding:"gt=0"`
	Value   string `json:"value" binding:"max=200"`
	Remarks string `json:"remarks" binding:"max=500"`
}

// SaveResults saves a batch. Any failed entry turns the response into a 207
// carrying every outcome.
func (h *Handler) SaveResults(c *gin.Context) {
	visitID, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BindingError(err))
		return
	}

	entries := make([]model.ResultInput, 0, len(req.Results))
	for _, e := range req.Results {
		entries = append(entries, model.ResultInput{TestID: e.TestID, Value: e.Value, Remarks: e.Remarks})
	}

	batch, err := h.service.SaveBatch(c.Request.Context(), visitID, entries)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if batch.Failed > 0 {
		httputil.RespondWithPartial(c, batch, apperrors.PartialBatch(batch.Succeeded, batch.Failed))
		return
	}
	httputil.RespondWithSuccess(c, batch)
}
