package catalog

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frontierlab/labdesk/internal/handler"
	"github.com/frontierlab/labdesk/internal/middleware"
	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/service/order"
	"github.com/frontierlab/labdesk/pkg/httputil"
)

type Service interface {
	ListMainTests(ctx context.Context, filter model.CatalogFilter) ([]*model.CatalogEntry, error)
	ListSubtests(ctx context.Context, mainTestID int64) ([]*model.CatalogEntry, error)
}

type OrderBuilder interface {
	Build(ctx context.Context, sel order.Selection) (*order.Built, error)
}

type Handler struct {
	catalog Service
	orders  OrderBuilder
}

func NewHandler(catalog Service, orders OrderBuilder) *Handler {
	return &Handler{catalog: catalog, orders: orders}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	tests := r.Group("/catalog/tests")
	{
		tests.GET("", h.ListMainTests)
		tests.GET("/:id/subtests", h.ListSubtests)
	}
	r.POST("/orders", h.BuildOrder)
}

func (h *Handler) ListMainTests(c *gin.Context) {
	var filter model.CatalogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		_ = c.Error(middleware.BindingError(err))
		return
	}

	tests, err := h.catalog.ListMainTests(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, tests)
}

func (h *Handler) ListSubtests(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	tests, err := h.catalog.ListSubtests(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, tests)
}

type buildOrderRequest struct {
	MainTestIDs        []int64 `json:"main_test_ids" binding:"required,min=1,dive,gt=0"`
	ExcludedSubtestIDs []int64 `json:"excluded_subtest_ids" binding:"omitempty,dive,gt=0"`
}

// BuildOrder prices a selection without persisting anything.
func (h *Handler) BuildOrder(c *gin.Context) {
	var req buildOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BindingError(err))
		return
	}

	built, err := h.orders.Build(c.Request.Context(), order.Selection{
		MainTestIDs:        req.MainTestIDs,
		ExcludedSubtestIDs: req.ExcludedSubtestIDs,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusOK, built)
}
