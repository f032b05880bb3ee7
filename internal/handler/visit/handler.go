package visit

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/frontierlab/labdesk/internal/handler"
	"github.com/frontierlab/labdesk/internal/middleware"
	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/service/order"
	visitService "github.com/frontierlab/labdesk/internal/service/visit"
	"github.com/frontierlab/labdesk/pkg/httputil"
)

type Service interface {
	Commit(ctx context.Context, req visitService.CommitRequest, op model.Operator) (*model.CommitResult, error)
	Get(ctx context.Context, id int64) (*model.Visit, error)
	Update(ctx context.Context, id int64, d model.Demographics) (*model.Visit, error)
	Delete(ctx context.Context, id int64) error
	ListDay(ctx context.Context, day time.Time) ([]*model.VisitSummary, error)
	Today(ctx context.Context) ([]*model.VisitSummary, error)
	Day(date string) (time.Time, error)
	Doctors(ctx context.Context) ([]*model.Doctor, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/doctors", h.ListDoctors)

	visits := r.Group("/visits")
	{
		visits.POST("", h.CommitVisit)
		visits.GET("", h.ListVisits)
		visits.GET("/:id", h.GetVisit)
		visits.PUT("/:id", h.UpdateVisit)
		visits.DELETE("/:id", h.DeleteVisit)
	}
}

type patientRequest struct {
	Name         string `json:"name" binding:"notblank,max=100"`
	Age          int    `json:"age" binding:"gte=0,lte=150"`
	Sex          string `json:"sex" binding:"max=10"`
	Mobile       string `json:"mobile" binding:"max=20"`
	City         string `json:"city" binding:"max=50"`
	Address      string `json:"address" binding:"max=200"`
	DoctorID     *int64 `json:"doctor_id" binding:"omitempty,gt=0"`
	SampleSource string `json:"sample_source" binding:"max=50"`
	ReturnTime   string `json:"return_time" binding:"max=20"`
}

func (p patientRequest) demographics() model.Demographics {
	return model.Demographics{
		Name:         p.Name,
		Age:          p.Age,
		Sex:          p.Sex,
		Mobile:       p.Mobile,
		City:         p.City,
		Address:      p.Address,
		DoctorID:     p.DoctorID,
		SampleSource: p.SampleSource,
		ReturnTime:   p.ReturnTime,
	}
}

type commitVisitRequest struct {
	Patient            patientRequest  `json:"patient"`
	MainTestIDs        []int64         `json:"main_test_ids" binding:"required,min=1,dive,gt=0"`
	ExcludedSubtestIDs []int64         `json:"excluded_subtest_ids" binding:"omitempty,dive,gt=0"`
	Discount           decimal.Decimal `json:"discount"`
	Paid               decimal.Decimal `json:"paid"`
}

func (h *Handler) CommitVisit(c *gin.Context) {
	var req commitVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BindingError(err))
		return
	}

	result, err := h.service.Commit(c.Request.Context(), visitService.CommitRequest{
		Patient: req.Patient.demographics(),
		Selection: order.Selection{
			MainTestIDs:        req.MainTestIDs,
			ExcludedSubtestIDs: req.ExcludedSubtestIDs,
		},
		Discount: req.Discount,
		Paid:     req.Paid,
	}, middleware.OperatorFrom(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithStatus(c, http.StatusCreated, result)
}

// ListVisits returns the dashboard for ?date=YYYY-MM-DD, today by default.
func (h *Handler) ListVisits(c *gin.Context) {
	var (
		visits []*model.VisitSummary
		err    error
	)
	if date := c.Query("date"); date != "" {
		day, perr := h.service.Day(date)
		if perr != nil {
			_ = c.Error(perr)
			return
		}
		visits, err = h.service.ListDay(c.Request.Context(), day)
	} else {
		visits, err = h.service.Today(c.Request.Context())
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, visits)
}

func (h *Handler) GetVisit(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	visit, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, visit)
}

func (h *Handler) UpdateVisit(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req patientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(middleware.BindingError(err))
		return
	}

	visit, err := h.service.Update(c.Request.Context(), id, req.demographics())
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, visit)
}

func (h *Handler) DeleteVisit(c *gin.Context) {
	id, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.service.Doctors(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}
