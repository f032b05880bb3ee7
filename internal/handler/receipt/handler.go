package receipt

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/frontierlab/labdesk/internal/handler"
	"github.com/frontierlab/labdesk/internal/middleware"
	"github.com/frontierlab/labdesk/internal/model"
	receiptService "github.com/frontierlab/labdesk/internal/service/receipt"
	"github.com/frontierlab/labdesk/pkg/httputil"
)

type Renderer interface {
	Render(snap *model.ReceiptSnapshot) (*receiptService.Receipts, error)
	RenderCopy(snap *model.ReceiptSnapshot, c receiptService.Copy) ([]byte, error)
}

type SnapshotLoader interface {
	ReceiptSnapshot(ctx context.Context, visitID int64) (*model.ReceiptSnapshot, error)
}

type Handler struct {
	renderer Renderer
	visits   SnapshotLoader
}

func NewHandler(renderer Renderer, visits SnapshotLoader) *Handler {
	return &Handler{renderer: renderer, visits: visits}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/visits/:id/receipt", h.GetReceipt)
	r.POST("/receipts/render", h.RenderReceipt)
}

// GetReceipt re-renders the receipt of a stored visit.
func (h *Handler) GetReceipt(c *gin.Context) {
	visitID, err := handler.ParamID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	copyKind, err := receiptService.ParseCopy(c.Query("copy"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	snap, err := h.visits.ReceiptSnapshot(c.Request.Context(), visitID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	doc, err := h.renderer.RenderCopy(snap, copyKind)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithDocument(c, http.StatusOK, doc, receiptService.FileName(snap, copyKind), handler.Download(c))
}

type renderedReceipts struct {
	CustomerHTML string `json:"customer_html"`
	LabHTML      string `json:"lab_html"`
	CustomerFile string `json:"customer_file"`
	LabFile      string `json:"lab_file"`
}

// RenderReceipt renders both copies from a snapshot sent by the caller.
func (h *Handler) RenderReceipt(c *gin.Context) {
	var snap model.ReceiptSnapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		_ = c.Error(middleware.BindingError(err))
		return
	}

	out, err := h.renderer.Render(&snap)
	if err != nil {
		_ = c.Error(err)
		return
	}
	httputil.RespondWithSuccess(c, renderedReceipts{
		CustomerHTML: string(out.CustomerHTML),
		LabHTML:      string(out.LabHTML),
		CustomerFile: receiptService.FileName(&snap, receiptService.CustomerCopy),
		LabFile:      receiptService.FileName(&snap, receiptService.LabCopy),
	})
}
