package receipt

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/render"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
	"github.com/frontierlab/labdesk/pkg/metrics"
)

type Copy string

const (
	CustomerCopy Copy = "customer"
	LabCopy      Copy = "lab"
)

func ParseCopy(s string) (Copy, error) {
	switch Copy(s) {
	case CustomerCopy, "":
		return CustomerCopy, nil
	case LabCopy:
		return LabCopy, nil
	default:
		return "", apperrors.Validation(fmt.Sprintf("unknown receipt copy %q", s))
	}
}

const (
	customerBadge = "CUSTOMER COPY"
	labBadge      = "LAB COPY - INTERNAL USE"
)

type Receipts struct {
	CustomerHTML []byte
	LabHTML      []byte
}

type Service struct {
	renderer          *render.Renderer
	metrics           *metrics.Metrics
	defaultReturnTime string
}

func NewService(renderer *render.Renderer, m *metrics.Metrics, defaultReturnTime string) *Service {
	if defaultReturnTime == "" {
		defaultReturnTime = "5:00 PM"
	}
	return &Service{renderer: renderer, metrics: m, defaultReturnTime: defaultReturnTime}
}

type view struct {
	*model.ReceiptSnapshot
	Badge        string
	Internal     bool
	Net          decimal.Decimal
	BalanceDue   decimal.Decimal
	BalanceClass string
	ReturnAt     string
}

func (s *Service) view(snap *model.ReceiptSnapshot, c Copy) view {
	balance := snap.Balance()
	v := view{
		ReceiptSnapshot: snap,
		Badge:           customerBadge,
		Net:             snap.Total.Sub(snap.Discount),
		BalanceDue:      balance,
		BalanceClass:    "balance-settled",
		ReturnAt:        render.Fallback(s.defaultReturnTime, snap.ReturnTime),
	}
	if balance.IsPositive() {
		v.BalanceClass = "balance-due"
	}
	if c == LabCopy {
		v.Badge = labBadge
		v.Internal = true
	}
	return v
}

// RenderCopy renders a single copy of the receipt.
func (s *Service) RenderCopy(snap *model.ReceiptSnapshot, c Copy) ([]byte, error) {
	doc, err := s.renderer.Execute("receipt", s.view(snap, c))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return doc, nil
}

// Render produces both copies from a snapshot. It never touches the
// database.
func (s *Service) Render(snap *model.ReceiptSnapshot) (*Receipts, error) {
	customer, err := s.RenderCopy(snap, CustomerCopy)
	if err != nil {
		return nil, err
	}
	lab, err := s.RenderCopy(snap, LabCopy)
	if err != nil {
		return nil, err
	}

	s.metrics.ReceiptsRendered.Inc()
	return &Receipts{CustomerHTML: customer, LabHTML: lab}, nil
}

func FileName(snap *model.ReceiptSnapshot, c Copy) string {
	return fmt.Sprintf("receipt_%s_lab%d_patient%s.html", c, snap.LabNo, snap.PatientNo)
}
