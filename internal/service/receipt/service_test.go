package receipt

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/render"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
	"github.com/frontierlab/labdesk/pkg/metrics"
)

func snapshot(paid int64) *model.ReceiptSnapshot {
	return &model.ReceiptSnapshot{
		VisitID:      42,
		LabNo:        3,
		PatientNo:    "P42",
		Name:         "Ali Raza",
		Age:          30,
		Sex:          "Male",
		DoctorName:   "Dr. Khan",
		Address:      "House 12, Jinnah Road",
		SampleSource: "Walk-in",
		Lines: []model.ReceiptLine{
			{DisplayNo: "1", Name: "CBC", Rate: decimal.NewFromInt(500)},
			{DisplayNo: "1.1", Name: "Hb", Rate: decimal.NewFromInt(200), IsSub: true, MainTestID: 1},
		},
		Total:    decimal.NewFromInt(700),
		Discount: decimal.NewFromInt(100),
		Paid:     decimal.NewFromInt(paid),
		Date:     time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
		Operator: "Front Desk",
		Lab:      model.LabIdentity{Name: "Frontier Laboratory", Address: "Main Road", Phone: "111"},
	}
}

func newTestService(t *testing.T) *Service {
	r, err := render.New("Rs.")
	require.NoError(t, err)
	return NewService(r, metrics.New("test", prometheus.NewRegistry()), "")
}

func TestRenderCopiesDiffer(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.Render(snapshot(600))
	require.NoError(t, err)

	customer, lab := string(out.CustomerHTML), string(out.LabHTML)

	assert.Contains(t, customer, "CUSTOMER COPY")
	assert.NotContains(t, customer, "LAB COPY")
	assert.NotContains(t, customer, "House 12, Jinnah Road")
	assert.NotContains(t, customer, "Walk-in")
	assert.NotContains(t, customer, "Front Desk")
	assert.Contains(t, customer, "Results will be ready after 5:00 PM")

	assert.Contains(t, lab, "LAB COPY - INTERNAL USE")
	assert.Contains(t, lab, "House 12, Jinnah Road")
	assert.Contains(t, lab, "Walk-in")
	assert.Contains(t, lab, "Entered By: Front Desk")
	assert.Contains(t, lab, "Balance must be cleared before report release")
	assert.Contains(t, lab, "<td>Sub</td>")

	for _, doc := range []string{customer, lab} {
		assert.Contains(t, doc, "Rs. 700.00")
		assert.Contains(t, doc, "Rs. 600.00")
		assert.Contains(t, doc, `class="amount balance-settled"`)
	}
}

func TestRenderBalanceDue(t *testing.T) {
	svc := newTestService(t)

	snap := snapshot(400)
	snap.ReturnTime = "7:30 PM"
	doc, err := svc.RenderCopy(snap, CustomerCopy)
	require.NoError(t, err)

	assert.Contains(t, string(doc), `class="amount balance-due"`)
	assert.Contains(t, string(doc), "Rs. 200.00")
	assert.Contains(t, string(doc), "Results will be ready after 7:30 PM")
}

func TestFileNames(t *testing.T) {
	snap := snapshot(600)
	assert.Equal(t, "receipt_customer_lab3_patientP42.html", FileName(snap, CustomerCopy))
	assert.Equal(t, "receipt_lab_lab3_patientP42.html", FileName(snap, LabCopy))
}

func TestParseCopy(t *testing.T) {
	c, err := ParseCopy("")
	require.NoError(t, err)
	assert.Equal(t, CustomerCopy, c)

	c, err = ParseCopy("lab")
	require.NoError(t, err)
	assert.Equal(t, LabCopy, c)

	_, err = ParseCopy("office")
	assert.True(t, apperrors.IsValidation(err))
}
