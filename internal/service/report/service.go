package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/skip2/go-qrcode"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/render"
	"github.com/frontierlab/labdesk/internal/repository"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
	"github.com/frontierlab/labdesk/pkg/metrics"
	"github.com/frontierlab/labdesk/pkg/refrange"
	"github.com/frontierlab/labdesk/pkg/security"
)

const defaultQRSize = 128

type Options struct {
	Lab      model.LabIdentity
	Location *time.Location
	Now      func() time.Time
	QRSize   int
}

type Service struct {
	reports  repository.ReportRepository
	labs     repository.LabRepository
	signer   *security.Signer
	renderer *render.Renderer
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	opts     Options
}

// NewService wires the report assembler. signer may be nil, in which case
// verification codes are printed unsigned.
func NewService(
	reports repository.ReportRepository,
	labs repository.LabRepository,
	signer *security.Signer,
	renderer *render.Renderer,
	m *metrics.Metrics,
	logger zerolog.Logger,
	opts Options,
) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.QRSize <= 0 {
		opts.QRSize = defaultQRSize
	}
	return &Service{
		reports:  reports,
		labs:     labs,
		signer:   signer,
		renderer: renderer,
		metrics:  m,
		logger:   logger.With().Str("component", "report").Logger(),
		opts:     opts,
	}
}

// Assemble loads a visit's sub-test results and shapes them into groups. It
// fails only when the visit is missing or the database is unreachable.
func (s *Service) Assemble(ctx context.Context, visitID int64) (*model.Report, error) {
	header, err := s.reports.Header(ctx, visitID)
	if err != nil {
		return nil, apperrors.WrapPersistence("load report header", err)
	}
	header.VisitDate = header.VisitDate.In(s.opts.Location)

	rows, err := s.reports.SubtestRows(ctx, visitID)
	if err != nil {
		return nil, apperrors.WrapPersistence("load report results", err)
	}

	report := &model.Report{
		Header:      *header,
		Lab:         s.lab(ctx),
		Groups:      Group(rows),
		GeneratedAt: s.opts.Now().In(s.opts.Location),
	}
	s.attachVerification(report)
	return report, nil
}

// Generate assembles and renders the report document.
func (s *Service) Generate(ctx context.Context, visitID int64) ([]byte, *model.Report, error) {
	start := time.Now()
	defer s.metrics.ObserveSince("generate_report", start)

	report, err := s.Assemble(ctx, visitID)
	if err != nil {
		outcome := "error"
		if apperrors.IsNotFound(err) {
			outcome = "not_found"
		}
		s.metrics.ReportsGenerated.WithLabelValues(outcome).Inc()
		return nil, nil, err
	}

	doc, err := s.renderer.Execute("report", report)
	if err != nil {
		s.metrics.ReportsGenerated.WithLabelValues("error").Inc()
		return nil, nil, apperrors.Internal(err)
	}

	s.metrics.ReportsGenerated.WithLabelValues("ok").Inc()
	s.logger.Info().
		Int64("visit_id", visitID).
		Int("rows", report.RowCount()).
		Msg("Report generated")
	return doc, report, nil
}

// RenderNotFound returns the minimal document shown when a visit is missing.
func (s *Service) RenderNotFound(visitID int64) []byte {
	doc, err := s.renderer.Execute("not_found", visitID)
	if err != nil {
		return []byte("<html><body><h2>Error: Patient data not found</h2></body></html>")
	}
	return doc
}

func FileName(report *model.Report) string {
	return fmt.Sprintf("LabReport_Lab%d_Patient%s.html", report.Header.LabNo, report.Header.PatientNo)
}

// Group resolves reference text and abnormality for each row and groups rows
// by main test id ascending. Within a group rows are ordered by display
// number as text, missing numbers last, then by name.
func Group(rows []model.ReportRow) []model.ReportGroup {
	sorted := make([]model.ReportRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.MainTestID != b.MainTestID {
			return a.MainTestID < b.MainTestID
		}
		if c := compareDisplayNo(a.DisplayNo, b.DisplayNo); c != 0 {
			return c < 0
		}
		return a.Name < b.Name
	})

	groups := []model.ReportGroup{}
	for _, row := range sorted {
		row.ReferenceText = refrange.Text(row.Low, row.High, row.Remarks)
		row.Abnormal = refrange.IsAbnormal(row.Value, row.ReferenceText)

		n := len(groups)
		if n == 0 || groups[n-1].MainTestID != row.MainTestID {
			groups = append(groups, model.ReportGroup{
				MainTestID:   row.MainTestID,
				MainTestName: row.MainTestName,
			})
			n++
		}
		groups[n-1].Rows = append(groups[n-1].Rows, row)
	}
	return groups
}

func compareDisplayNo(a, b *string) int {
	aMissing := a == nil || strings.TrimSpace(*a) == ""
	bMissing := b == nil || strings.TrimSpace(*b) == ""
	switch {
	case aMissing && bMissing:
		return 0
	case aMissing:
		return 1
	case bMissing:
		return -1
	default:
		return strings.Compare(*a, *b)
	}
}

// attachVerification adds the verification code and its QR image. Both are
// optional; failures are logged and the report goes out without them.
func (s *Service) attachVerification(report *model.Report) {
	h := report.Header
	code := fmt.Sprintf("LAB|%d|%d|%s|%s", h.LabNo, h.ID, h.PatientNo, h.VisitDate.Format("2006-01-02"))

	if s.signer != nil {
		sig, err := s.signer.Sign(code)
		if err != nil {
			s.logger.Warn().Err(err).Int64("visit_id", h.ID).Msg("Verification signing failed")
			return
		}
		code += "|" + sig
	}
	report.Verification = code

	png, err := qrcode.Encode(code, qrcode.Medium, s.opts.QRSize)
	if err != nil {
		s.logger.Warn().Err(err).Int64("visit_id", h.ID).Msg("QR code generation failed")
		return
	}
	report.QRCode = png
}

func (s *Service) lab(ctx context.Context) model.LabIdentity {
	lab, err := s.labs.Identity(ctx)
	if err != nil || lab == nil {
		if err != nil && !apperrors.IsNotFound(err) {
			s.logger.Warn().Err(err).Msg("Lab info lookup failed")
		}
		return s.opts.Lab
	}
	return lab.WithDefaults(s.opts.Lab)
}
