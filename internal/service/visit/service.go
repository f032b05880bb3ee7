package visit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/repository"
	"github.com/frontierlab/labdesk/internal/service/order"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
	"github.com/frontierlab/labdesk/pkg/metrics"
)

const unknownDoctor = "N/A"

type OrderBuilder interface {
	Build(ctx context.Context, sel order.Selection) (*order.Built, error)
}

type CommitRequest struct {
	Patient   model.Demographics `json:"patient"`
	Selection order.Selection    `json:"selection"`
	Discount  decimal.Decimal    `json:"discount"`
	Paid      decimal.Decimal    `json:"paid"`
}

type Options struct {
	Lab      model.LabIdentity
	Location *time.Location
	Now      func() time.Time
}

type Service struct {
	repo    repository.VisitRepository
	orders  OrderBuilder
	doctors repository.DoctorRepository
	labs    repository.LabRepository
	metrics *metrics.Metrics
	logger  zerolog.Logger
	opts    Options
}

func NewService(
	repo repository.VisitRepository,
	orders OrderBuilder,
	doctors repository.DoctorRepository,
	labs repository.LabRepository,
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
	return &Service{
		repo:    repo,
		orders:  orders,
		doctors: doctors,
		labs:    labs,
		metrics: m,
		logger:  logger.With().Str("component", "visit").Logger(),
		opts:    opts,
	}
}

func validateDemographics(d *model.Demographics) error {
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		return apperrors.Validation("patient name is required")
	}
	if d.Age < 0 || d.Age > 150 {
		return apperrors.Validation("age must be between 0 and 150")
	}
	return nil
}

// Commit registers a visit: it prices the selection, writes the visit with
// its payment, order lines and ledger rows atomically and returns the receipt
// snapshot. Input is validated before anything touches the database.
func (s *Service) Commit(ctx context.Context, req CommitRequest, op model.Operator) (*model.CommitResult, error) {
	start := time.Now()
	defer s.metrics.ObserveSince("commit_visit", start)

	if err := validateDemographics(&req.Patient); err != nil {
		s.metrics.VisitsFailed.WithLabelValues("validation").Inc()
		return nil, err
	}
	if req.Discount.IsNegative() || req.Paid.IsNegative() {
		s.metrics.VisitsFailed.WithLabelValues("validation").Inc()
		return nil, apperrors.Validation("discount and amount paid cannot be negative")
	}

	built, err := s.orders.Build(ctx, req.Selection)
	if err != nil {
		s.metrics.VisitsFailed.WithLabelValues("order").Inc()
		return nil, err
	}

	now := s.opts.Now().In(s.opts.Location)
	created, err := s.repo.Create(ctx, &model.NewVisit{
		Demographics: req.Patient,
		VisitDate:    now,
		Lines:        built.Lines,
		Total:        built.Total,
		Discount:     req.Discount,
		Paid:         req.Paid,
		OperatorID:   op.ID,
	})
	if err != nil {
		s.metrics.VisitsFailed.WithLabelValues("persistence").Inc()
		s.logger.Error().Err(err).Msg("Failed to commit visit")
		return nil, apperrors.WrapPersistence("commit visit", err)
	}

	snapshot := model.ReceiptSnapshot{
		VisitID:      created.VisitID,
		LabNo:        created.LabNo,
		PatientNo:    created.PatientNo,
		Name:         req.Patient.Name,
		Age:          req.Patient.Age,
		Sex:          req.Patient.Sex,
		Mobile:       req.Patient.Mobile,
		DoctorName:   s.doctorName(ctx, req.Patient.DoctorID),
		City:         req.Patient.City,
		Address:      req.Patient.Address,
		SampleSource: req.Patient.SampleSource,
		Lines:        receiptLines(built.Lines),
		Total:        built.Total,
		Discount:     req.Discount,
		Paid:         req.Paid,
		Date:         now,
		ReturnTime:   req.Patient.ReturnTime,
		Operator:     op.Display(),
		Lab:          s.lab(ctx),
	}

	s.metrics.VisitsCommitted.Inc()
	s.logger.Info().
		Int64("visit_id", created.VisitID).
		Int64("lab_no", created.LabNo).
		Int("lines", len(built.Lines)).
		Msg("Visit committed")

	return &model.CommitResult{
		VisitID:   created.VisitID,
		LabNo:     created.LabNo,
		PatientNo: created.PatientNo,
		Receipt:   snapshot,
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Visit, error) {
	visit, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.WrapPersistence("get visit", err)
	}
	return visit, nil
}

func (s *Service) Update(ctx context.Context, id int64, d model.Demographics) (*model.Visit, error) {
	if err := validateDemographics(&d); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateDemographics(ctx, id, d); err != nil {
		return nil, apperrors.WrapPersistence("update visit", err)
	}

	s.logger.Info().Int64("visit_id", id).Msg("Visit demographics updated")
	return s.Get(ctx, id)
}

// Delete removes the visit with its order lines, payment and results.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Error().Err(err).Int64("visit_id", id).Msg("Failed to delete visit")
		}
		return apperrors.WrapPersistence("delete visit", err)
	}

	s.metrics.VisitsDeleted.Inc()
	s.logger.Info().Int64("visit_id", id).Msg("Visit deleted")
	return nil
}

// ListDay returns the dashboard rows for the calendar day containing day in
// the lab's timezone, newest first.
func (s *Service) ListDay(ctx context.Context, day time.Time) ([]*model.VisitSummary, error) {
	day = day.In(s.opts.Location)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.opts.Location)

	visits, err := s.repo.ListDay(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.WrapPersistence("list visits", err)
	}

	for _, v := range visits {
		v.Balance = v.Total.Sub(v.Discount).Sub(v.Paid)
		v.Status = model.VisitStatusAwaiting
		if v.HasResults {
			v.Status = model.VisitStatusReady
		}
	}
	return visits, nil
}

func (s *Service) Today(ctx context.Context) ([]*model.VisitSummary, error) {
	return s.ListDay(ctx, s.opts.Now())
}

func (s *Service) Doctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return nil, apperrors.WrapPersistence("list doctors", err)
	}
	return doctors, nil
}

// ReceiptSnapshot rebuilds the receipt of an existing visit from what was
// persisted.
func (s *Service) ReceiptSnapshot(ctx context.Context, visitID int64) (*model.ReceiptSnapshot, error) {
	visit, err := s.Get(ctx, visitID)
	if err != nil {
		return nil, err
	}
	payment, err := s.repo.GetPayment(ctx, visitID)
	if err != nil {
		return nil, apperrors.WrapPersistence("get payment", err)
	}
	lines, err := s.repo.ListLines(ctx, visitID)
	if err != nil {
		return nil, apperrors.WrapPersistence("list order lines", err)
	}

	doctor := visit.DoctorName
	if doctor == "" {
		doctor = unknownDoctor
	}

	return &model.ReceiptSnapshot{
		VisitID:      visit.ID,
		LabNo:        visit.LabNo,
		PatientNo:    visit.PatientNo,
		Name:         visit.Name,
		Age:          visit.Age,
		Sex:          visit.Sex,
		Mobile:       visit.Mobile,
		DoctorName:   doctor,
		City:         visit.City,
		Address:      visit.Address,
		SampleSource: visit.SampleSource,
		Lines:        receiptLines(lines),
		Total:        payment.Total,
		Discount:     payment.Discount,
		Paid:         payment.Paid,
		Date:         visit.VisitDate.In(s.opts.Location),
		ReturnTime:   visit.ReturnTime,
		Operator:     payment.UserID,
		Lab:          s.lab(ctx),
	}, nil
}

func (s *Service) doctorName(ctx context.Context, id *int64) string {
	if id == nil {
		return unknownDoctor
	}
	doctor, err := s.doctors.Get(ctx, *id)
	if err != nil {
		s.logger.Warn().Err(err).Int64("doctor_id", *id).Msg("Doctor lookup failed")
		return unknownDoctor
	}
	return doctor.Name
}

// lab returns the stored lab identity, filling gaps from the configured
// defaults. Lookup failures only cost the stored values.
func (s *Service) lab(ctx context.Context) model.LabIdentity {
	lab, err := s.labs.Identity(ctx)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.Warn().Err(err).Msg("Lab info lookup failed")
		}
		return s.opts.Lab
	}
	if lab == nil {
		return s.opts.Lab
	}
	return lab.WithDefaults(s.opts.Lab)
}

func receiptLines(lines []model.OrderLine) []model.ReceiptLine {
	out := make([]model.ReceiptLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, model.ReceiptLine{
			DisplayNo:  l.DisplayNo,
			Name:       l.Name,
			Rate:       l.Rate,
			IsSub:      l.IsSub,
			MainTestID: l.MainTestID,
		})
	}
	return out
}

// Day parses a YYYY-MM-DD date in the lab's timezone.
func (s *Service) Day(date string) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", date, s.opts.Location)
	if err != nil {
		return time.Time{}, apperrors.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", date))
	}
	return day, nil
}
