package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frontierlab/labdesk/internal/model"
)

// All repository interfaces in one file
type (
	CatalogRepository interface {
		ListMain(ctx context.Context, filter model.CatalogFilter) ([]*model.CatalogEntry, error)
		ListChildren(ctx context.Context, parentIDs []int64) ([]*model.CatalogEntry, error)
		GetMany(ctx context.Context, ids []int64) ([]*model.CatalogEntry, error)
	}

	// VisitRepository owns the visit aggregate: demographics, payment, order
	// lines and ledger entries.
	VisitRepository interface {
		Create(ctx context.Context, visit *model.NewVisit) (*model.CreatedVisit, error)
		Get(ctx context.Context, id int64) (*model.Visit, error)
		GetPayment(ctx context.Context, visitID int64) (*model.Payment, error)
		ListLines(ctx context.Context, visitID int64) ([]model.OrderLine, error)
		UpdateDemographics(ctx context.Context, id int64, d model.Demographics) error
		Delete(ctx context.Context, id int64) error
		ListDay(ctx context.Context, from, to time.Time) ([]*model.VisitSummary, error)
	}

	ResultRepository interface {
		Get(ctx context.Context, visitID, testID int64) (*model.Result, error)
		ListEntries(ctx context.Context, visitID int64) ([]*model.ResultEntry, error)
		Upsert(ctx context.Context, visitID, testID int64, value, remarks string) (model.SaveStatus, error)
	}

	ReportRepository interface {
		Header(ctx context.Context, visitID int64) (*model.ReportHeader, error)
		SubtestRows(ctx context.Context, visitID int64) ([]model.ReportRow, error)
	}

	LabRepository interface {
		Identity(ctx context.Context) (*model.LabIdentity, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id int64) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	// Sequence hands out identifiers. Next never returns a value it has
	// returned before for the same key. Implementations that can take part
	// in tx do so; the others ignore it.
	Sequence interface {
		Next(ctx context.Context, tx *sqlx.Tx, key SequenceKey) (int64, error)
	}
)

// SequenceKey names a counter and how to seed it from existing rows the first
// time it is used.
type SequenceKey struct {
	Name     string
	SeedSQL  string
	SeedArgs []interface{}
	TTL      time.Duration
}

var (
	VisitSequence = SequenceKey{
		Name:    "patients",
		SeedSQL: `SELECT COALESCE(MAX(patient_id), 0) FROM patients`,
	}
	PaymentSequence = SequenceKey{
		Name:    "patient_payments",
		SeedSQL: `SELECT COALESCE(MAX(payment_id), 0) FROM patient_payments`,
	}
	ResultSequence = SequenceKey{
		Name:    "patient_test_results",
		SeedSQL: `SELECT COALESCE(MAX(result_id), 0) FROM patient_test_results`,
	}
	LedgerSequence = SequenceKey{
		Name:    "journal",
		SeedSQL: `SELECT COALESCE(MAX(trn_id), 0) FROM journal`,
	}
)

// LabNoPrefix starts the name of every per-day lab number counter.
const LabNoPrefix = "lab_no:"

// LabNoSequence is the per-day lab number counter for the given visit date.
func LabNoSequence(day time.Time) SequenceKey {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return SequenceKey{
		Name:     LabNoPrefix + start.Format("2006-01-02"),
		SeedSQL:  `SELECT COALESCE(MAX(lab_no), 0) FROM patients WHERE visit_date >= $1 AND visit_date < $2`,
		SeedArgs: []interface{}{start, start.AddDate(0, 0, 1)},
		TTL:      48 * time.Hour,
	}
}
