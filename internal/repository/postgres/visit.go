package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/repository"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

type visitRepository struct {
	BaseRepository
	seq repository.Sequence
}

func NewVisitRepository(db *sqlx.DB, seq repository.Sequence) repository.VisitRepository {
	return &visitRepository{BaseRepository: NewBaseRepository(db), seq: seq}
}

// Create writes the visit, its payment, one line per billed test and the
// payment ledger rows in a single transaction.
func (r *visitRepository) Create(ctx context.Context, v *model.NewVisit) (*model.CreatedVisit, error) {
	var created model.CreatedVisit

	err := r.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		visitID, err := r.seq.Next(ctx, tx, repository.VisitSequence)
		if err != nil {
			return err
		}
		labNo, err := r.seq.Next(ctx, tx, repository.LabNoSequence(v.VisitDate))
		if err != nil {
			return err
		}
		paymentID, err := r.seq.Next(ctx, tx, repository.PaymentSequence)
		if err != nil {
			return err
		}

		created = model.CreatedVisit{
			VisitID:   visitID,
			LabNo:     labNo,
			PatientNo: model.PatientNo(visitID),
			PaymentID: paymentID,
		}
		d := v.Demographics

		_, err = tx.ExecContext(ctx, `
			INSERT INTO patients (
				patient_id, patient_no, lab_no, patient_name, age, sex, mobile_no,
				city, address, doctor_id, sample_source, return_time, visit_date
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			visitID, created.PatientNo, labNo, d.Name, d.Age, d.Sex, d.Mobile,
			d.City, d.Address, d.DoctorID, d.SampleSource, d.ReturnTime, v.VisitDate,
		)
		if err != nil {
			return classify("insert visit", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO patient_payments (
				payment_id, patient_id, total_amount, discount, amount_paid, user_id, description
			) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			paymentID, visitID, v.Total, v.Discount, v.Paid, v.OperatorID, model.PaymentDescription,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		for _, line := range v.Lines {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO patient_tests (patient_id, test_id, payment_id, rate, is_sub, main_test_id, test_repeat)
				VALUES ($1, $2, $3, $4, $5, $6, 0)`,
				visitID, line.TestID, paymentID, line.Rate, line.IsSub, line.MainTestID,
			)
			if err != nil {
				return classify(fmt.Sprintf("insert order line for test %d", line.TestID), err)
			}
		}

		for _, entry := range model.PaymentLedger(visitID, v.VisitDate, v.Paid) {
			trnID, err := r.seq.Next(ctx, tx, repository.LedgerSequence)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO journal (trn_id, trn_date, account_id, description, trn_type, trn_amount, patient_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				trnID, entry.Date, entry.AccountID, entry.Description, entry.Type, entry.Amount, entry.VisitID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert ledger entry: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *visitRepository) Get(ctx context.Context, id int64) (*model.Visit, error) {
	query := `
		SELECT
			p.patient_id, p.patient_no, p.lab_no, p.visit_date, p.patient_name, p.age,
			COALESCE(p.sex, '') AS sex,
			COALESCE(p.mobile_no, '') AS mobile_no,
			COALESCE(p.city, '') AS city,
			COALESCE(p.address, '') AS address,
			p.doctor_id,
			COALESCE(p.sample_source, '') AS sample_source,
			COALESCE(p.return_time, '') AS return_time,
			COALESCE(d.doctor_name, '') AS doctor_name
		FROM patients p
		LEFT JOIN doctors d ON d.doctor_id = p.doctor_id
		WHERE p.patient_id = $1`

	var visit model.Visit
	if err := r.db.GetContext(ctx, &visit, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("visit", err)
		}
		return nil, fmt.Errorf("failed to get visit: %w", err)
	}
	return &visit, nil
}

func (r *visitRepository) GetPayment(ctx context.Context, visitID int64) (*model.Payment, error) {
	query := `
		SELECT payment_id, patient_id, total_amount, discount, amount_paid,
		       COALESCE(user_id, '') AS user_id, COALESCE(description, '') AS description
		FROM patient_payments
		WHERE patient_id = $1
		ORDER BY payment_id
		LIMIT 1`

	var payment model.Payment
	if err := r.db.GetContext(ctx, &payment, query, visitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("payment", err)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *visitRepository) ListLines(ctx context.Context, visitID int64) ([]model.OrderLine, error) {
	query := `
		SELECT pt.test_id,
		       COALESCE(t.display_no, '') AS display_no,
		       COALESCE(NULLIF(t.display_name, ''), t.test_name) AS test_name,
		       pt.rate, pt.is_sub, pt.main_test_id
		FROM patient_tests pt
		JOIN tests t ON t.test_id = pt.test_id
		WHERE pt.patient_id = $1
		ORDER BY pt.id`

	lines := []model.OrderLine{}
	if err := r.db.SelectContext(ctx, &lines, query, visitID); err != nil {
		return nil, fmt.Errorf("failed to list order lines: %w", err)
	}
	return lines, nil
}

func (r *visitRepository) UpdateDemographics(ctx context.Context, id int64, d model.Demographics) error {
	query := `
		UPDATE patients
		SET patient_name = $1, age = $2, sex = $3, mobile_no = $4, doctor_id = $5,
		    city = $6, address = $7, sample_source = $8, return_time = $9
		WHERE patient_id = $10`

	res, err := r.db.ExecContext(ctx, query,
		d.Name, d.Age, d.Sex, d.Mobile, d.DoctorID,
		d.City, d.Address, d.SampleSource, d.ReturnTime, id,
	)
	if err != nil {
		return classify("update visit", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("visit", nil)
	}
	return nil
}

// Delete removes the visit with its results, order lines and payment. Ledger
// entries stay behind as the accounting trail.
func (r *visitRepository) Delete(ctx context.Context, id int64) error {
	return r.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		dependents := []struct {
			table string
			query string
		}{
			{"results", `DELETE FROM patient_test_results WHERE patient_id = $1`},
			{"order lines", `DELETE FROM patient_tests WHERE patient_id = $1`},
			{"payment", `DELETE FROM patient_payments WHERE patient_id = $1`},
		}
		for _, d := range dependents {
			if _, err := tx.ExecContext(ctx, d.query, id); err != nil {
				return fmt.Errorf("failed to delete %s: %w", d.table, err)
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM patients WHERE patient_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete visit: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return apperrors.NotFound("visit", nil)
		}
		return nil
	})
}

func (r *visitRepository) ListDay(ctx context.Context, from, to time.Time) ([]*model.VisitSummary, error) {
	query := `
		SELECT
			p.patient_id, p.lab_no, p.patient_no, p.patient_name, p.age, p.visit_date,
			COALESCE(p.sex, '') AS sex,
			COALESCE(p.mobile_no, '') AS mobile_no,
			COALESCE(d.doctor_name, '') AS doctor_name,
			COALESCE((
				SELECT string_agg(COALESCE(NULLIF(t.display_name, ''), t.test_name), ', ' ORDER BY pt.id)
				FROM patient_tests pt
				JOIN tests t ON t.test_id = pt.test_id
				WHERE pt.patient_id = p.patient_id
			), '') AS tests,
			COALESCE(pp.total_amount, 0) AS total_amount,
			COALESCE(pp.discount, 0) AS discount,
			COALESCE(pp.amount_paid, 0) AS amount_paid,
			EXISTS (
				SELECT 1 FROM patient_test_results r WHERE r.patient_id = p.patient_id
			) AS has_results
		FROM patients p
		LEFT JOIN doctors d ON d.doctor_id = p.doctor_id
		LEFT JOIN patient_payments pp ON pp.patient_id = p.patient_id
		WHERE p.visit_date >= $1 AND p.visit_date < $2
		ORDER BY p.patient_id DESC`

	visits := []*model.VisitSummary{}
	if err := r.db.SelectContext(ctx, &visits, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}
