package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/repository"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

type reportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) repository.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Header(ctx context.Context, visitID int64) (*model.ReportHeader, error) {
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
			COALESCE(d.doctor_name, '') AS doctor_name,
			COALESCE((
				SELECT MIN(t.report_id)
				FROM patient_tests pt
				JOIN tests t ON t.test_id = pt.test_id
				WHERE pt.patient_id = p.patient_id AND t.report_id IS NOT NULL
			), 1) AS report_id
		FROM patients p
		LEFT JOIN doctors d ON d.doctor_id = p.doctor_id
		WHERE p.patient_id = $1`

	var header model.ReportHeader
	if err := r.db.GetContext(ctx, &header, query, visitID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("visit", err)
		}
		return nil, fmt.Errorf("failed to get report header: %w", err)
	}
	return &header, nil
}

// SubtestRows returns the visit's results for sub-tests only, each with the
// first reference range by ref_id. Results stored against main tests are not
// part of the report.
func (r *reportRepository) SubtestRows(ctx context.Context, visitID int64) ([]model.ReportRow, error) {
	query := `
		SELECT
			m.test_id AS main_test_id,
			COALESCE(NULLIF(m.display_name, ''), m.test_name) AS main_test_name,
			t.test_id,
			t.display_no,
			t.test_name,
			COALESCE(t.unit, '') AS unit,
			res.test_value,
			res.remarks,
			nr.initial_value AS range_low,
			nr.final_value AS range_high
		FROM patient_test_results res
		JOIN tests t ON t.test_id = res.test_id
		JOIN tests m ON m.test_id = t.general_test_id
		LEFT JOIN LATERAL (
			SELECT n.initial_value, n.final_value
			FROM normal_ranges n
			WHERE n.test_id = t.test_id
			ORDER BY n.ref_id
			LIMIT 1
		) nr ON TRUE
		WHERE res.patient_id = $1
		  AND t.general_test_id IS NOT NULL
		  AND t.general_test_id <> 0
		ORDER BY m.test_id, COALESCE(CAST(t.display_no AS TEXT), 'ZZZ'), t.test_name`

	rows := []model.ReportRow{}
	if err := r.db.SelectContext(ctx, &rows, query, visitID); err != nil {
		return nil, fmt.Errorf("failed to list report rows: %w", err)
	}
	return rows, nil
}
