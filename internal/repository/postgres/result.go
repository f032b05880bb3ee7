package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/repository"
)

type resultRepository struct {
	BaseRepository
	seq repository.Sequence
}

func NewResultRepository(db *sqlx.DB, seq repository.Sequence) repository.ResultRepository {
	return &resultRepository{BaseRepository: NewBaseRepository(db), seq: seq}
}

// Get returns the stored result for the pair, or nil when there is none.
func (r *resultRepository) Get(ctx context.Context, visitID, testID int64) (*model.Result, error) {
	query := `
		SELECT result_id, patient_id, test_id, test_value, remarks
		FROM patient_test_results
		WHERE patient_id = $1 AND test_id = $2
		ORDER BY result_id
		LIMIT 1`

	var result model.Result
	if err := r.db.GetContext(ctx, &result, query, visitID, testID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	return &result, nil
}

func (r *resultRepository) ListEntries(ctx context.Context, visitID int64) ([]*model.ResultEntry, error) {
	query := `
		SELECT
			pt.test_id,
			COALESCE(t.display_no, '') AS display_no,
			COALESCE(NULLIF(t.display_name, ''), t.test_name) AS test_name,
			COALESCE(t.unit, '') AS unit,
			pt.is_sub,
			pt.main_test_id,
			COALESCE(res.test_value, '') AS test_value,
			COALESCE(res.remarks, '') AS remarks
		FROM patient_tests pt
		JOIN tests t ON t.test_id = pt.test_id
		LEFT JOIN LATERAL (
			SELECT test_value, remarks
			FROM patient_test_results r
			WHERE r.patient_id = pt.patient_id AND r.test_id = pt.test_id
			ORDER BY r.result_id
			LIMIT 1
		) res ON TRUE
		WHERE pt.patient_id = $1
		ORDER BY pt.id`

	entries := []*model.ResultEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, visitID); err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return entries, nil
}

// Upsert keeps at most one row per (visit, test). The pair is locked for the
// length of the transaction so two writers cannot both decide to insert.
func (r *resultRepository) Upsert(ctx context.Context, visitID, testID int64, value, remarks string) (model.SaveStatus, error) {
	var status model.SaveStatus

	err := r.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		lockKey := fmt.Sprintf("result:%d:%d", visitID, testID)
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return fmt.Errorf("failed to lock result: %w", err)
		}

		var resultID int64
		err := tx.GetContext(ctx, &resultID, `
			SELECT result_id FROM patient_test_results
			WHERE patient_id = $1 AND test_id = $2
			ORDER BY result_id
			LIMIT 1`, visitID, testID)

		switch {
		case err == nil:
			_, err = tx.ExecContext(ctx,
				`UPDATE patient_test_results SET test_value = $1, remarks = $2 WHERE result_id = $3`,
				value, remarks, resultID)
			if err != nil {
				return fmt.Errorf("failed to update result: %w", err)
			}
			status = model.SaveUpdated
			return nil

		case errors.Is(err, sql.ErrNoRows):
			resultID, err = r.seq.Next(ctx, tx, repository.ResultSequence)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO patient_test_results (result_id, patient_id, test_id, test_value, remarks)
				VALUES ($1, $2, $3, $4, $5)`,
				resultID, visitID, testID, value, remarks)
			if err != nil {
				return fmt.Errorf("failed to insert result: %w", err)
			}
			status = model.SaveInserted
			return nil

		default:
			return fmt.Errorf("failed to look up result: %w", err)
		}
	})
	if err != nil {
		return model.SaveFailed, err
	}
	return status, nil
}
