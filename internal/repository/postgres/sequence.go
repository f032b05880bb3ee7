package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frontierlab/labdesk/internal/repository"
)

type sequence struct {
	db *sqlx.DB
}

// NewSequence returns a Sequence backed by the id_sequences table. Each call
// increments the counter row under the caller's transaction, so concurrent
// callers serialize on the row lock and a rolled back transaction gives its
// value back.
func NewSequence(db *sqlx.DB) repository.Sequence {
	return &sequence{db: db}
}

const (
	bumpSequenceQuery = `UPDATE id_sequences SET value = value + 1 WHERE name = $1 RETURNING value`
	seedSequenceQuery = `
		INSERT INTO id_sequences (name, value) VALUES ($1, $2 + 1)
		ON CONFLICT (name) DO UPDATE SET value = id_sequences.value + 1
		RETURNING value`
	pruneDaySequencesQuery = `DELETE FROM id_sequences WHERE starts_with(name, $1) AND name < $2`
)

func (s *sequence) Next(ctx context.Context, tx *sqlx.Tx, key repository.SequenceKey) (int64, error) {
	var q queryer = s.db
	if tx != nil {
		q = tx
	}

	var value int64
	err := q.GetContext(ctx, &value, bumpSequenceQuery, key.Name)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to advance sequence %s: %w", key.Name, err)
	}

	// First use of this key: seed from the rows already in the table.
	var seed int64
	if err := q.GetContext(ctx, &seed, key.SeedSQL, key.SeedArgs...); err != nil {
		return 0, fmt.Errorf("failed to seed sequence %s: %w", key.Name, err)
	}

	if err := q.GetContext(ctx, &value, seedSequenceQuery, key.Name, seed); err != nil {
		return 0, fmt.Errorf("failed to create sequence %s: %w", key.Name, err)
	}
	return value, nil
}

// PruneDaySequences deletes the per-day lab number counters of days before
// cutoff and reports how many went. A pruned day that sees another visit
// reseeds from the patients table.
func PruneDaySequences(ctx context.Context, db *sqlx.DB, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, pruneDaySequencesQuery,
		repository.LabNoPrefix, repository.LabNoSequence(cutoff).Name)
	if err != nil {
		return 0, fmt.Errorf("failed to prune day sequences: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}
