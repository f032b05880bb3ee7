package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes fn within a transaction. Any error or panic from fn rolls
// the whole transaction back. Once begun the transaction ignores cancellation
// of ctx; fn receives the detached context and must use it for every
// statement.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(context.Context, *sqlx.Tx) error) error {
	ctx = context.WithoutCancel(ctx)
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// classify turns constraint violations reported by postgres into validation
// errors and wraps everything else with op.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "foreign_key_violation":
			return apperrors.Validation(fmt.Sprintf("failed to %s: referenced record does not exist (%s)", op, pqErr.Constraint))
		case "check_violation", "not_null_violation":
			return apperrors.Validation(fmt.Sprintf("failed to %s: %s", op, pqErr.Message))
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
