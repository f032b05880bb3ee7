package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/model"
)

func TestResultUpsertInsertsWhenMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResultRepository(db, newMemSequence())

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs("result:4:11").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT result_id FROM patient_test_results").
		WithArgs(int64(4), int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"result_id"}))
	mock.ExpectExec("INSERT INTO patient_test_results").
		WithArgs(int64(1), int64(4), int64(11), "13.5", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	status, err := repo.Upsert(context.Background(), 4, 11, "13.5", "")
	require.NoError(t, err)

	assert.Equal(t, model.SaveInserted, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultUpsertUpdatesExistingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResultRepository(db, newMemSequence())

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT result_id FROM patient_test_results").
		WillReturnRows(sqlmock.NewRows([]string{"result_id"}).AddRow(int64(42)))
	mock.ExpectExec("UPDATE patient_test_results").
		WithArgs("14.1", "rechecked", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	status, err := repo.Upsert(context.Background(), 4, 11, "14.1", "rechecked")
	require.NoError(t, err)

	assert.Equal(t, model.SaveUpdated, status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultUpsertFailureRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResultRepository(db, newMemSequence())

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT result_id FROM patient_test_results").
		WillReturnError(errors.New("statement timeout"))
	mock.ExpectRollback()

	status, err := repo.Upsert(context.Background(), 4, 11, "1", "")

	assert.Equal(t, model.SaveFailed, status)
	assert.ErrorContains(t, err, "statement timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultGetReturnsNilWhenMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewResultRepository(db, newMemSequence())

	mock.ExpectQuery("FROM patient_test_results").
		WillReturnRows(sqlmock.NewRows([]string{"result_id", "patient_id", "test_id", "test_value", "remarks"}))

	result, err := repo.Get(context.Background(), 1, 2)

	assert.NoError(t, err)
	assert.Nil(t, result)
}
