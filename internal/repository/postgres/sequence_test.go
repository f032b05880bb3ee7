package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/repository"
)

func TestSequenceAdvancesExistingCounter(t *testing.T) {
	db, mock := newMockDB(t)
	seq := NewSequence(db)

	mock.ExpectQuery("UPDATE id_sequences").WithArgs("patients").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(18)))

	v, err := seq.Next(context.Background(), nil, repository.VisitSequence)
	require.NoError(t, err)

	assert.Equal(t, int64(18), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceSeedsFromTableMax(t *testing.T) {
	db, mock := newMockDB(t)
	seq := NewSequence(db)
	day := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)
	key := repository.LabNoSequence(day)

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE id_sequences").WithArgs("lab_no:2026-03-14").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(lab_no\\), 0\\) FROM patients").
		WithArgs(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(6)))
	mock.ExpectQuery("INSERT INTO id_sequences").WithArgs("lab_no:2026-03-14", int64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(7)))

	tx, err := db.Beginx()
	require.NoError(t, err)

	v, err := seq.Next(context.Background(), tx, key)
	require.NoError(t, err)

	assert.Equal(t, int64(7), v)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPruneDaySequencesKeepsCutoffDay(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("DELETE FROM id_sequences").
		WithArgs("lab_no:", "lab_no:2026-03-12").
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := PruneDaySequences(context.Background(), db, time.Date(2026, 3, 12, 16, 45, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
