package redis

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/repository"
)

func newTestSequence(t *testing.T) (*Sequence, *miniredis.Miniredis, sqlmock.Sqlmock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	return NewSequence(client, sqlx.NewDb(raw, "sqlmock"), zerolog.Nop()), mr, mock
}

func TestSequenceSeedsOnceThenIncrements(t *testing.T) {
	seq, _, mock := newTestSequence(t)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(patient_id\\), 0\\) FROM patients").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(41)))

	first, err := seq.Next(ctx, nil, repository.VisitSequence)
	require.NoError(t, err)
	second, err := seq.Next(ctx, nil, repository.VisitSequence)
	require.NoError(t, err)

	assert.Equal(t, int64(42), first)
	assert.Equal(t, int64(43), second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceLabNumberKeyExpires(t *testing.T) {
	seq, mr, mock := newTestSequence(t)
	key := repository.LabNoSequence(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))

	mock.ExpectQuery("MAX\\(lab_no\\)").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(int64(0)))

	v, err := seq.Next(context.Background(), nil, key)
	require.NoError(t, err)

	assert.Equal(t, int64(1), v)
	assert.Equal(t, 48*time.Hour, mr.TTL(keyPrefix+"lab_no:2026-03-14"))
}

func TestSequenceFailsWhenRedisIsDown(t *testing.T) {
	seq, mr, _ := newTestSequence(t)
	mr.Close()

	_, err := seq.Next(context.Background(), nil, repository.ResultSequence)

	assert.ErrorContains(t, err, "failed to advance sequence patient_test_results")
}
