package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/repository"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

// memSequence counts per key name starting from 1.
type memSequence struct {
	mu     sync.Mutex
	values map[string]int64
}

func newMemSequence() *memSequence {
	return &memSequence{values: map[string]int64{}}
}

func (s *memSequence) Next(_ context.Context, _ *sqlx.Tx, key repository.SequenceKey) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key.Name]++
	return s.values[key.Name], nil
}
