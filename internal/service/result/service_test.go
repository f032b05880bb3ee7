package result

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/model"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
	"github.com/frontierlab/labdesk/pkg/metrics"
)

// memResults keeps at most one row per pair, like the database does under
// the advisory lock.
type memResults struct {
	mu      sync.Mutex
	rows    map[[2]int64]*model.Result
	failFor map[int64]bool
	nextID  int64
}

func newMemResults() *memResults {
	return &memResults{rows: map[[2]int64]*model.Result{}, failFor: map[int64]bool{}}
}

func (m *memResults) Get(_ context.Context, visitID, testID int64) (*model.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[[2]int64{visitID, testID}], nil
}

func (m *memResults) ListEntries(context.Context, int64) ([]*model.ResultEntry, error) {
	return nil, errors.New("not used")
}

func (m *memResults) Upsert(_ context.Context, visitID, testID int64, value, remarks string) (model.SaveStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFor[testID] {
		return model.SaveFailed, errors.New("deadlock detected")
	}
	key := [2]int64{visitID, testID}
	if r, ok := m.rows[key]; ok {
		r.Value, r.Remarks = value, remarks
		return model.SaveUpdated, nil
	}
	m.nextID++
	m.rows[key] = &model.Result{ID: m.nextID, VisitID: visitID, TestID: testID, Value: value, Remarks: remarks}
	return model.SaveInserted, nil
}

func newTestService(repo *memResults) *Service {
	return NewService(repo, metrics.New("test", prometheus.NewRegistry()), zerolog.Nop())
}

func TestSaveIsIdempotentPerPair(t *testing.T) {
	repo := newMemResults()
	svc := newTestService(repo)
	ctx := context.Background()

	first := svc.Save(ctx, 1, model.ResultInput{TestID: 11, Value: "12"})
	second := svc.Save(ctx, 1, model.ResultInput{TestID: 11, Value: "14", Remarks: "rechecked"})

	assert.Equal(t, model.SaveInserted, first.Status)
	assert.Equal(t, model.SaveUpdated, second.Status)
	assert.Len(t, repo.rows, 1)

	stored, err := svc.Get(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, "14", stored.Value)
	assert.Equal(t, "rechecked", stored.Remarks)
}

func TestGetMissingIsNil(t *testing.T) {
	svc := newTestService(newMemResults())

	res, err := svc.Get(context.Background(), 1, 99)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestSaveBatchToleratesPartialFailure(t *testing.T) {
	repo := newMemResults()
	repo.failFor[12] = true
	svc := newTestService(repo)

	batch, err := svc.SaveBatch(context.Background(), 1, []model.ResultInput{
		{TestID: 11, Value: "5"},
		{TestID: 12, Value: "6"},
		{TestID: 13, Value: "7"},
		{TestID: 14, Value: "8"},
		{TestID: 15, Value: "9"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)
	require.Len(t, batch.Outcomes, 5)
	assert.Equal(t, int64(12), batch.Outcomes[1].TestID)
	assert.Equal(t, model.SaveFailed, batch.Outcomes[1].Status)
	assert.Contains(t, batch.Outcomes[1].Error, "deadlock")
	assert.Equal(t, int64(15), batch.Outcomes[4].TestID)
	assert.Len(t, repo.rows, 4)
}

func TestSaveBatchRejectsEmptyInput(t *testing.T) {
	svc := newTestService(newMemResults())

	_, err := svc.SaveBatch(context.Background(), 1, nil)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.SaveBatch(context.Background(), 1, []model.ResultInput{{TestID: 0}})
	assert.True(t, apperrors.IsValidation(err))
}
