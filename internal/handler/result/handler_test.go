package result

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/middleware"
	"github.com/frontierlab/labdesk/internal/model"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Get(ctx context.Context, visitID, testID int64) (*model.Result, error) {
	args := m.Called(ctx, visitID, testID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Result), args.Error(1)
}

func (m *MockService) ListForVisit(ctx context.Context, visitID int64) ([]*model.ResultEntry, error) {
	args := m.Called(ctx, visitID)
	return args.Get(0).([]*model.ResultEntry), args.Error(1)
}

func (m *MockService) Save(ctx context.Context, visitID int64, in model.ResultInput) model.SaveOutcome {
	return m.Called(ctx, visitID, in).Get(0).(model.SaveOutcome)
}

func (m *MockService) SaveBatch(ctx context.Context, visitID int64, entries []model.ResultInput) (*model.BatchResult, error) {
	args := m.Called(ctx, visitID, entries)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BatchResult), args.Error(1)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	middleware.RegisterValidators()

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func put(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSaveResultsAllSaved(t *testing.T) {
	svc := new(MockService)
	r := setupRouter(svc)

	entries := []model.ResultInput{{TestID: 11, Value: "13.2"}, {TestID: 12, Value: "Negative"}}
	svc.On("SaveBatch", mock.Anything, int64(3), entries).Return(&model.BatchResult{
		Succeeded: 2,
		Outcomes: []model.SaveOutcome{
			{TestID: 11, Status: model.SaveInserted},
			{TestID: 12, Status: model.SaveUpdated},
		},
	}, nil)

	w := put(r, "/api/v1/visits/3/results",
		`{"results":[{"test_id":11,"value":"13.2"},{"test_id":12,"value":"Negative"}]}`)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSaveResultsPartialFailure(t *testing.T) {
	svc := new(MockService)
	r := setupRouter(svc)

	svc.On("SaveBatch", mock.Anything, int64(3), mock.Anything).Return(&model.BatchResult{
		Succeeded: 1,
		Failed:    1,
		Outcomes: []model.SaveOutcome{
			{TestID: 11, Status: model.SaveInserted},
			{TestID: 12, Status: model.SaveFailed, Error: "failed to save result"},
		},
	}, nil)

	w := put(r, "/api/v1/visits/3/results",
		`{"results":[{"test_id":11,"value":"1"},{"test_id":12,"value":"2"}]}`)

	require.Equal(t, http.StatusMultiStatus, w.Code)
	assert.Contains(t, w.Body.String(), "1 of 2 results failed to save")
	assert.Contains(t, w.Body.String(), `"status":"failed"`)
}

func TestSaveResultsRejectsBadTestID(t *testing.T) {
	svc := new(MockService)
	r := setupRouter(svc)

	w := put(r, "/api/v1/visits/3/results", `{"results":[{"test_id":0,"value":"1"}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveSingleResultFailure(t *testing.T) {
	svc := new(MockService)
	r := setupRouter(svc)

	svc.On("Save", mock.Anything, int64(3), model.ResultInput{TestID: 11, Value: "5"}).
		Return(model.SaveOutcome{TestID: 11, Status: model.SaveFailed, Error: "connection reset"})

	w := put(r, "/api/v1/visits/3/results/11", `{"value":"5"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
