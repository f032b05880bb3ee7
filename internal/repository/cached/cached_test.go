package cached

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/model"
)

type mockLabRepository struct {
	mock.Mock
}

func (m *mockLabRepository) Identity(ctx context.Context) (*model.LabIdentity, error) {
	args := m.Called(ctx)
	if lab := args.Get(0); lab != nil {
		return lab.(*model.LabIdentity), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDoctorRepository struct {
	mock.Mock
}

func (m *mockDoctorRepository) Get(ctx context.Context, id int64) (*model.Doctor, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*model.Doctor), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDoctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*model.Doctor), args.Error(1)
}

var testConfig = Config{TTL: time.Minute, CleanupInterval: time.Minute}

func TestLabIdentityIsCached(t *testing.T) {
	next := new(mockLabRepository)
	next.On("Identity", mock.Anything).Return(&model.LabIdentity{Name: "Frontier"}, nil).Once()
	repo := NewLabRepository(next, testConfig)

	for i := 0; i < 3; i++ {
		lab, err := repo.Identity(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Frontier", lab.Name)
	}
	next.AssertExpectations(t)
}

func TestLabIdentityErrorsAreNotCached(t *testing.T) {
	next := new(mockLabRepository)
	next.On("Identity", mock.Anything).Return(nil, errors.New("down")).Once()
	next.On("Identity", mock.Anything).Return(&model.LabIdentity{Name: "Frontier"}, nil).Once()
	repo := NewLabRepository(next, testConfig)

	_, err := repo.Identity(context.Background())
	assert.Error(t, err)

	lab, err := repo.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Frontier", lab.Name)
}

func TestDoctorGetUsesWarmList(t *testing.T) {
	next := new(mockDoctorRepository)
	next.On("List", mock.Anything).Return([]*model.Doctor{{ID: 3, Name: "Dr. Saeed"}}, nil).Once()
	repo := NewDoctorRepository(next, testConfig)

	_, err := repo.List(context.Background())
	require.NoError(t, err)

	d, err := repo.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Saeed", d.Name)
	next.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
