package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/service/catalog"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

type stubTreeLoader struct {
	tree *catalog.Tree
	err  error
}

func (s stubTreeLoader) LoadTree(context.Context, []int64) (*catalog.Tree, error) {
	return s.tree, s.err
}

func TestBuildAppliesExclusions(t *testing.T) {
	svc := NewService(stubTreeLoader{tree: fixtureTree()})

	built, err := svc.Build(context.Background(), Selection{
		MainTestIDs:        []int64{1, 1},
		ExcludedSubtestIDs: []int64{12},
	})
	require.NoError(t, err)

	assert.Equal(t, "700", built.Total.String())
	assert.Len(t, built.Lines, 2)
}

func TestBuildRejectsEmptySelection(t *testing.T) {
	svc := NewService(stubTreeLoader{tree: fixtureTree()})

	_, err := svc.Build(context.Background(), Selection{})

	assert.True(t, apperrors.IsValidation(err))
}

func TestBuildRejectsForeignExclusion(t *testing.T) {
	svc := NewService(stubTreeLoader{tree: fixtureTree()})

	_, err := svc.Build(context.Background(), Selection{
		MainTestIDs:        []int64{2},
		ExcludedSubtestIDs: []int64{11},
	})

	assert.True(t, apperrors.IsValidation(err))
}
