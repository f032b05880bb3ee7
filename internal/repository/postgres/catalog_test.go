package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontierlab/labdesk/internal/model"
)

var catalogRowColumns = []string{
	"test_id", "display_no", "display_name", "test_name", "rate", "general_test_id", "unit", "report_id",
}

func TestCatalogListMainPassesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("ORDER BY CAST\\(display_no AS TEXT\\)").
		WithArgs("blood", "1").
		WillReturnRows(sqlmock.NewRows(catalogRowColumns).
			AddRow(int64(10), "10", "Lipid Profile", "Lipid Profile", "1200.00", nil, "", int64(2)).
			AddRow(int64(2), "2", "Blood CP", "Blood CP", "500.00", int64(0), "", int64(1)))

	entries, err := repo.ListMain(context.Background(), model.CatalogFilter{Name: "blood", DisplayNo: "1"})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "10", entries[0].DisplayNo)
	assert.Equal(t, "1200", entries[0].Rate.String())
	assert.False(t, entries[1].IsSubtest())
}

func TestCatalogListMainMatchesWildcardsLiterally(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("ESCAPE").
		WithArgs(`100\%`, `A\_1\\`).
		WillReturnRows(sqlmock.NewRows(catalogRowColumns))

	entries, err := repo.ListMain(context.Background(), model.CatalogFilter{Name: "100%", DisplayNo: `A_1\`})
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogListChildrenUsesArray(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCatalogRepository(db)

	mock.ExpectQuery("general_test_id = ANY").
		WithArgs(pq.Array([]int64{1, 2})).
		WillReturnRows(sqlmock.NewRows(catalogRowColumns).
			AddRow(int64(11), "", "", "Hemoglobin", "200", int64(1), "g/dL", int64(0)))

	entries, err := repo.ListChildren(context.Background(), []int64{1, 2})
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.True(t, entries[0].IsSubtest())
	assert.Equal(t, "g/dL", entries[0].Unit)
}

func TestCatalogListChildrenEmptyInput(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewCatalogRepository(db)

	entries, err := repo.ListChildren(context.Background(), nil)

	assert.NoError(t, err)
	assert.Empty(t, entries)
}
