package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/repository"
)

type catalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

const catalogColumns = `
	test_id,
	COALESCE(display_no, '') AS display_no,
	COALESCE(display_name, '') AS display_name,
	test_name,
	rate,
	general_test_id,
	COALESCE(unit, '') AS unit,
	COALESCE(report_id, 0) AS report_id`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Display numbers are compared as text, so "10" sorts before "2".
func (r *catalogRepository) ListMain(ctx context.Context, filter model.CatalogFilter) ([]*model.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + `
		FROM tests
		WHERE COALESCE(general_test_id, 0) = 0
		  AND display_no IS NOT NULL
		  AND TRIM(display_no) <> ''
		  AND ($1 = '' OR COALESCE(NULLIF(display_name, ''), test_name) ILIKE '%' || $1 || '%' ESCAPE '\')
		  AND ($2 = '' OR display_no ILIKE '%' || $2 || '%' ESCAPE '\')
		ORDER BY CAST(display_no AS TEXT), test_name`

	entries := []*model.CatalogEntry{}
	if err := r.db.SelectContext(ctx, &entries, query, escapeLike(filter.Name), escapeLike(filter.DisplayNo)); err != nil {
		return nil, fmt.Errorf("failed to list main tests: %w", err)
	}
	return entries, nil
}

func (r *catalogRepository) ListChildren(ctx context.Context, parentIDs []int64) ([]*model.CatalogEntry, error) {
	entries := []*model.CatalogEntry{}
	if len(parentIDs) == 0 {
		return entries, nil
	}

	query := `SELECT ` + catalogColumns + `
		FROM tests
		WHERE general_test_id = ANY($1)
		  AND general_test_id <> 0
		ORDER BY general_test_id, CAST(display_no AS TEXT) NULLS LAST, test_name`

	if err := r.db.SelectContext(ctx, &entries, query, pq.Array(parentIDs)); err != nil {
		return nil, fmt.Errorf("failed to list sub-tests: %w", err)
	}
	return entries, nil
}

func (r *catalogRepository) GetMany(ctx context.Context, ids []int64) ([]*model.CatalogEntry, error) {
	entries := []*model.CatalogEntry{}
	if len(ids) == 0 {
		return entries, nil
	}

	query := `SELECT ` + catalogColumns + ` FROM tests WHERE test_id = ANY($1)`
	if err := r.db.SelectContext(ctx, &entries, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to get tests: %w", err)
	}
	return entries, nil
}
