package order

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/service/catalog"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

type TreeLoader interface {
	LoadTree(ctx context.Context, mainIDs []int64) (*catalog.Tree, error)
}

// Selection is the operator's final choice: main tests plus the sub-tests to
// leave off the bill.
type Selection struct {
	MainTestIDs        []int64 `json:"main_test_ids"`
	ExcludedSubtestIDs []int64 `json:"excluded_subtest_ids"`
}

type Built struct {
	Order Order             `json:"order"`
	Lines []model.OrderLine `json:"lines"`
	Total decimal.Decimal   `json:"total"`
}

type Service struct {
	catalog TreeLoader
}

func NewService(catalog TreeLoader) *Service {
	return &Service{catalog: catalog}
}

// Build resolves a selection against the catalog in one pass and returns the
// billed lines and total.
func (s *Service) Build(ctx context.Context, sel Selection) (*Built, error) {
	ids := dedupe(sel.MainTestIDs)
	if len(ids) == 0 {
		return nil, apperrors.Validation("select at least one test")
	}

	tree, err := s.catalog.LoadTree(ctx, ids)
	if err != nil {
		return nil, err
	}

	mains := make([]model.CatalogEntry, 0, len(ids))
	for _, id := range ids {
		main, _ := tree.Get(id)
		mains = append(mains, main)
	}

	var o Order
	if err := o.Select(ctx, mains, tree); err != nil {
		return nil, err
	}
	for _, id := range sel.ExcludedSubtestIDs {
		if err := o.Exclude(id); err != nil {
			return nil, err
		}
	}

	return &Built{Order: o, Lines: o.Lines(), Total: o.Total()}, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
