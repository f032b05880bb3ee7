package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/frontierlab/labdesk/internal/model"
	"github.com/frontierlab/labdesk/internal/repository"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

type Service struct {
	repo repository.CatalogRepository
}

func NewService(repo repository.CatalogRepository) *Service {
	return &Service{repo: repo}
}

// ListMainTests returns orderable main tests with a non-blank display number.
// No match is an empty list, not an error.
func (s *Service) ListMainTests(ctx context.Context, filter model.CatalogFilter) ([]*model.CatalogEntry, error) {
	filter.Name = strings.TrimSpace(filter.Name)
	filter.DisplayNo = strings.TrimSpace(filter.DisplayNo)

	entries, err := s.repo.ListMain(ctx, filter)
	if err != nil {
		return nil, apperrors.Persistence("list main tests", err)
	}
	return entries, nil
}

func (s *Service) ListSubtests(ctx context.Context, mainTestID int64) ([]*model.CatalogEntry, error) {
	entries, err := s.repo.ListChildren(ctx, []int64{mainTestID})
	if err != nil {
		return nil, apperrors.Persistence("list sub-tests", err)
	}

	out := entries[:0]
	for _, e := range entries {
		if e.IsSubtest() && *e.ParentID == mainTestID {
			out = append(out, e)
		}
	}
	return out, nil
}

// LoadTree loads the given main tests and all of their sub-tests in two
// queries. Ids that are unknown or are themselves sub-tests are rejected.
func (s *Service) LoadTree(ctx context.Context, mainIDs []int64) (*Tree, error) {
	mains, err := s.repo.GetMany(ctx, mainIDs)
	if err != nil {
		return nil, apperrors.Persistence("load tests", err)
	}

	found := make(map[int64]bool, len(mains))
	for _, m := range mains {
		if m.IsSubtest() {
			return nil, apperrors.Validation(fmt.Sprintf("test %d is a sub-test and cannot be ordered on its own", m.ID))
		}
		found[m.ID] = true
	}
	for _, id := range mainIDs {
		if !found[id] {
			return nil, apperrors.Validation(fmt.Sprintf("unknown test %d", id))
		}
	}

	subs, err := s.repo.ListChildren(ctx, mainIDs)
	if err != nil {
		return nil, apperrors.Persistence("load sub-tests", err)
	}
	return NewTree(mains, subs), nil
}

// Subtests loads one main test's sub-tests on demand.
func (s *Service) Subtests(ctx context.Context, mainTestID int64) ([]model.CatalogEntry, error) {
	entries, err := s.ListSubtests(ctx, mainTestID)
	if err != nil {
		return nil, err
	}
	out := make([]model.CatalogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	return out, nil
}
