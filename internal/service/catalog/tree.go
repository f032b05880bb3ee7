package catalog

import (
	"context"

	"github.com/frontierlab/labdesk/internal/model"
)

// Tree is the catalog hierarchy for one request: an arena of entries with an
// index by id and an index by parent id. Children keep the order in which
// they were added.
type Tree struct {
	entries  []model.CatalogEntry
	byID     map[int64]int
	children map[int64][]int
}

func NewTree(mains, subs []*model.CatalogEntry) *Tree {
	t := &Tree{
		entries:  make([]model.CatalogEntry, 0, len(mains)+len(subs)),
		byID:     make(map[int64]int, len(mains)+len(subs)),
		children: make(map[int64][]int),
	}
	for _, e := range mains {
		t.add(e)
	}
	for _, e := range subs {
		t.add(e)
	}
	return t
}

func (t *Tree) add(e *model.CatalogEntry) {
	if e == nil {
		return
	}
	if _, dup := t.byID[e.ID]; dup {
		return
	}

	idx := len(t.entries)
	t.entries = append(t.entries, *e)
	t.byID[e.ID] = idx

	// Null and zero parents mark main tests; they are nobody's child.
	if e.IsSubtest() {
		t.children[*e.ParentID] = append(t.children[*e.ParentID], idx)
	}
}

func (t *Tree) Get(id int64) (model.CatalogEntry, bool) {
	idx, ok := t.byID[id]
	if !ok {
		return model.CatalogEntry{}, false
	}
	return t.entries[idx], true
}

func (t *Tree) Children(id int64) []model.CatalogEntry {
	idxs := t.children[id]
	out := make([]model.CatalogEntry, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, t.entries[idx])
	}
	return out
}

func (t *Tree) Len() int {
	return len(t.entries)
}

// Subtests lets a Tree act as an order.SubtestLoader with everything already
// in memory.
func (t *Tree) Subtests(_ context.Context, mainTestID int64) ([]model.CatalogEntry, error) {
	return t.Children(mainTestID), nil
}
