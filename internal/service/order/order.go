package order

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/frontierlab/labdesk/internal/model"
	apperrors "github.com/frontierlab/labdesk/pkg/errors"
)

// SubtestLoader supplies the sub-tests of a main test.
type SubtestLoader interface {
	Subtests(ctx context.Context, mainTestID int64) ([]model.CatalogEntry, error)
}

type SubtestChoice struct {
	Entry    model.CatalogEntry `json:"entry"`
	Included bool               `json:"included"`
}

type Item struct {
	Main     model.CatalogEntry `json:"main"`
	Subtests []SubtestChoice    `json:"subtests"`
}

// Order is an order in progress. It is a plain value: it can be serialized
// between wizard steps and carries no hidden state.
type Order struct {
	Items []Item `json:"items"`
}

// Select replaces the main test list. Mains that were already selected keep
// their sub-test choices; newly added mains get their sub-tests loaded, all
// included.
func (o *Order) Select(ctx context.Context, mains []model.CatalogEntry, loader SubtestLoader) error {
	existing := make(map[int64]Item, len(o.Items))
	for _, it := range o.Items {
		existing[it.Main.ID] = it
	}

	items := make([]Item, 0, len(mains))
	seen := make(map[int64]bool, len(mains))
	for _, main := range mains {
		if seen[main.ID] {
			continue
		}
		seen[main.ID] = true

		if it, ok := existing[main.ID]; ok {
			items = append(items, it)
			continue
		}

		subs, err := loader.Subtests(ctx, main.ID)
		if err != nil {
			return err
		}
		choices := make([]SubtestChoice, 0, len(subs))
		for _, sub := range subs {
			choices = append(choices, SubtestChoice{Entry: sub, Included: true})
		}
		items = append(items, Item{Main: main, Subtests: choices})
	}

	o.Items = items
	return nil
}

func (o *Order) ToggleSubtest(mainTestID int64, index int, included bool) error {
	for i := range o.Items {
		if o.Items[i].Main.ID != mainTestID {
			continue
		}
		if index < 0 || index >= len(o.Items[i].Subtests) {
			return apperrors.Validation(fmt.Sprintf("sub-test index %d out of range for test %d", index, mainTestID))
		}
		o.Items[i].Subtests[index].Included = included
		return nil
	}
	return apperrors.Validation(fmt.Sprintf("test %d is not selected", mainTestID))
}

// Exclude unticks a sub-test by its catalog id.
func (o *Order) Exclude(subtestID int64) error {
	for i := range o.Items {
		for j := range o.Items[i].Subtests {
			if o.Items[i].Subtests[j].Entry.ID == subtestID {
				o.Items[i].Subtests[j].Included = false
				return nil
			}
		}
	}
	return apperrors.Validation(fmt.Sprintf("sub-test %d is not part of the selection", subtestID))
}

// Remove drops a main test together with its sub-test group.
func (o *Order) Remove(index int) error {
	if index < 0 || index >= len(o.Items) {
		return apperrors.Validation(fmt.Sprintf("selection index %d out of range", index))
	}
	o.Items = slices.Delete(slices.Clone(o.Items), index, index+1)
	return nil
}

// Total is recomputed from the current selection on every call.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines() {
		total = total.Add(line.Rate)
	}
	return total
}

// Lines flattens the order into billed lines: every main test, followed by
// its included sub-tests.
func (o *Order) Lines() []model.OrderLine {
	var lines []model.OrderLine
	for _, it := range o.Items {
		lines = append(lines, model.OrderLine{
			TestID:     it.Main.ID,
			DisplayNo:  it.Main.DisplayNo,
			Name:       it.Main.Label(),
			Rate:       it.Main.Rate,
			MainTestID: it.Main.ID,
		})
		for _, sub := range it.Subtests {
			if !sub.Included {
				continue
			}
			lines = append(lines, model.OrderLine{
				TestID:     sub.Entry.ID,
				DisplayNo:  sub.Entry.DisplayNo,
				Name:       sub.Entry.Label(),
				Rate:       sub.Entry.Rate,
				IsSub:      true,
				MainTestID: it.Main.ID,
			})
		}
	}
	return lines
}

func (o *Order) Empty() bool {
	return len(o.Items) == 0
}
