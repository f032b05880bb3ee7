package model

import (
	"github.com/shopspring/decimal"
)

// CatalogEntry is a row of the self-referencing test catalog. Entries with a
// non-zero parent are sub-tests of that parent.
type CatalogEntry struct {
	ID          int64           `db:"test_id" json:"id"`
	DisplayNo   string          `db:"display_no" json:"display_no"`
	DisplayName string          `db:"display_name" json:"display_name"`
	Name        string          `db:"test_name" json:"name"`
	Rate        decimal.Decimal `db:"rate" json:"rate"`
	ParentID    *int64          `db:"general_test_id" json:"parent_id,omitempty"`
	Unit        string          `db:"unit" json:"unit,omitempty"`
	ReportID    int64           `db:"report_id" json:"report_id,omitempty"`
}

func (e *CatalogEntry) IsSubtest() bool {
	return e.ParentID != nil && *e.ParentID != 0
}

// Label is the name printed on receipts and reports.
func (e *CatalogEntry) Label() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.Name
}

type CatalogFilter struct {
	Name      string `form:"name" json:"name"`
	DisplayNo string `form:"display_no" json:"display_no"`
}
