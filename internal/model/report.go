package model

import "time"

// ReportHeader is the visit, doctor and lab data printed above the results.
type ReportHeader struct {
	Visit
	ReportID int64 `db:"report_id" json:"report_id"`
}

// ReportRow is one sub-test result with its reference data.
type ReportRow struct {
	MainTestID    int64    `db:"main_test_id" json:"main_test_id"`
	MainTestName  string   `db:"main_test_name" json:"main_test_name"`
	TestID        int64    `db:"test_id" json:"test_id"`
	DisplayNo     *string  `db:"display_no" json:"display_no"`
	Name          string   `db:"test_name" json:"name"`
	Unit          string   `db:"unit" json:"unit"`
	Value         string   `db:"test_value" json:"value"`
	Remarks       string   `db:"remarks" json:"remarks"`
	Low           *float64 `db:"range_low" json:"-"`
	High          *float64 `db:"range_high" json:"-"`
	ReferenceText string   `db:"-" json:"reference"`
	Abnormal      bool     `db:"-" json:"abnormal"`
}

type ReportGroup struct {
	MainTestID   int64       `json:"main_test_id"`
	MainTestName string      `json:"main_test_name"`
	Rows         []ReportRow `json:"rows"`
}

type Report struct {
	Header       ReportHeader  `json:"header"`
	Lab          LabIdentity   `json:"lab"`
	Groups       []ReportGroup `json:"groups"`
	GeneratedAt  time.Time     `json:"generated_at"`
	Verification string        `json:"verification,omitempty"`
	QRCode       []byte        `json:"-"`
}

func (r *Report) RowCount() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Rows)
	}
	return n
}
