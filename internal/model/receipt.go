package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReceiptLine struct {
	DisplayNo  string          `json:"display_no"`
	Name       string          `json:"name"`
	Rate       decimal.Decimal `json:"rate"`
	IsSub      bool            `json:"is_sub"`
	MainTestID int64           `json:"main_test_id"`
}

// ReceiptSnapshot is everything printed on a receipt. It is produced by a
// visit commit and can be rendered without touching the database.
type ReceiptSnapshot struct {
	VisitID      int64           `json:"visit_id"`
	LabNo        int64           `json:"lab_no"`
	PatientNo    string          `json:"patient_no"`
	Name         string          `json:"name"`
	Age          int             `json:"age"`
	Sex          string          `json:"sex"`
	Mobile       string          `json:"mobile"`
	DoctorName   string          `json:"doctor_name"`
	City         string          `json:"city"`
	Address      string          `json:"address"`
	SampleSource string          `json:"sample_source"`
	Lines        []ReceiptLine   `json:"tests"`
	Total        decimal.Decimal `json:"total"`
	Discount     decimal.Decimal `json:"discount"`
	Paid         decimal.Decimal `json:"paid"`
	Date         time.Time       `json:"date"`
	ReturnTime   string          `json:"return_time"`
	Operator     string          `json:"operator"`
	Lab          LabIdentity     `json:"lab"`
}

func (s *ReceiptSnapshot) Balance() decimal.Decimal {
	return s.Total.Sub(s.Discount).Sub(s.Paid)
}
