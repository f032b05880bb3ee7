package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Demographics struct {
	Name         string `db:"patient_name" json:"name"`
	Age          int    `db:"age" json:"age"`
	Sex          string `db:"sex" json:"sex"`
	Mobile       string `db:"mobile_no" json:"mobile"`
	City         string `db:"city" json:"city"`
	Address      string `db:"address" json:"address"`
	DoctorID     *int64 `db:"doctor_id" json:"doctor_id,omitempty"`
	SampleSource string `db:"sample_source" json:"sample_source"`
	ReturnTime   string `db:"return_time" json:"return_time"`
}

// Visit is one patient encounter. It owns the order lines, the payment and
// the results recorded against it.
type Visit struct {
	ID         int64     `db:"patient_id" json:"id"`
	PatientNo  string    `db:"patient_no" json:"patient_no"`
	LabNo      int64     `db:"lab_no" json:"lab_no"`
	VisitDate  time.Time `db:"visit_date" json:"visit_date"`
	DoctorName string    `db:"doctor_name" json:"doctor_name"`
	Demographics
}

func PatientNo(visitID int64) string {
	return fmt.Sprintf("P%d", visitID)
}

type Payment struct {
	ID          int64           `db:"payment_id" json:"id"`
	VisitID     int64           `db:"patient_id" json:"visit_id"`
	Total       decimal.Decimal `db:"total_amount" json:"total"`
	Discount    decimal.Decimal `db:"discount" json:"discount"`
	Paid        decimal.Decimal `db:"amount_paid" json:"paid"`
	UserID      string          `db:"user_id" json:"user_id"`
	Description string          `db:"description" json:"description"`
}

// Net is the amount owed after discount.
func (p *Payment) Net() decimal.Decimal {
	return p.Total.Sub(p.Discount)
}

// Balance is always derived; it is never stored.
func (p *Payment) Balance() decimal.Decimal {
	return p.Total.Sub(p.Discount).Sub(p.Paid)
}

// OrderLine is one billed test of a visit.
type OrderLine struct {
	TestID     int64           `db:"test_id" json:"test_id"`
	DisplayNo  string          `db:"display_no" json:"display_no"`
	Name       string          `db:"test_name" json:"name"`
	Rate       decimal.Decimal `db:"rate" json:"rate"`
	IsSub      bool            `db:"is_sub" json:"is_sub"`
	MainTestID int64           `db:"main_test_id" json:"main_test_id"`
}

// NewVisit carries everything written by a single visit commit.
type NewVisit struct {
	Demographics Demographics
	VisitDate    time.Time
	Lines        []OrderLine
	Total        decimal.Decimal
	Discount     decimal.Decimal
	Paid         decimal.Decimal
	OperatorID   string
}

// CreatedVisit holds the identifiers assigned during a commit.
type CreatedVisit struct {
	VisitID   int64  `json:"visit_id"`
	LabNo     int64  `json:"lab_no"`
	PatientNo string `json:"patient_no"`
	PaymentID int64  `json:"payment_id"`
}

type CommitResult struct {
	VisitID   int64           `json:"visit_id"`
	LabNo     int64           `json:"lab_no"`
	PatientNo string          `json:"patient_no"`
	Receipt   ReceiptSnapshot `json:"receipt"`
}

type VisitStatus string

const (
	VisitStatusReady    VisitStatus = "Ready"
	VisitStatusAwaiting VisitStatus = "Awaiting Result"
)

// VisitSummary is one row of the day dashboard.
type VisitSummary struct {
	VisitID    int64           `db:"patient_id" json:"visit_id"`
	LabNo      int64           `db:"lab_no" json:"lab_no"`
	PatientNo  string          `db:"patient_no" json:"patient_no"`
	Name       string          `db:"patient_name" json:"name"`
	Age        int             `db:"age" json:"age"`
	Sex        string          `db:"sex" json:"sex"`
	Mobile     string          `db:"mobile_no" json:"mobile"`
	DoctorName string          `db:"doctor_name" json:"doctor_name"`
	Tests      string          `db:"tests" json:"tests"`
	Total      decimal.Decimal `db:"total_amount" json:"total"`
	Discount   decimal.Decimal `db:"discount" json:"discount"`
	Paid       decimal.Decimal `db:"amount_paid" json:"paid"`
	Balance    decimal.Decimal `db:"-" json:"balance"`
	HasResults bool            `db:"has_results" json:"-"`
	Status     VisitStatus     `db:"-" json:"status"`
	VisitDate  time.Time       `db:"visit_date" json:"visit_date"`
}

type LedgerType string

const (
	LedgerDebit  LedgerType = "Debit"
	LedgerCredit LedgerType = "Credit"
)

type LedgerEntry struct {
	ID          int64           `db:"trn_id" json:"id"`
	Date        time.Time       `db:"trn_date" json:"date"`
	AccountID   int             `db:"account_id" json:"account_id"`
	Description string          `db:"description" json:"description"`
	Type        LedgerType      `db:"trn_type" json:"type"`
	Amount      decimal.Decimal `db:"trn_amount" json:"amount"`
	VisitID     int64           `db:"patient_id" json:"visit_id"`
}

const (
	PaymentDescription = "New Patient Entry"
	LedgerDescription  = "Transaction Generated For Patient Entry"
)

// PaymentLedger returns the fixed double-entry rows recorded for a visit
// payment. Ids are assigned by the caller.
func PaymentLedger(visitID int64, at time.Time, paid decimal.Decimal) []LedgerEntry {
	shape := []struct {
		account int
		typ     LedgerType
	}{
		{1, LedgerDebit},
		{3, LedgerCredit},
		{1, LedgerCredit},
		{2, LedgerDebit},
	}

	entries := make([]LedgerEntry, 0, len(shape))
	for _, s := range shape {
		entries = append(entries, LedgerEntry{
			Date:        at,
			AccountID:   s.account,
			Description: LedgerDescription,
			Type:        s.typ,
			Amount:      paid,
			VisitID:     visitID,
		})
	}
	return entries
}
