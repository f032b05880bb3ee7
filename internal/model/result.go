package model

type Result struct {
	ID      int64  `db:"result_id" json:"id"`
	VisitID int64  `db:"patient_id" json:"visit_id"`
	TestID  int64  `db:"test_id" json:"test_id"`
	Value   string `db:"test_value" json:"value"`
	Remarks string `db:"remarks" json:"remarks"`
}

// ResultEntry is an ordered test of a visit together with whatever result
// has been stored for it.
type ResultEntry struct {
	TestID     int64  `db:"test_id" json:"test_id"`
	DisplayNo  string `db:"display_no" json:"display_no"`
	Name       string `db:"test_name" json:"name"`
	Unit       string `db:"unit" json:"unit"`
	IsSub      bool   `db:"is_sub" json:"is_sub"`
	MainTestID int64  `db:"main_test_id" json:"main_test_id"`
	Value      string `db:"test_value" json:"value"`
	Remarks    string `db:"remarks" json:"remarks"`
}

type SaveStatus string

const (
	SaveUpdated  SaveStatus = "updated"
	SaveInserted SaveStatus = "inserted"
	SaveFailed   SaveStatus = "failed"
)

type SaveOutcome struct {
	TestID int64      `json:"test_id"`
	Status SaveStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

func (o SaveOutcome) OK() bool {
	return o.Status != SaveFailed
}

type ResultInput struct {
	TestID  int64  `json:"test_id"`
	Value   string `json:"value"`
	Remarks string `json:"remarks"`
}

type BatchResult struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Outcomes  []SaveOutcome `json:"outcomes"`
}
