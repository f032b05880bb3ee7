package model

// LabIdentity is the singleton lab header printed on every document.
type LabIdentity struct {
	Name    string `db:"lab_name" json:"name"`
	Address string `db:"address" json:"address"`
	Phone   string `db:"phone_no" json:"phone"`
	Logo    []byte `db:"pad_logo" json:"-"`
}

// WithDefaults fills blank fields from def.
func (l LabIdentity) WithDefaults(def LabIdentity) LabIdentity {
	if l.Name == "" {
		l.Name = def.Name
	}
	if l.Address == "" {
		l.Address = def.Address
	}
	if l.Phone == "" {
		l.Phone = def.Phone
	}
	return l
}

type Doctor struct {
	ID   int64  `db:"doctor_id" json:"id"`
	Name string `db:"doctor_name" json:"name"`
}
