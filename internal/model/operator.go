package model

// Operator is the authenticated user entering data. Identity is issued by an
// external login service; this service only reads it.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (o Operator) Display() string {
	if o.Name != "" {
		return o.Name
	}
	return o.ID
}
