package model

// Reassignment describes an item already located to one custodian that an
// action would move to another. Applying it requires confirmation.
type Reassignment struct {
	Key         string `json:"key"`
	Description string `json:"description"`
	From        string `json:"from"`
	To          string `json:"to"`
}
