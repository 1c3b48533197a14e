package model

import "time"

// AdditionalItem is an asset found on site that no ingested list contains.
type AdditionalItem struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	OriginalKey  string    `json:"originalKey,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	Model        string    `json:"model,omitempty"`
	Serial       string    `json:"serial,omitempty"`
	Area         string    `json:"area,omitempty"`
	Custodian    string    `json:"custodian"`
	Personal     bool      `json:"personal"`
	HasEntryForm *bool     `json:"hasEntryForm,omitempty"`
	AssignedKey  string    `json:"assignedKey,omitempty"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// NeedsRegularization reports whether a personal item was declared without
// entry paperwork.
func (a *AdditionalItem) NeedsRegularization() bool {
	return a.Personal && a.HasEntryForm != nil && !*a.HasEntryForm
}
