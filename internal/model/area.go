package model

import "time"

// Sentinel partition values used when a sheet lacks the expected cells.
const (
	UnknownArea     = "Sin Área"
	UnknownBookType = "Sin Tipo"
)

// DirectoryEntry names the person responsible for an area.
type DirectoryEntry struct {
	FullName string `json:"fullName"`
	Name     string `json:"name"`
	Title    string `json:"title"`
}

// ClosedArea records the finalisation of an area.
type ClosedArea struct {
	Responsible string    `json:"responsible"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
}
