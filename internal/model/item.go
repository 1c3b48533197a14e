package model

import (
	"regexp"
	"strings"
	"time"
)

// YesNo is the two-valued flag used by ingested lists.
type YesNo string

// Flag values.
const (
	Yes YesNo = "SI"
	No  YesNo = "NO"
)

// Bool reports whether the flag is set.
func (f YesNo) Bool() bool { return f == Yes }

// Flag converts a bool into a YesNo.
func Flag(b bool) YesNo {
	if b {
		return Yes
	}
	return No
}

// ItemStatus is the lifecycle state of an inventory item.
type ItemStatus string

// Item statuses.
const (
	ItemStatusPending        ItemStatus = "pending"
	ItemStatusLocated        ItemStatus = "located"
	ItemStatusLocatedRelabel ItemStatus = "located+relabel"
)

// keyPattern matches a 5-6 digit key or a legacy decimal-fraction code.
var keyPattern = regexp.MustCompile(`^(?:\d{5,6}|0\.\d+)$`)

// IsInventoryKey reports whether s has the shape of an inventory key.
func IsInventoryKey(s string) bool {
	return keyPattern.MatchString(strings.TrimSpace(s))
}

// InventoryItem is one physical asset from an ingested list.
type InventoryItem struct {
	Key           string `json:"key"`
	Description   string `json:"description"`
	Office        string `json:"office,omitempty"`
	Type          string `json:"type,omitempty"`
	Brand         string `json:"brand,omitempty"`
	Model         string `json:"model,omitempty"`
	Serial        string `json:"serial,omitempty"`
	StartDate     string `json:"startDate,omitempty"`
	Remission     string `json:"remission,omitempty"`
	RemissionDate string `json:"remissionDate,omitempty"`
	Invoice       string `json:"invoice,omitempty"`
	InvoiceDate   string `json:"invoiceDate,omitempty"`
	Year          string `json:"year,omitempty"`

	Custodian    string     `json:"custodian"`
	Located      YesNo      `json:"located"`
	Relabel      YesNo      `json:"relabel"`
	LocatedAt    *time.Time `json:"locatedAt"`
	AreaMismatch bool       `json:"areaMismatch"`

	ListID   int64  `json:"listId"`
	Area     string `json:"area"`
	BookType string `json:"bookType"`
	FileName string `json:"fileName"`
}

// Status derives the lifecycle state from the located and relabel flags.
func (it *InventoryItem) Status() ItemStatus {
	switch {
	case !it.Located.Bool():
		return ItemStatusPending
	case it.Relabel.Bool():
		return ItemStatusLocatedRelabel
	default:
		return ItemStatusLocated
	}
}

// DisplayKey renders legacy "0.NNN" keys the way they are printed on labels.
func DisplayKey(key string) string {
	if strings.HasPrefix(key, "0.") {
		return key[1:]
	}
	return key
}
