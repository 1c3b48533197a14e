package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Custodian is a person responsible for assets at one physical location.
type Custodian struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Area           string `json:"area"`
	Location       string `json:"location"`
	LocationSeq    int    `json:"locationSeq"`
	LocationWithID string `json:"locationWithId"`
}

var locationSuffix = regexp.MustCompile(`\s\d+$`)

// LocationLabel builds the printed location label, e.g. "OFICINA 03".
func LocationLabel(base string, seq int) string {
	return fmt.Sprintf("%s %02d", base, seq)
}

// LocationBase strips the trailing sequence number from a location label.
func LocationBase(label string) string {
	return strings.TrimSpace(locationSuffix.ReplaceAllString(strings.TrimSpace(label), ""))
}
