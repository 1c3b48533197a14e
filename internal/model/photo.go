package model

import (
	"fmt"
	"strings"
)

// PhotoKind identifies which entity a photo belongs to.
type PhotoKind int

// Photo kinds.
const (
	PhotoInventory PhotoKind = iota + 1
	PhotoAdditional
	PhotoLocation
)

// PhotoKinds lists every kind in key-prefix order.
var PhotoKinds = []PhotoKind{PhotoInventory, PhotoAdditional, PhotoLocation}

func (k PhotoKind) String() string {
	switch k {
	case PhotoInventory:
		return "inventory"
	case PhotoAdditional:
		return "additional"
	case PhotoLocation:
		return "location"
	default:
		return fmt.Sprintf("PhotoKind(%d)", int(k))
	}
}

// ParsePhotoKind parses the textual form of a kind.
func ParsePhotoKind(s string) (PhotoKind, error) {
	for _, k := range PhotoKinds {
		if s == k.String() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown photo kind %q", s)
}

// PhotoKey is the blob key of the photo of entity id.
func PhotoKey(kind PhotoKind, id string) string {
	return kind.String() + "-" + id
}

// ParsePhotoKey splits a blob key into its kind and entity id.
func ParsePhotoKey(key string) (PhotoKind, string, bool) {
	for _, k := range PhotoKinds {
		if id, ok := strings.CutPrefix(key, k.String()+"-"); ok && id != "" {
			return k, id, true
		}
	}
	return 0, "", false
}
