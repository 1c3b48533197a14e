// Package state holds the canonical in-memory session graph and the rules
// that keep its derived data consistent.
package state

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/erazemk/inventario/internal/model"
)

// Defaults for fields that are not empty in a fresh session.
const (
	DefaultTheme      = "light"
	DefaultLayoutPage = "page1"
	DefaultPageName   = "Página 1"
	DefaultPageColor  = "#ffffff"
)

// Layout is the floor-plan editor's data. Positions are kept opaque.
type Layout struct {
	Pages       map[string]map[string]json.RawMessage `json:"pages"`
	CurrentPage string                                `json:"currentPage"`
	PageNames   map[string]string                     `json:"pageNames"`
	PageColors  map[string]string                     `json:"pageColors"`
	ItemColors  map[string]string                     `json:"itemColors"`
	// Images maps a shape id to its key in the layoutImages collection.
	Images map[string]string `json:"images"`
}

// State is the whole audit session. It is not safe for concurrent use; the
// owner serialises access.
type State struct {
	LoggedIn          bool            `json:"loggedIn"`
	CurrentUser       *model.Operator `json:"currentUser"`
	SessionStartTime  *time.Time      `json:"sessionStartTime"`
	LastAutosave      *time.Time      `json:"lastAutosave"`
	Theme             string          `json:"theme"`
	ReadOnlyMode      bool            `json:"readOnlyMode"`
	InventoryFinished bool            `json:"inventoryFinished"`

	Inventory       []model.InventoryItem  `json:"inventory"`
	AdditionalItems []model.AdditionalItem `json:"additionalItems"`
	Custodians      []model.Custodian      `json:"custodians"`
	ActiveCustodian string                 `json:"activeCustodian"`
	// Locations is the last sequence number handed out per base location.
	Locations map[string]int `json:"locations"`

	AreaNames       map[string]string               `json:"areaNames"`
	AreaDirectory   map[string]model.DirectoryEntry `json:"areaDirectory"`
	ClosedAreas     map[string]model.ClosedArea     `json:"closedAreas"`
	CompletedAreas  map[string]bool                 `json:"completedAreas"`
	PersistentAreas []string                        `json:"persistentAreas"`

	Notes            map[string]string `json:"notes"`
	Photos           map[string]bool   `json:"photos"`
	AdditionalPhotos map[string]bool   `json:"additionalPhotos"`
	LocationPhotos   map[string]bool   `json:"locationPhotos"`

	ActivityLog []string `json:"activityLog"`
	Layout      Layout   `json:"layout"`

	serials map[string]struct{}
}

// Default returns a fresh, logged-out session.
func Default() *State {
	s := &State{}
	s.fillDefaults()
	return s
}

// Decode parses a stored document. Fields absent from data keep their
// defaults and the serial cache is rebuilt.
func Decode(data []byte) (*State, error) {
	s := &State{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	s.fillDefaults()
	s.RebuildSerialCache()
	return s, nil
}

// Encode serialises the session. Derived caches are not included.
func (s *State) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	return data, nil
}

// Reset returns s to a fresh session for the same operator and theme.
func (s *State) Reset(now time.Time) {
	user, theme := s.CurrentUser, s.Theme
	*s = State{}
	s.fillDefaults()
	s.LoggedIn = true
	s.CurrentUser = user
	s.Theme = theme
	s.SessionStartTime = &now
}

func (s *State) fillDefaults() {
	if s.Theme == "" {
		s.Theme = DefaultTheme
	}
	if s.Inventory == nil {
		s.Inventory = []model.InventoryItem{}
	}
	if s.AdditionalItems == nil {
		s.AdditionalItems = []model.AdditionalItem{}
	}
	if s.Custodians == nil {
		s.Custodians = []model.Custodian{}
	}
	if s.Locations == nil {
		s.Locations = map[string]int{}
	}
	if s.AreaNames == nil {
		s.AreaNames = map[string]string{}
	}
	if s.AreaDirectory == nil {
		s.AreaDirectory = map[string]model.DirectoryEntry{}
	}
	if s.ClosedAreas == nil {
		s.ClosedAreas = map[string]model.ClosedArea{}
	}
	if s.CompletedAreas == nil {
		s.CompletedAreas = map[string]bool{}
	}
	if s.PersistentAreas == nil {
		s.PersistentAreas = []string{}
	}
	if s.Notes == nil {
		s.Notes = map[string]string{}
	}
	if s.Photos == nil {
		s.Photos = map[string]bool{}
	}
	if s.AdditionalPhotos == nil {
		s.AdditionalPhotos = map[string]bool{}
	}
	if s.LocationPhotos == nil {
		s.LocationPhotos = map[string]bool{}
	}
	if s.ActivityLog == nil {
		s.ActivityLog = []string{}
	}

	l := &s.Layout
	if l.Pages == nil {
		l.Pages = map[string]map[string]json.RawMessage{DefaultLayoutPage: {}}
	}
	if l.CurrentPage == "" {
		l.CurrentPage = DefaultLayoutPage
	}
	if l.PageNames == nil {
		l.PageNames = map[string]string{DefaultLayoutPage: DefaultPageName}
	}
	if l.PageColors == nil {
		l.PageColors = map[string]string{DefaultLayoutPage: DefaultPageColor}
	}
	if l.ItemColors == nil {
		l.ItemColors = map[string]string{}
	}
	if l.Images == nil {
		l.Images = map[string]string{}
	}
}

// HasData reports whether the session holds any audit work.
func (s *State) HasData() bool {
	return len(s.Inventory) > 0 || len(s.Custodians) > 0 || len(s.AdditionalItems) > 0
}

// PhotoFlags returns the existence flags for kind.
func (s *State) PhotoFlags(kind model.PhotoKind) map[string]bool {
	switch kind {
	case model.PhotoInventory:
		return s.Photos
	case model.PhotoAdditional:
		return s.AdditionalPhotos
	case model.PhotoLocation:
		return s.LocationPhotos
	default:
		panic(fmt.Sprintf("state: unhandled photo kind %d", int(kind)))
	}
}
