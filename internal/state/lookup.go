package state

import (
	"strings"

	"github.com/erazemk/inventario/internal/model"
)

// Item returns the inventory item with key, or nil.
func (s *State) Item(key string) *model.InventoryItem {
	for i := range s.Inventory {
		if s.Inventory[i].Key == key {
			return &s.Inventory[i]
		}
	}
	return nil
}

// Additional returns the additional item with id, or nil.
func (s *State) Additional(id string) *model.AdditionalItem {
	for i := range s.AdditionalItems {
		if s.AdditionalItems[i].ID == id {
			return &s.AdditionalItems[i]
		}
	}
	return nil
}

// Custodian returns the custodian with id, or nil.
func (s *State) Custodian(id string) *model.Custodian {
	if i := s.custodianIndex(id); i >= 0 {
		return &s.Custodians[i]
	}
	return nil
}

// CustodianByName returns the first custodian whose name matches
// case-insensitively, or nil.
func (s *State) CustodianByName(name string) *model.Custodian {
	name = strings.TrimSpace(name)
	for i := range s.Custodians {
		if strings.EqualFold(s.Custodians[i].Name, name) {
			return &s.Custodians[i]
		}
	}
	return nil
}

// Active returns the active custodian, or nil.
func (s *State) Active() *model.Custodian {
	if s.ActiveCustodian == "" {
		return nil
	}
	return s.Custodian(s.ActiveCustodian)
}

func (s *State) custodianIndex(id string) int {
	for i := range s.Custodians {
		if s.Custodians[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveCustodian deletes the custodian with id and returns it with its
// former index. The active pointer is cleared when it pointed at them.
func (s *State) RemoveCustodian(id string) (model.Custodian, int, bool) {
	i := s.custodianIndex(id)
	if i < 0 {
		return model.Custodian{}, -1, false
	}
	c := s.Custodians[i]
	s.Custodians = append(s.Custodians[:i], s.Custodians[i+1:]...)
	if s.ActiveCustodian == id {
		s.ActiveCustodian = ""
	}
	return c, i, true
}

// InsertCustodian puts c back at index, clamped to the collection bounds.
func (s *State) InsertCustodian(c model.Custodian, index int) {
	if index < 0 || index > len(s.Custodians) {
		index = len(s.Custodians)
	}
	s.Custodians = append(s.Custodians, model.Custodian{})
	copy(s.Custodians[index+1:], s.Custodians[index:])
	s.Custodians[index] = c
}

// RenameCustodian rewrites every item reference from oldName to newName by
// exact match and returns how many items changed.
func (s *State) RenameCustodian(oldName, newName string) int {
	if oldName == newName {
		return 0
	}
	n := 0
	for i := range s.Inventory {
		if s.Inventory[i].Custodian == oldName {
			s.Inventory[i].Custodian = newName
			n++
		}
	}
	for i := range s.AdditionalItems {
		if s.AdditionalItems[i].Custodian == oldName {
			s.AdditionalItems[i].Custodian = newName
			n++
		}
	}
	return n
}
