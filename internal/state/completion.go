package state

import (
	"fmt"
	"time"
)

// AreaTransition is the outcome of an area completion check.
type AreaTransition int

// Area transitions.
const (
	AreaUnchanged AreaTransition = iota
	AreaCompleted
	AreaRegressed
)

// IsAreaComplete reports whether area has at least one item and every item
// in it is located.
func (s *State) IsAreaComplete(area string) bool {
	total := 0
	for i := range s.Inventory {
		if s.Inventory[i].Area != area {
			continue
		}
		total++
		if !s.Inventory[i].Located.Bool() {
			return false
		}
	}
	return total > 0
}

// CheckAreaCompletion updates the completed flag of area and logs the
// transition. Closed areas are frozen. Repeated calls without intervening
// item changes return AreaUnchanged.
func (s *State) CheckAreaCompletion(area string, at time.Time) AreaTransition {
	if area == "" {
		return AreaUnchanged
	}
	if _, closed := s.ClosedAreas[area]; closed {
		return AreaUnchanged
	}

	complete := s.IsAreaComplete(area)
	switch {
	case complete && !s.CompletedAreas[area]:
		s.CompletedAreas[area] = true
		s.LogActivity(at, "Área completada", fmt.Sprintf("Todos los bienes del área %s han sido ubicados.", area))
		return AreaCompleted
	case !complete && s.CompletedAreas[area]:
		delete(s.CompletedAreas, area)
		s.LogActivity(at, "Área ya no completada", fmt.Sprintf("El área %s ya no tiene todos sus bienes ubicados.", area))
		return AreaRegressed
	default:
		return AreaUnchanged
	}
}

// CheckInventoryCompletion sets InventoryFinished the first time every item
// of a non-empty inventory is located and reports whether it did so now.
// It never reverts the flag.
func (s *State) CheckInventoryCompletion(at time.Time) bool {
	if s.InventoryFinished || len(s.Inventory) == 0 {
		return false
	}
	for i := range s.Inventory {
		if !s.Inventory[i].Located.Bool() {
			return false
		}
	}
	s.InventoryFinished = true
	s.LogActivity(at, "Inventario completado", "Todos los bienes han sido ubicados.")
	return true
}
