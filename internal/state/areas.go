package state

import (
	"slices"
	"sort"
)

// Areas returns the sorted union of areas referenced by inventory items,
// custodians and the persistent area list.
func (s *State) Areas() []string {
	seen := map[string]struct{}{}
	add := func(a string) {
		if a != "" {
			seen[a] = struct{}{}
		}
	}
	for i := range s.Inventory {
		add(s.Inventory[i].Area)
	}
	for i := range s.Custodians {
		add(s.Custodians[i].Area)
	}
	for _, a := range s.PersistentAreas {
		add(a)
	}
	areas := make([]string, 0, len(seen))
	for a := range seen {
		areas = append(areas, a)
	}
	sort.Strings(areas)
	return areas
}

// KeepArea adds area to the persistent list so it survives list deletion.
func (s *State) KeepArea(area string) {
	if !slices.Contains(s.PersistentAreas, area) {
		s.PersistentAreas = append(s.PersistentAreas, area)
	}
}

// AreaName returns the display name of area, falling back to its id.
func (s *State) AreaName(area string) string {
	if name := s.AreaNames[area]; name != "" {
		return name
	}
	return area
}
