package state

import "strings"

func normalizeSerial(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// RebuildSerialCache repopulates the lookup set of every serial number and
// key known to the session. It must run after any change to those fields.
func (s *State) RebuildSerialCache() {
	serials := make(map[string]struct{}, 2*len(s.Inventory)+3*len(s.AdditionalItems))
	add := func(v string) {
		if v = normalizeSerial(v); v != "" {
			serials[v] = struct{}{}
		}
	}
	for i := range s.Inventory {
		add(s.Inventory[i].Serial)
		add(s.Inventory[i].Key)
	}
	for i := range s.AdditionalItems {
		add(s.AdditionalItems[i].Serial)
		add(s.AdditionalItems[i].OriginalKey)
		add(s.AdditionalItems[i].AssignedKey)
	}
	s.serials = serials
}

// HasSerial reports whether v, compared case-insensitively and trimmed, is a
// known serial number or key. Blank values are never known.
func (s *State) HasSerial(v string) bool {
	v = normalizeSerial(v)
	if v == "" {
		return false
	}
	_, ok := s.serials[v]
	return ok
}

// SerialCount returns the size of the serial cache.
func (s *State) SerialCount() int {
	return len(s.serials)
}
