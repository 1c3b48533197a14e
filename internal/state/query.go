package state

import (
	"sort"
	"strings"

	"github.com/erazemk/inventario/internal/model"
)

// StatusFilter selects items by located state.
type StatusFilter string

// Status filters.
const (
	StatusAll     StatusFilter = ""
	StatusLocated StatusFilter = "located"
	StatusPending StatusFilter = "pending"
)

// Filter narrows an inventory search.
type Filter struct {
	Term     string
	Status   StatusFilter
	Area     string
	BookType string
	Page     int // 1-based
	PageSize int
}

// Page is one page of search results.
type Page struct {
	Items []model.InventoryItem
	Total int
	Page  int
	Pages int
}

// Search returns the items matching f, paginated. The term is matched
// case-insensitively against key, description, brand, model and serial.
func (s *State) Search(f Filter) Page {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	var matched []model.InventoryItem
	for _, it := range s.Inventory {
		if f.Area != "" && it.Area != f.Area {
			continue
		}
		if f.BookType != "" && it.BookType != f.BookType {
			continue
		}
		switch f.Status {
		case StatusLocated:
			if !it.Located.Bool() {
				continue
			}
		case StatusPending:
			if it.Located.Bool() {
				continue
			}
		}
		if term != "" && !matchesTerm(&it, term) {
			continue
		}
		matched = append(matched, it)
	}

	p := Page{Total: len(matched), Page: 1, Pages: 1}
	size := f.PageSize
	if size <= 0 || size >= len(matched) {
		p.Items = matched
		return p
	}
	p.Pages = (len(matched) + size - 1) / size
	p.Page = min(max(f.Page, 1), p.Pages)
	start := (p.Page - 1) * size
	p.Items = matched[start:min(start+size, len(matched))]
	return p
}

func matchesTerm(it *model.InventoryItem, term string) bool {
	for _, field := range []string{it.Key, it.Description, it.Brand, it.Model, it.Serial} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Pending returns items not yet located.
func (s *State) Pending() []model.InventoryItem {
	return s.selectItems(func(it *model.InventoryItem) bool { return !it.Located.Bool() })
}

// LabelQueue returns items waiting for a new label.
func (s *State) LabelQueue() []model.InventoryItem {
	return s.selectItems(func(it *model.InventoryItem) bool { return it.Relabel.Bool() })
}

// WithNotes returns items that carry a note.
func (s *State) WithNotes() []model.InventoryItem {
	return s.selectItems(func(it *model.InventoryItem) bool { return s.Notes[it.Key] != "" })
}

// Mismatched returns items located to a custodian of another area.
func (s *State) Mismatched() []model.InventoryItem {
	return s.selectItems(func(it *model.InventoryItem) bool { return it.AreaMismatch })
}

func (s *State) selectItems(keep func(*model.InventoryItem) bool) []model.InventoryItem {
	var out []model.InventoryItem
	for i := range s.Inventory {
		if keep(&s.Inventory[i]) {
			out = append(out, s.Inventory[i])
		}
	}
	return out
}

// ListSummary describes one ingested batch.
type ListSummary struct {
	ID       int64
	FileName string
	Area     string
	BookType string
	Items    int
	Located  int
}

// Lists summarises every batch in ingestion order.
func (s *State) Lists() []ListSummary {
	index := map[int64]int{}
	var lists []ListSummary
	for i := range s.Inventory {
		it := &s.Inventory[i]
		j, ok := index[it.ListID]
		if !ok {
			j = len(lists)
			index[it.ListID] = j
			lists = append(lists, ListSummary{ID: it.ListID, FileName: it.FileName, Area: it.Area, BookType: it.BookType})
		}
		lists[j].Items++
		if it.Located.Bool() {
			lists[j].Located++
		}
	}
	sort.SliceStable(lists, func(a, b int) bool { return lists[a].ID < lists[b].ID })
	return lists
}

// RemoveList deletes exactly the items of batch listID and returns how many
// were removed.
func (s *State) RemoveList(listID int64) int {
	return s.removeItems(func(it *model.InventoryItem) bool { return it.ListID == listID })
}

// RemoveFile deletes every item that came from fileName.
func (s *State) RemoveFile(fileName string) int {
	return s.removeItems(func(it *model.InventoryItem) bool { return it.FileName == fileName })
}

// HasFile reports whether any item came from fileName.
func (s *State) HasFile(fileName string) bool {
	for i := range s.Inventory {
		if s.Inventory[i].FileName == fileName {
			return true
		}
	}
	return false
}

func (s *State) removeItems(drop func(*model.InventoryItem) bool) int {
	kept := s.Inventory[:0]
	removed := 0
	for i := range s.Inventory {
		if drop(&s.Inventory[i]) {
			removed++
			continue
		}
		kept = append(kept, s.Inventory[i])
	}
	clear(s.Inventory[len(kept):])
	s.Inventory = kept
	return removed
}
