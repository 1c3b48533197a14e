package inventory

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/erazemk/inventario/internal/blob"
	"github.com/erazemk/inventario/internal/ingest"
	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

// IngestResult describes a loaded list.
type IngestResult struct {
	ListID      int64
	FileName    string
	Area        string
	BookType    string
	Items       int
	Dropped     int
	Replaced    int
	Responsible string
}

// Ingest loads an inventory spreadsheet. A file name already loaded is
// refused unless replace is set, in which case its previous items are
// removed first. Unreadable files leave the session untouched.
func (s *Service) Ingest(ctx context.Context, fileName string, r io.Reader, replace bool) (*IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writableLocked(ctx); err != nil {
		return nil, err
	}
	st := s.st
	if st.HasFile(fileName) && !replace {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateFile, fileName)
	}

	at := s.clock()
	listID := at.UnixMilli()
	for _, l := range st.Lists() {
		if l.ID >= listID {
			listID = l.ID + 1
		}
	}

	batch, err := ingest.Parse(r, fileName, listID)
	if err != nil {
		s.log.Warn("rejected inventory file", "file", fileName, "error", err)
		s.toast(ctx, notify.LevelError, "Error al procesar el archivo. Asegúrate de que el formato es correcto.")
		return nil, err
	}

	res := &IngestResult{
		ListID:      listID,
		FileName:    fileName,
		Area:        batch.Area,
		BookType:    batch.BookType,
		Items:       len(batch.Items),
		Dropped:     batch.Dropped,
		Responsible: "No detectado",
	}
	var replacedAreas []string
	if st.HasFile(fileName) {
		for i := range st.Inventory {
			if it := &st.Inventory[i]; it.FileName == fileName && !slices.Contains(replacedAreas, it.Area) {
				replacedAreas = append(replacedAreas, it.Area)
			}
		}
		res.Replaced = st.RemoveFile(fileName)
		st.LogActivity(at, "Archivo reemplazado", fmt.Sprintf("Archivo %q con %d bienes fue reemplazado.", fileName, res.Replaced))
	}

	if _, ok := st.AreaNames[batch.Area]; !ok {
		st.AreaNames[batch.Area] = batch.AreaLabel
	}
	if batch.Responsible != nil {
		res.Responsible = batch.Responsible.Name
		if _, ok := st.AreaDirectory[batch.Area]; !ok {
			st.AreaDirectory[batch.Area] = *batch.Responsible
		}
	}

	st.Inventory = append(st.Inventory, batch.Items...)
	st.InventoryFinished = false
	st.RebuildSerialCache()
	st.LogActivity(at, "Archivo cargado", fmt.Sprintf("Archivo %q con %d bienes para el área %s. Tipo: %s.",
		fileName, len(batch.Items), batch.Area, batch.BookType))
	st.CheckAreaCompletion(batch.Area, at)
	for _, area := range replacedAreas {
		if area != batch.Area {
			settleArea(st, area, at)
		}
	}

	if err := s.saveLocked(ctx); err != nil {
		return nil, err
	}
	s.log.Info("inventory file loaded", "file", fileName, "list", listID, "area", batch.Area,
		"items", len(batch.Items), "dropped", batch.Dropped, "replaced", res.Replaced)
	s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Área %s: Se cargaron %d bienes. Responsable: %s.",
		batch.Area, len(batch.Items), res.Responsible))
	return res, nil
}

// Lists summarises the loaded batches.
func (s *Service) Lists() []state.ListSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Lists()
}

// OrphanAction decides the fate of custodians whose area loses its last
// list.
type OrphanAction int

// Orphan actions.
const (
	// OrphanAsk refuses with ErrOrphanedArea when custodians are affected.
	OrphanAsk OrphanAction = iota
	// OrphanKeep keeps the area alive without items.
	OrphanKeep
	// OrphanReassign moves the custodians to OrphanPolicy.Area.
	OrphanReassign
	// OrphanDeleteAll removes the custodians and their additional items.
	OrphanDeleteAll
)

// OrphanPolicy is the answer to ErrOrphanedArea.
type OrphanPolicy struct {
	Action OrphanAction
	Area   string
}

// ListImpact is what deleting a list would leave behind.
type ListImpact struct {
	List       state.ListSummary
	Custodians []model.Custodian
	Additional int
}

// Impact reports which custodians lose their area when listID is deleted.
func (s *Service) Impact(listID int64) (*ListImpact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return impact(s.st, listID)
}

func impact(st *state.State, listID int64) (*ListImpact, error) {
	i := slices.IndexFunc(st.Lists(), func(l state.ListSummary) bool { return l.ID == listID })
	if i < 0 {
		return nil, fmt.Errorf("list %d: %w", listID, ErrNotFound)
	}
	im := &ListImpact{List: st.Lists()[i]}
	area := im.List.Area

	for j := range st.Inventory {
		if it := &st.Inventory[j]; it.Area == area && it.ListID != listID {
			return im, nil
		}
	}
	names := map[string]bool{}
	for _, c := range st.Custodians {
		if c.Area == area {
			im.Custodians = append(im.Custodians, c)
			names[c.Name] = true
		}
	}
	for _, a := range st.AdditionalItems {
		if names[a.Custodian] {
			im.Additional++
		}
	}
	return im, nil
}

// DeleteList removes every item of batch listID. When that leaves
// custodians without an area, policy decides what happens to them.
func (s *Service) DeleteList(ctx context.Context, listID int64, policy OrphanPolicy) (*ListImpact, error) {
	var im *ListImpact
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		var err error
		if im, err = impact(st, listID); err != nil {
			return err
		}
		area := im.List.Area

		if len(im.Custodians) > 0 {
			switch policy.Action {
			case OrphanKeep:
				st.KeepArea(area)
				st.LogActivity(at, "Área mantenida", fmt.Sprintf("El área %s se mantuvo a pesar de eliminar el listado.", area))
			case OrphanReassign:
				if policy.Area == "" || policy.Area == area {
					return fmt.Errorf("%w: reassignment needs another area", ErrInvalidInput)
				}
				for i := range st.Custodians {
					if st.Custodians[i].Area == area {
						st.Custodians[i].Area = policy.Area
					}
				}
				st.LogActivity(at, "Usuarios reasignados", fmt.Sprintf("%d usuarios del área %s movidos al área %s.",
					len(im.Custodians), area, policy.Area))
			case OrphanDeleteAll:
				s.deleteCustodians(ctx, st, im.Custodians)
				st.LogActivity(at, "Eliminación masiva", fmt.Sprintf("Se eliminaron %d usuarios y %d bienes del área %s.",
					len(im.Custodians), im.Additional, area))
			default:
				return fmt.Errorf("%w: area %s has %d custodian(s) and %d additional item(s)",
					ErrOrphanedArea, area, len(im.Custodians), im.Additional)
			}
		}

		st.LogActivity(at, "Listado eliminado", fmt.Sprintf("Archivo: %s, Área: %s", im.List.FileName, area))
		st.RemoveList(listID)
		settleArea(st, area, at)
		st.RebuildSerialCache()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("list deleted", "list", listID, "file", im.List.FileName, "policy", policy.Action)
	s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Listado %q eliminado.", im.List.FileName))
	return im, nil
}

// deleteCustodians removes custodians together with their additional items
// and those items' photos.
func (s *Service) deleteCustodians(ctx context.Context, st *state.State, custodians []model.Custodian) {
	names := map[string]bool{}
	for _, c := range custodians {
		names[c.Name] = true
		st.RemoveCustodian(c.ID)
	}
	kept := st.AdditionalItems[:0]
	for _, a := range st.AdditionalItems {
		if !names[a.Custodian] {
			kept = append(kept, a)
			continue
		}
		if st.AdditionalPhotos[a.ID] {
			key := model.PhotoKey(model.PhotoAdditional, a.ID)
			if _, err := s.blobs.Delete(ctx, blob.Photos, key); err != nil {
				s.log.Warn("failed to delete photo", "key", key, "error", err)
			}
			delete(st.AdditionalPhotos, a.ID)
		}
	}
	st.AdditionalItems = kept
}

// settleArea re-derives the completion flag of an area that lost items. An
// area left without items drops the flag silently.
func settleArea(st *state.State, area string, at time.Time) {
	if !slices.ContainsFunc(st.Inventory, func(it model.InventoryItem) bool { return it.Area == area }) {
		delete(st.CompletedAreas, area)
		return
	}
	st.CheckAreaCompletion(area, at)
}
