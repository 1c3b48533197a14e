package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

// Action is an item lifecycle transition.
type Action int

// Actions.
const (
	ActionLocate Action = iota + 1
	ActionRelabel
	ActionUnlocate
)

func (a Action) String() string {
	switch a {
	case ActionLocate:
		return "locate"
	case ActionRelabel:
		return "relabel"
	case ActionUnlocate:
		return "unlocate"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// BatchResult reports what a batch action did.
type BatchResult struct {
	Applied []string
	// Pending lists items located to another custodian. They were left
	// untouched; pass their keys to Reassign to confirm the transfer.
	Pending []model.Reassignment
	Missing []string
	// Completed and Regressed list areas whose completion flag changed.
	Completed []string
	Regressed []string
	// InventoryFinished is set when this batch located the last item.
	InventoryFinished bool
}

// Locate assigns keys to the active custodian and clears any relabel
// request.
func (s *Service) Locate(ctx context.Context, keys ...string) (*BatchResult, error) {
	return s.apply(ctx, ActionLocate, false, keys)
}

// Relabel assigns keys to the active custodian and flags them for a new
// label.
func (s *Service) Relabel(ctx context.Context, keys ...string) (*BatchResult, error) {
	return s.apply(ctx, ActionRelabel, false, keys)
}

// Unlocate returns keys to pending.
func (s *Service) Unlocate(ctx context.Context, keys ...string) (*BatchResult, error) {
	return s.apply(ctx, ActionUnlocate, false, keys)
}

// Reassign applies action to keys even when they are located to another
// custodian. It is the confirmation path for BatchResult.Pending.
func (s *Service) Reassign(ctx context.Context, action Action, keys ...string) (*BatchResult, error) {
	if action != ActionLocate && action != ActionRelabel {
		return nil, fmt.Errorf("%w: cannot reassign with %s", ErrInvalidInput, action)
	}
	return s.apply(ctx, action, true, keys)
}

func (s *Service) apply(ctx context.Context, action Action, confirmed bool, keys []string) (*BatchResult, error) {
	if len(keys) == 0 {
		return nil, ErrEmptySelection
	}
	res := &BatchResult{}
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		var active *model.Custodian
		if action != ActionUnlocate {
			if active = st.Active(); active == nil {
				s.toast(ctx, notify.LevelError, "Debe activar un usuario para poder ubicar o re-etiquetar bienes.")
				return ErrNoActiveCustodian
			}
		}

		for _, key := range keys {
			it := st.Item(key)
			if it == nil {
				res.Missing = append(res.Missing, key)
				continue
			}
			if action == ActionUnlocate {
				unlocate(st, it, at)
			} else {
				assignedToOther := it.Located.Bool() && it.Custodian != "" && it.Custodian != active.Name
				if assignedToOther && !confirmed {
					res.Pending = append(res.Pending, model.Reassignment{
						Key:         it.Key,
						Description: it.Description,
						From:        it.Custodian,
						To:          active.Name,
					})
					continue
				}
				if assignedToOther {
					st.LogActivity(at, "Bien reasignado", fmt.Sprintf("Clave: %s de %s a %s", it.Key, it.Custodian, active.Name))
				}
				locate(st, it, active, action, at)
			}
			res.Applied = append(res.Applied, key)
			s.recordCompletion(ctx, st, res, it.Area, at)
		}
		if action != ActionUnlocate && st.CheckInventoryCompletion(at) {
			res.InventoryFinished = true
			s.notifier.Notify(ctx, notify.Notice{
				Kind:    notify.KindInventoryCompleted,
				Level:   notify.LevelSuccess,
				Message: "¡Felicidades! Has ubicado todos los bienes.",
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("batch applied", "action", action, "applied", len(res.Applied),
		"pending", len(res.Pending), "missing", len(res.Missing))
	s.batchToast(ctx, action, confirmed, res)
	return res, nil
}

func (s *Service) batchToast(ctx context.Context, action Action, confirmed bool, res *BatchResult) {
	n := len(res.Applied)
	switch {
	case len(res.Pending) > 0:
		s.toast(ctx, notify.LevelWarning, "Algunos bienes requerían confirmación para reasignar.")
	case n == 0:
		s.toast(ctx, notify.LevelError, "Seleccione al menos un bien.")
	case action == ActionUnlocate:
		s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("%d bien(es) marcado(s) como NO ubicado(s).", n))
	case confirmed && n == 1:
		s.View(func(st *state.State) {
			if it := st.Item(res.Applied[0]); it != nil {
				s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Bien %s reasignado a %s.", it.Key, it.Custodian))
			}
		})
	case action == ActionRelabel:
		s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Se marcaron %d bienes para re-etiquetar y fueron ubicados.", n))
	default:
		s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Se ubicaron %d bienes.", n))
	}
}

func (s *Service) recordCompletion(ctx context.Context, st *state.State, res *BatchResult, area string, at time.Time) {
	switch st.CheckAreaCompletion(area, at) {
	case state.AreaCompleted:
		res.Completed = append(res.Completed, area)
		s.notifier.Notify(ctx, notify.Notice{
			Kind:    notify.KindAreaCompleted,
			Level:   notify.LevelSuccess,
			Message: fmt.Sprintf("¡Área %s completada!", st.AreaName(area)),
			Area:    area,
		})
	case state.AreaRegressed:
		res.Regressed = append(res.Regressed, area)
	}
}

func locate(st *state.State, it *model.InventoryItem, c *model.Custodian, action Action, at time.Time) {
	it.Located = model.Yes
	it.Custodian = c.Name
	it.LocatedAt = &at
	it.AreaMismatch = it.Area != c.Area

	details := fmt.Sprintf("Clave: %s, Usuario: %s", it.Key, c.Name)
	switch {
	case action == ActionRelabel:
		it.Relabel = model.Yes
		st.LogActivity(at, "Bien marcado para re-etiquetar", details)
	case it.Relabel.Bool():
		it.Relabel = model.No
		st.LogActivity(at, "Marca de re-etiquetar quitada al ubicar", details)
	default:
		st.LogActivity(at, "Bien ubicado", details)
	}
}

func unlocate(st *state.State, it *model.InventoryItem, at time.Time) {
	it.Located = model.No
	it.Custodian = ""
	it.Relabel = model.No
	it.LocatedAt = nil
	it.AreaMismatch = false
	st.LogActivity(at, "Bien des-ubicado", fmt.Sprintf("Clave: %s", it.Key))
}

// MarkLabelPrinted clears the relabel flag of keys.
func (s *Service) MarkLabelPrinted(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, ErrEmptySelection
	}
	n := 0
	err := s.mutate(ctx, func(st *state.State, at time.Time) error {
		for _, key := range keys {
			it := st.Item(key)
			if it == nil || !it.Relabel.Bool() {
				continue
			}
			it.Relabel = model.No
			st.LogActivity(at, "Etiqueta marcada como HECHA", fmt.Sprintf("Clave: %s", key))
			n++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.toast(ctx, notify.LevelSuccess, fmt.Sprintf("Se quitó la marca de etiqueta de %d bien(es).", n))
	return n, nil
}
