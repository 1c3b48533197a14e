package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/notify"
	"github.com/erazemk/inventario/internal/state"
)

func TestLocateAndUnlocate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001", "100002")
	f.custodian(t, "ANA LOPEZ", "9")

	res, err := f.svc.Locate(ctx, "100001", "999999")
	require.NoError(t, err)
	assert.Equal(t, []string{"100001"}, res.Applied)
	assert.Equal(t, []string{"999999"}, res.Missing)

	it := f.item(t, "100001")
	assert.Equal(t, model.Yes, it.Located)
	assert.Equal(t, "ANA LOPEZ", it.Custodian)
	assert.True(t, it.AreaMismatch)
	require.NotNil(t, it.LocatedAt)
	assert.Equal(t, f.now, *it.LocatedAt)
	assert.Equal(t, 1, f.logged("Bien ubicado"))

	_, err = f.svc.Unlocate(ctx, "100001")
	require.NoError(t, err)
	it = f.item(t, "100001")
	assert.Equal(t, model.No, it.Located)
	assert.Empty(t, it.Custodian)
	assert.Nil(t, it.LocatedAt)
	assert.False(t, it.AreaMismatch)
	assert.Equal(t, 1, f.logged("Bien des-ubicado"))
}

func TestLocateNeedsActiveCustodian(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001")
	f.custodian(t, "ANA LOPEZ", "7")
	require.NoError(t, f.svc.DeactivateCustodian(ctx))

	_, err := f.svc.Locate(ctx, "100001")
	assert.ErrorIs(t, err, ErrNoActiveCustodian)
	_, err = f.svc.Locate(ctx)
	assert.ErrorIs(t, err, ErrEmptySelection)
}

func TestAreaCompletionTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001", "100002")
	f.custodian(t, "ANA LOPEZ", "7")

	res, err := f.svc.Locate(ctx, "100001")
	require.NoError(t, err)
	assert.Empty(t, res.Completed)

	res, err = f.svc.Locate(ctx, "100002")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, res.Completed)
	assert.True(t, res.InventoryFinished)
	assert.Equal(t, 1, f.rec.Count(notify.KindAreaCompleted))
	assert.Equal(t, 1, f.rec.Count(notify.KindInventoryCompleted))

	res, err = f.svc.Unlocate(ctx, "100001", "100002")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, res.Regressed)
	assert.Equal(t, 1, f.logged("Área ya no completada"))
	f.svc.View(func(st *state.State) {
		assert.False(t, st.CompletedAreas["7"])
	})

	res, err = f.svc.Locate(ctx, "100001", "100002")
	require.NoError(t, err)
	assert.Equal(t, []string{"7"}, res.Completed)
	assert.Equal(t, 2, f.logged("Área completada"))
}

func TestClosedAreaIsFrozen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001")
	f.custodian(t, "ANA LOPEZ", "7")
	_, err := f.svc.Locate(ctx, "100001")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.CloseArea(ctx, "7", "", "OFICINA"), ErrInvalidInput)
	assert.ErrorIs(t, f.svc.CloseArea(ctx, "42", "JEFE", "OFICINA"), ErrNotFound)
	require.NoError(t, f.svc.CloseArea(ctx, "7", "JEFE DE AREA", "OFICINA 01"))
	assert.ErrorIs(t, f.svc.CloseArea(ctx, "7", "JEFE DE AREA", "OFICINA 01"), ErrAreaClosed)

	res, err := f.svc.Unlocate(ctx, "100001")
	require.NoError(t, err)
	assert.Empty(t, res.Regressed)
	f.svc.View(func(st *state.State) {
		assert.True(t, st.CompletedAreas["7"])
		assert.Equal(t, "JEFE DE AREA", st.ClosedAreas["7"].Responsible)
	})
}

func TestReassignmentNeedsConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001", "100002")
	f.custodian(t, "ANA LOPEZ", "7")
	_, err := f.svc.Locate(ctx, "100001")
	require.NoError(t, err)

	f.custodian(t, "LUIS PEREZ", "7")
	res, err := f.svc.Locate(ctx, "100001", "100002")
	require.NoError(t, err)
	assert.Equal(t, []string{"100002"}, res.Applied)
	require.Len(t, res.Pending, 1)
	assert.Equal(t, model.Reassignment{Key: "100001", Description: "Bien 100001", From: "ANA LOPEZ", To: "LUIS PEREZ"}, res.Pending[0])
	assert.Equal(t, "ANA LOPEZ", f.item(t, "100001").Custodian)

	res, err = f.svc.Reassign(ctx, ActionLocate, "100001")
	require.NoError(t, err)
	assert.Equal(t, []string{"100001"}, res.Applied)
	assert.Equal(t, "LUIS PEREZ", f.item(t, "100001").Custodian)
	assert.Equal(t, 1, f.logged("Bien reasignado"))

	_, err = f.svc.Reassign(ctx, ActionUnlocate, "100001")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLocateClearsRelabel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001", "100002")
	f.custodian(t, "ANA LOPEZ", "7")

	_, err := f.svc.Relabel(ctx, "100001", "100002")
	require.NoError(t, err)
	it := f.item(t, "100001")
	assert.Equal(t, model.Yes, it.Located)
	assert.Equal(t, model.Yes, it.Relabel)
	assert.Equal(t, model.ItemStatusLocatedRelabel, it.Status())

	_, err = f.svc.Locate(ctx, "100001")
	require.NoError(t, err)
	assert.Equal(t, model.No, f.item(t, "100001").Relabel)
	assert.Equal(t, 1, f.logged("Marca de re-etiquetar quitada al ubicar"))

	n, err := f.svc.MarkLabelPrinted(ctx, "100001", "100002")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, model.No, f.item(t, "100002").Relabel)
	assert.Equal(t, model.Yes, f.item(t, "100002").Located)
}

func TestSaveNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001", "100002")

	require.NoError(t, f.svc.SaveNotes(ctx, map[string]string{"100001": " rayado ", "100002": "sin patas"}))
	assert.ErrorIs(t, f.svc.SaveNotes(ctx, map[string]string{"999999": "x"}), ErrNotFound)
	require.NoError(t, f.svc.SaveNotes(ctx, map[string]string{"100002": ""}))

	f.svc.View(func(st *state.State) {
		assert.Equal(t, map[string]string{"100001": "rayado"}, st.Notes)
	})
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001", "100002", "100003")
	f.custodian(t, "ANA LOPEZ", "7")
	_, err := f.svc.Locate(ctx, "100002")
	require.NoError(t, err)

	page := f.svc.Search(state.Filter{Status: state.StatusPending})
	assert.Equal(t, 2, page.Total)

	page = f.svc.Search(state.Filter{Term: "sn-100003"})
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "100003", page.Items[0].Key)
}
