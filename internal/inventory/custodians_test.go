package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/state"
)

func TestCreateCustodianNumbersLocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	a := f.custodian(t, "ANA LOPEZ", "7")
	b := f.custodian(t, "LUIS PEREZ", "7")
	assert.Equal(t, "OFICINA 01", a.LocationWithID)
	assert.Equal(t, "OFICINA 02", b.LocationWithID)
	assert.Equal(t, 2, b.LocationSeq)

	_, err := f.svc.CreateCustodian(ctx, CustodianInput{Name: "ANA LOPEZ", Area: "9", Location: "BODEGA"}, false)
	require.ErrorIs(t, err, ErrDuplicateCustodian)
	c, err := f.svc.CreateCustodian(ctx, CustodianInput{Name: "ANA LOPEZ", Area: "9", Location: "BODEGA"}, true)
	require.NoError(t, err)
	assert.Equal(t, "BODEGA 01", c.LocationWithID)

	_, err = f.svc.CreateCustodian(ctx, CustodianInput{Name: " ", Area: "9", Location: "BODEGA"}, false)
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.svc.View(func(st *state.State) {
		assert.Equal(t, c.ID, st.ActiveCustodian)
		assert.Equal(t, map[string]int{"OFICINA": 2, "BODEGA": 1}, st.Locations)
	})
	assert.Equal(t, 3, f.logged("Usuario creado"))
}

func TestEditCustodianCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001")
	c := f.custodian(t, "ANA LOPEZ", "7")
	_, err := f.svc.Locate(ctx, "100001")
	require.NoError(t, err)
	_, err = f.svc.AddAdditional(ctx, AdditionalInput{Description: "Monitor"}, false)
	require.NoError(t, err)
	assert.False(t, f.item(t, "100001").AreaMismatch)

	edited, err := f.svc.EditCustodian(ctx, c.ID, CustodianInput{Name: "ANA MARIA LOPEZ", Area: "9", Location: "SALA 05"})
	require.NoError(t, err)
	assert.Equal(t, "SALA", edited.Location)
	assert.Equal(t, 5, edited.LocationSeq)
	assert.Equal(t, "SALA 05", edited.LocationWithID)

	it := f.item(t, "100001")
	assert.Equal(t, "ANA MARIA LOPEZ", it.Custodian)
	assert.True(t, it.AreaMismatch)
	f.svc.View(func(st *state.State) {
		assert.Equal(t, "ANA MARIA LOPEZ", st.AdditionalItems[0].Custodian)
	})

	_, err = f.svc.EditCustodian(ctx, "missing", CustodianInput{Name: "X"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCustodianUndo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	a := f.custodian(t, "ANA LOPEZ", "7")
	f.custodian(t, "LUIS PEREZ", "7")

	require.NoError(t, f.svc.DeleteCustodian(ctx, a.ID))
	f.now = f.now.Add(2 * time.Second)
	restored, err := f.svc.UndoDeleteCustodian(ctx)
	require.NoError(t, err)
	assert.Equal(t, *a, *restored)
	f.svc.View(func(st *state.State) {
		require.Len(t, st.Custodians, 2)
		assert.Equal(t, a.ID, st.Custodians[0].ID)
	})

	_, err = f.svc.UndoDeleteCustodian(ctx)
	assert.ErrorIs(t, err, ErrUndoExpired)

	require.NoError(t, f.svc.DeleteCustodian(ctx, a.ID))
	f.now = f.now.Add(DefaultUndoWindow + time.Second)
	_, err = f.svc.UndoDeleteCustodian(ctx)
	assert.ErrorIs(t, err, ErrUndoExpired)
	f.svc.View(func(st *state.State) {
		assert.Nil(t, st.Custodian(a.ID))
	})
}

func TestActivateCustodian(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	a := f.custodian(t, "ANA LOPEZ", "7")
	f.custodian(t, "LUIS PEREZ", "7")

	active, err := f.svc.ActivateCustodian(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "ANA LOPEZ", active.Name)

	_, err = f.svc.ActivateCustodian(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.DeactivateCustodian(ctx))
	f.svc.View(func(st *state.State) {
		assert.Empty(t, st.ActiveCustodian)
	})
}

func TestAdditionalItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001")

	_, err := f.svc.AddAdditional(ctx, AdditionalInput{Description: "Monitor"}, false)
	require.ErrorIs(t, err, ErrNoActiveCustodian)

	f.custodian(t, "ANA LOPEZ", "7")
	_, err = f.svc.AddAdditional(ctx, AdditionalInput{Description: "Monitor", Serial: " sn-100001 "}, false)
	require.ErrorIs(t, err, ErrDuplicateSerial)
	dup, err := f.svc.AddAdditional(ctx, AdditionalInput{Description: "Monitor", Serial: "SN-100001"}, true)
	require.NoError(t, err)
	assert.Equal(t, "ANA LOPEZ", dup.Custodian)
	assert.Equal(t, f.now, dup.RegisteredAt)

	personal, err := f.svc.AddAdditional(ctx, AdditionalInput{Description: "Laptop propia", Serial: "LP-1", Personal: true}, false)
	require.NoError(t, err)
	assert.Nil(t, personal.HasEntryForm)

	assert.ErrorIs(t, f.svc.SetEntryForm(ctx, dup.ID, true), ErrInvalidInput)
	require.NoError(t, f.svc.SetEntryForm(ctx, personal.ID, false))

	assert.ErrorIs(t, f.svc.AssignKey(ctx, dup.ID, "100001"), ErrDuplicateSerial)
	require.NoError(t, f.svc.AssignKey(ctx, dup.ID, "300001"))

	f.svc.View(func(st *state.State) {
		a := st.Additional(personal.ID)
		require.NotNil(t, a)
		assert.True(t, a.NeedsRegularization())
		assert.Equal(t, "300001", st.Additional(dup.ID).AssignedKey)
		assert.True(t, st.HasSerial("300001"))
	})

	edited, err := f.svc.EditAdditional(ctx, personal.ID, AdditionalInput{Description: "Laptop", Serial: "LP-1"})
	require.NoError(t, err)
	assert.False(t, edited.Personal)
	assert.Nil(t, edited.HasEntryForm)
}

func TestDeleteAdditionalTransfersPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	f.ingest(t, "a.xlsx", "7", "100001")
	f.custodian(t, "ANA LOPEZ", "7")
	add, err := f.svc.AddAdditional(ctx, AdditionalInput{Description: "Monitor"}, false)
	require.NoError(t, err)
	src := PhotoRef{Kind: model.PhotoAdditional, ID: add.ID}
	require.NoError(t, f.svc.AttachPhoto(ctx, src, bytesOf(pngImage(t))))

	dst := PhotoRef{Kind: model.PhotoInventory, ID: "100001"}
	require.NoError(t, f.svc.DeleteAdditional(ctx, add.ID, &dst))

	moved, err := f.svc.Photo(ctx, dst)
	require.NoError(t, err)
	require.NotNil(t, moved)
	f.svc.View(func(st *state.State) {
		assert.Empty(t, st.AdditionalItems)
		assert.True(t, st.Photos["100001"])
		assert.False(t, st.AdditionalPhotos[add.ID])
	})

	assert.ErrorIs(t, f.svc.DeleteAdditional(ctx, add.ID, nil), ErrNotFound)
}
