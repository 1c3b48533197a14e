package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/state"
)

func fixture() *state.State {
	st := state.Default()
	st.Inventory = []model.InventoryItem{
		{Key: "100001", Description: "Escritorio", Brand: "Acme", Area: "7", Custodian: "ANA LOPEZ", Located: model.Yes, Relabel: model.No},
		{Key: "0.4411", Description: "Archivero", Area: "7", Located: model.Yes, Relabel: model.Yes},
		{Key: "200002", Description: "Silla", Area: "9", Custodian: "LUIS PEREZ", Located: model.No, Relabel: model.No},
	}
	st.Custodians = []model.Custodian{
		{ID: "c1", Name: "ANA LOPEZ", Area: "7", Location: "OFICINA", LocationSeq: 1, LocationWithID: "OFICINA 01"},
		{ID: "c2", Name: "LUIS PEREZ", Area: "9", Location: "BODEGA", LocationSeq: 1, LocationWithID: "BODEGA 01"},
	}
	st.AdditionalItems = []model.AdditionalItem{
		{ID: "a1", Description: "Monitor", Custodian: "ANA LOPEZ", Personal: true, AssignedKey: "300003"},
		{ID: "a2", Description: "Teclado", Serial: "K-1", Custodian: "LUIS PEREZ"},
	}
	st.Photos["100001"] = true
	st.Notes["100001"] = "rayado"
	return st
}

func open(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func rows(t *testing.T, f *excelize.File, sheet string) [][]string {
	t.Helper()
	out, err := f.GetRows(sheet)
	require.NoError(t, err)
	return out
}

func TestInventoryAll(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Inventory(&buf, fixture(), ""))

	f := open(t, &buf)
	assert.Equal(t, []string{InventorySheet, AdditionalSheet}, f.GetSheetList())

	inv := rows(t, f, InventorySheet)
	require.Len(t, inv, 4)
	assert.Equal(t, "Clave Unica", inv[0][0])
	assert.Equal(t, []string{"100001", "Escritorio", "Acme", "", "", "7", "ANA LOPEZ", "SI", "NO", "Si", "rayado"}, inv[1])
	assert.Equal(t, ".4411", inv[2][0])
	assert.Equal(t, "No", inv[2][9])

	add := rows(t, f, AdditionalSheet)
	require.Len(t, add, 3)
	assert.Equal(t, []string{"Monitor", "N/A", "N/A", "N/A", "N/A", "N/A", "ANA LOPEZ", "Si", "300003"}, add[1])
	assert.Equal(t, "K-1", add[2][4])

	width, err := f.GetColWidth(InventorySheet, "B")
	require.NoError(t, err)
	assert.Equal(t, 50.0, width)
}

func TestInventoryByArea(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Inventory(&buf, fixture(), "9"))

	f := open(t, &buf)
	inv := rows(t, f, InventorySheet)
	require.Len(t, inv, 2)
	assert.Equal(t, "200002", inv[1][0])

	add := rows(t, f, AdditionalSheet)
	require.Len(t, add, 2)
	assert.Equal(t, "Teclado", add[1][0])
}

func TestInventoryOmitsEmptyAdditionalSheet(t *testing.T) {
	st := fixture()
	st.AdditionalItems = nil

	var buf bytes.Buffer
	require.NoError(t, Inventory(&buf, st, ""))
	assert.Equal(t, []string{InventorySheet}, open(t, &buf).GetSheetList())
}

func TestInventoryNoData(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Inventory(&buf, fixture(), "42"), ErrNoData)
	assert.ErrorIs(t, Inventory(&buf, state.Default(), ""), ErrNoData)
	assert.Zero(t, buf.Len())
}

func TestLabels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Labels(&buf, fixture()))

	f := open(t, &buf)
	assert.Equal(t, []string{LabelsSheet}, f.GetSheetList())
	got := rows(t, f, LabelsSheet)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"Clave única", "Descripción", "Usuario", "Área"}, got[0])
	assert.Equal(t, []string{".4411", "Archivero", "Sin Asignar", "N/A"}, got[1])
	assert.Equal(t, []string{"300003", "Monitor", "ANA LOPEZ", "7"}, got[2])
}

func TestLabelsNoData(t *testing.T) {
	st := fixture()
	st.Inventory[1].Relabel = model.No
	st.AdditionalItems[0].AssignedKey = ""
	assert.ErrorIs(t, Labels(&bytes.Buffer{}, st), ErrNoData)
}

func TestFileNames(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "inventario-completo-2026-10-15.xlsx", InventoryFileName("", at))
	assert.Equal(t, "inventario-7-2026-10-15.xlsx", InventoryFileName("7", at))
	assert.Equal(t, "etiquetas-2026-10-15.xlsx", LabelsFileName(at))
}
