// Package report writes spreadsheet exports of a session.
package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/inventario/internal/model"
	"github.com/erazemk/inventario/internal/state"
)

// Sheet names.
const (
	InventorySheet  = "Inventario Principal"
	AdditionalSheet = "Bienes Adicionales"
	LabelsSheet     = "Etiquetas"
)

const notAvailable = "N/A"

// ErrNoData is returned when the filter leaves nothing to export.
var ErrNoData = errors.New("report: nothing to export")

type column struct {
	title string
	width float64
}

var (
	inventoryColumns = []column{
		{"Clave Unica", 15}, {"Descripcion", 50}, {"Marca", 20}, {"Modelo", 20}, {"Serie", 25},
		{"Area Original", 15}, {"Usuario Asignado", 30}, {"Ubicado", 10}, {"Requiere Etiqueta", 15},
		{"Tiene Foto", 10}, {"Nota", 50},
	}
	additionalColumns = []column{
		{"Descripcion", 50}, {"Clave Original", 15}, {"Marca", 20}, {"Modelo", 20}, {"Serie", 25},
		{"Area Procedencia", 20}, {"Usuario Asignado", 30}, {"Es Personal", 12},
		{"Clave Asignada (Regularizado)", 25},
	}
	labelColumns = []column{
		{"Clave única", 15}, {"Descripción", 50}, {"Usuario", 30}, {"Área", 15},
	}
)

// InventoryFileName names an inventory export. An empty area means the
// whole session.
func InventoryFileName(area string, at time.Time) string {
	if area == "" {
		area = "completo"
	}
	return fmt.Sprintf("inventario-%s-%s.xlsx", area, at.Format(time.DateOnly))
}

// LabelsFileName names a labels export.
func LabelsFileName(at time.Time) string {
	return fmt.Sprintf("etiquetas-%s.xlsx", at.Format(time.DateOnly))
}

// Inventory writes the inventory and, when there are any, the additional
// items. With an area, inventory rows are those originating there and
// additional rows those held by custodians of that area.
func Inventory(w io.Writer, st *state.State, area string) error {
	items := st.Inventory
	additional := st.AdditionalItems
	if area != "" {
		items = nil
		for _, it := range st.Inventory {
			if it.Area == area {
				items = append(items, it)
			}
		}
		holders := map[string]bool{}
		for _, c := range st.Custodians {
			if c.Area == area {
				holders[c.Name] = true
			}
		}
		additional = nil
		for _, a := range st.AdditionalItems {
			if holders[a.Custodian] {
				additional = append(additional, a)
			}
		}
	}
	if len(items) == 0 && len(additional) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()

	rows := make([][]any, 0, len(items))
	for _, it := range items {
		rows = append(rows, []any{
			model.DisplayKey(it.Key), it.Description, it.Brand, it.Model, it.Serial,
			it.Area, it.Custodian, string(it.Located), string(it.Relabel),
			siNo(st.Photos[it.Key]), st.Notes[it.Key],
		})
	}
	if err := writeSheet(f, InventorySheet, inventoryColumns, rows); err != nil {
		return err
	}

	if len(additional) > 0 {
		rows = rows[:0]
		for _, a := range additional {
			rows = append(rows, []any{
				a.Description, orNA(a.OriginalKey), orNA(a.Brand), orNA(a.Model), orNA(a.Serial),
				orNA(a.Area), a.Custodian, siNo(a.Personal), orNA(a.AssignedKey),
			})
		}
		if err := writeSheet(f, AdditionalSheet, additionalColumns, rows); err != nil {
			return err
		}
	}
	return finish(f, w)
}

// Labels writes every item waiting for a label: inventory items flagged
// for relabel and additional items that were given a key.
func Labels(w io.Writer, st *state.State) error {
	areaOf := func(name string) string {
		if c := st.CustodianByName(name); c != nil && name != "" {
			return c.Area
		}
		return notAvailable
	}
	holder := func(name string) string {
		if name == "" {
			return "Sin Asignar"
		}
		return name
	}

	var rows [][]any
	for _, it := range st.LabelQueue() {
		rows = append(rows, []any{model.DisplayKey(it.Key), it.Description, holder(it.Custodian), areaOf(it.Custodian)})
	}
	for _, a := range st.AdditionalItems {
		if a.AssignedKey != "" {
			rows = append(rows, []any{a.AssignedKey, a.Description, holder(a.Custodian), areaOf(a.Custodian)})
		}
	}
	if len(rows) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := writeSheet(f, LabelsSheet, labelColumns, rows); err != nil {
		return err
	}
	return finish(f, w)
}

// writeSheet adds name with a bold header row. The default sheet is reused
// for the first one written.
func writeSheet(f *excelize.File, name string, cols []column, rows [][]any) error {
	if first := f.GetSheetName(0); first == "Sheet1" {
		if err := f.SetSheetName(first, name); err != nil {
			return fmt.Errorf("naming sheet %s: %w", name, err)
		}
	} else if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("adding sheet %s: %w", name, err)
	}

	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.title
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, colName, colName, c.width); err != nil {
			return fmt.Errorf("sizing %s!%s: %w", name, colName, err)
		}
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", name, err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(cols))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", last+"1", bold); err != nil {
		return err
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", name, i+2, err)
		}
	}
	return nil
}

func finish(f *excelize.File, w io.Writer) error {
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func siNo(b bool) string {
	if b {
		return "Si"
	}
	return "No"
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
