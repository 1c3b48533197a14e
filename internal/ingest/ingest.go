// Package ingest turns an inventory spreadsheet into a batch of items.
//
// A sheet carries the area label in A10, the book type in B7 (or L7 when B7
// is blank) and data rows from row 12 on. Only rows whose first cell looks
// like an inventory key become items; the rest are trailing notes,
// signatures and totals and are dropped silently.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/inventario/internal/model"
)

// Fixed sheet geometry.
const (
	AreaRow        = 10 // A10
	BookTypeRow    = 7  // B7, falling back to L7
	bookTypeCol    = 1
	altBookTypeCol = 11
	HeaderRows     = 11
)

// ErrUnreadable is returned when the input is not a readable workbook.
var ErrUnreadable = errors.New("ingest: unreadable workbook")

var areaPattern = regexp.MustCompile(`AREA\s(\d+)`)

// Batch is the result of reading one file.
type Batch struct {
	FileName string
	ListID   int64
	// Area is the numeric area id, or model.UnknownArea.
	Area string
	// AreaLabel is the raw A10 text.
	AreaLabel string
	BookType  string
	Items     []model.InventoryItem
	// Responsible is the directory entry detected at the foot of the
	// sheet, or nil.
	Responsible *model.DirectoryEntry
	// Dropped counts data rows rejected for lacking a key.
	Dropped int
}

// Parse reads the first sheet of the workbook in r. listID is shared by
// every item of the batch.
func Parse(r io.Reader, fileName string, listID int64) (*Batch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, fileName, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrUnreadable, fileName)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnreadable, fileName, err)
	}
	return ParseRows(rows, fileName, listID), nil
}

// ParseRows builds a batch from the cell text of a sheet, indexed
// [row-1][col-1].
func ParseRows(rows [][]string, fileName string, listID int64) *Batch {
	label := cell(rows, AreaRow, 0)
	if label == "" {
		label = model.UnknownArea
	}
	area := model.UnknownArea
	if m := areaPattern.FindStringSubmatch(label); m != nil {
		area = m[1]
	}

	bookType := cell(rows, BookTypeRow, bookTypeCol)
	if bookType == "" {
		bookType = cell(rows, BookTypeRow, altBookTypeCol)
	}
	if bookType == "" {
		bookType = model.UnknownBookType
	}

	b := &Batch{
		FileName:  fileName,
		ListID:    listID,
		Area:      area,
		AreaLabel: label,
		BookType:  bookType,
		Items:     []model.InventoryItem{},
	}

	if len(rows) > HeaderRows {
		for _, row := range rows[HeaderRows:] {
			if isBlank(row) {
				continue
			}
			key := strings.TrimSpace(col(row, 0))
			if !model.IsInventoryKey(key) {
				b.Dropped++
				continue
			}
			b.Items = append(b.Items, model.InventoryItem{
				Key:           key,
				Description:   col(row, 1),
				Office:        col(row, 2),
				Type:          col(row, 3),
				Brand:         col(row, 4),
				Model:         col(row, 5),
				Serial:        col(row, 6),
				StartDate:     col(row, 7),
				Remission:     col(row, 8),
				RemissionDate: col(row, 9),
				Invoice:       col(row, 10),
				InvoiceDate:   col(row, 11),
				Year:          col(row, 12),
				Located:       model.No,
				Relabel:       model.No,
				ListID:        listID,
				Area:          area,
				BookType:      bookType,
				FileName:      fileName,
			})
		}
	}

	if name, title, ok := responsible(rows); ok {
		b.Responsible = &model.DirectoryEntry{FullName: label, Name: name, Title: title}
	}
	return b
}

// responsible looks for a name and a title in the first non-blank cell of
// the last two non-blank rows.
func responsible(rows [][]string) (name, title string, ok bool) {
	var content [][]string
	for _, row := range rows {
		if !isBlank(row) {
			content = append(content, row)
		}
	}
	if len(content) < 2 {
		return "", "", false
	}
	name = firstNonBlank(content[len(content)-2])
	title = firstNonBlank(content[len(content)-1])
	if !plausibleText(name) || !plausibleText(title) {
		return "", "", false
	}
	return name, title, true
}

func plausibleText(s string) bool {
	if len([]rune(s)) <= 3 {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	return err != nil
}

func firstNonBlank(row []string) string {
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

func isBlank(row []string) bool {
	return firstNonBlank(row) == ""
}

func cell(rows [][]string, row, c int) string {
	if row-1 >= len(rows) {
		return ""
	}
	return strings.TrimSpace(col(rows[row-1], c))
}

func col(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
