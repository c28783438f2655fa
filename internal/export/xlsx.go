// Package export builds styled single-sheet xlsx downloads from the rows a
// list screen currently displays.
package export

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/width"
)

// ColumnKind drives the width baseline applied to a column.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindNumber
	KindDate
)

// Column describes one worksheet column.
type Column struct {
	Key   string
	Label string
	Kind  ColumnKind
}

// Sheet is the flat-record input for one workbook.
type Sheet struct {
	Title   string
	Columns []Column
	Rows    []map[string]any
}

const (
	baselineText   = 10.0
	baselineNumber = 14.0
	baselineDate   = 14.0
	widthPadding   = 4.0
)

// BuildWorkbook renders the sheet into an in-memory workbook: bold shaded
// header row, uniform thin borders, centered wrapped cells, and one column
// width derived per key.
func BuildWorkbook(sheet Sheet) (*excelize.File, error) {
	f := excelize.NewFile()
	name := sheet.Title
	if name == "" {
		name = "Sheet1"
	}
	index, err := f.NewSheet(name)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if name != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9D9D9"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}
	dataStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return nil, err
	}

	for colIdx, col := range sheet.Columns {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		_ = f.SetCellValue(name, cell, col.Label)
		_ = f.SetCellStyle(name, cell, cell, headerStyle)

		letter, _ := excelize.ColumnNumberToName(colIdx + 1)
		_ = f.SetColWidth(name, letter, letter, columnWidth(col, sheet.Rows))
	}

	for rowIdx, row := range sheet.Rows {
		for colIdx, col := range sheet.Columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			_ = f.SetCellValue(name, cell, stringify(row[col.Key]))
			_ = f.SetCellStyle(name, cell, cell, dataStyle)
		}
	}

	return f, nil
}

// WriteAttachment streams the workbook as an xlsx download. Filenames carry
// Korean screen titles, so the UTF-8 filename* form is emitted alongside a
// plain fallback.
func WriteAttachment(w http.ResponseWriter, filename string, f *excelize.File) error {
	buffer, err := f.WriteToBuffer()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="export.xlsx"; filename*=UTF-8''%s`, url.PathEscape(filename)))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(buffer.Bytes())
	return err
}

// columnWidth is max(kind baseline, widest stringified value incl. the
// header label) plus padding.
func columnWidth(col Column, rows []map[string]any) float64 {
	w := baselineText
	switch col.Kind {
	case KindNumber:
		w = baselineNumber
	case KindDate:
		w = baselineDate
	}
	if lw := displayWidth(col.Label); lw > w {
		w = lw
	}
	for _, row := range rows {
		if vw := displayWidth(stringify(row[col.Key])); vw > w {
			w = vw
		}
	}
	return w + widthPadding
}

// displayWidth counts east-asian wide and fullwidth runes as two cells so
// Hangul headers do not get clipped.
func displayWidth(s string) float64 {
	var n float64
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format("2006-01-02")
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
