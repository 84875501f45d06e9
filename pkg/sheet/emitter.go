// Package sheet writes a table as a single-sheet xlsx workbook.
package sheet

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/pyhub-apps/pdfregion/pkg/table"
)

const (
	// DefaultSheetName is the name of the only sheet in the workbook
	DefaultSheetName = "Extracted Data"

	// DefaultFileName is the name offered for download
	DefaultFileName = "extracted_data.xlsx"

	// ContentType is the media type of the encoded workbook
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	headerFill = "EEEEEE"
)

// ErrExport indicates the workbook could not be produced
var ErrExport = errors.New("export failed")

// Emitter serializes tables into xlsx workbooks
type Emitter struct {
	SheetName string
}

// NewEmitter creates an Emitter; an empty sheetName selects the default
func NewEmitter(sheetName string) *Emitter {
	if sheetName == "" {
		sheetName = DefaultSheetName
	}
	return &Emitter{SheetName: sheetName}
}

// Encode returns the workbook bytes for t
func (e *Emitter) Encode(t table.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.WriteSheet(&buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSheet writes t to w. The first row is styled bold on a light gray
// fill; it is not checked to actually be a header.
func (e *Emitter) WriteSheet(w io.Writer, t table.Table) error {
	if err := e.writeSheet(w, t); err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	return nil
}

func (e *Emitter) writeSheet(w io.Writer, t table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, e.SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}

		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = v
		}
		if err := f.SetSheetRow(e.SheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	if err := e.styleHeader(f, t.Columns()); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// styleHeader applies bold text and a solid light gray fill to row 1
func (e *Emitter) styleHeader(f *excelize.File, columns int) error {
	if columns == 0 {
		return nil
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, err := excelize.CoordinatesToCellName(columns, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(e.SheetName, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return nil
}
