// Package pdfregion extracts the text inside a rectangular area of a PDF
// page and rebuilds it as a table that can be written to a spreadsheet.
package pdfregion

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pyhub-apps/pdfregion/pkg/coords"
	"github.com/pyhub-apps/pdfregion/pkg/pdf"
	"github.com/pyhub-apps/pdfregion/pkg/selection"
	"github.com/pyhub-apps/pdfregion/pkg/sheet"
	"github.com/pyhub-apps/pdfregion/pkg/table"
)

// Re-export types for the public API
type (
	Document      = pdf.Document
	Page          = pdf.Page
	TextRun       = pdf.TextRun
	Viewport      = pdf.Viewport
	BoundingBox   = pdf.BoundingBox
	TextRunOption = pdf.TextRunOption
	Rect          = selection.Rect
	Size          = coords.Size
	PageRect      = coords.PageRect
	Table         = table.Table
	TableOption   = table.Option
)

// Re-export option functions
var (
	WithXTolerance      = pdf.WithXTolerance
	WithYTolerance      = pdf.WithYTolerance
	WithRowTokenLimit   = table.WithRowTokenLimit
	WithHeaderMinLength = table.WithHeaderMinLength
)

// Re-export errors
var (
	ErrDocumentLoad          = pdf.ErrDocumentLoad
	ErrSurfaceNotReady       = coords.ErrSurfaceNotReady
	ErrNoTextInSelection     = table.ErrNoTextInSelection
	ErrInvalidTableStructure = table.ErrInvalidTableStructure
	ErrExport                = sheet.ErrExport
)

// Open reads and loads a PDF file
func Open(path string, opts ...TextRunOption) (Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return OpenBytes(context.Background(), src, opts...)
}

// OpenBytes loads an in-memory PDF
func OpenBytes(ctx context.Context, src []byte, opts ...TextRunOption) (Document, error) {
	return pdf.NewLoader(pdf.WithTextRunOptions(opts...)).LoadDocument(ctx, src)
}

// ExtractRegion builds a table from the text inside rect on page pageNumber.
// rect is measured on a surface of the given size with its origin at the
// top-left; pass the page viewport as surface for unit zoom.
func ExtractRegion(ctx context.Context, doc Document, pageNumber int, rect Rect, surface Size, opts ...TableOption) (Table, error) {
	page, err := doc.Page(ctx, pageNumber)
	if err != nil {
		return Table{}, err
	}

	viewport, err := page.Viewport(ctx)
	if err != nil {
		return Table{}, err
	}

	pageRect, err := coords.Map(rect, surface, viewport)
	if err != nil {
		return Table{}, err
	}

	runs, err := page.TextRuns(ctx)
	if err != nil {
		return Table{}, err
	}

	return table.Extract(runs, pageRect, opts...)
}

// WriteSheet writes t as a single-sheet workbook with the default sheet name
func WriteSheet(w io.Writer, t Table) error {
	return sheet.NewEmitter(sheet.DefaultSheetName).WriteSheet(w, t)
}
