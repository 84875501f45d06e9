package pdf

import (
	"context"
)

// Renderer turns raw PDF bytes into a Document
type Renderer interface {
	// LoadDocument parses the bytes; a rejection wraps ErrDocumentLoad
	LoadDocument(ctx context.Context, src []byte) (Document, error)
}

// Document represents a loaded PDF
type Document interface {
	// PageCount returns the total number of pages
	PageCount() int

	// Page returns a handle for the given page number (1-based)
	Page(ctx context.Context, pageNumber int) (Page, error)

	// Close releases resources associated with the document
	Close() error
}

// Page represents a single page in a PDF document
type Page interface {
	// Number returns the page number (1-based)
	Number() int

	// TextRuns returns the page's text runs in emission order.
	// The slice is built fresh on every call.
	TextRuns(ctx context.Context) ([]TextRun, error)

	// Viewport returns the page dimensions at unit scale
	Viewport(ctx context.Context) (Viewport, error)
}

// glyphSource is implemented by the text backends
type glyphSource interface {
	// NumPage returns the number of pages the backend sees
	NumPage() int

	// Glyphs returns the positioned glyphs of a page (1-based)
	Glyphs(pageNumber int) ([]glyph, error)

	// Name identifies the backend in logs
	Name() string

	// pageBox reads page geometry when pdfcpu cannot
	pageBox(pageNumber int) pageBox

	Close() error
}
