// Package testpdf builds small PDF documents for tests.
package testpdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
)

// Letter page size in points
const (
	PageWidth  = 612.0
	PageHeight = 792.0
)

// Text is a string drawn at (X, Y), measured in points from the top-left
// corner of the page. Y is the baseline.
type Text struct {
	X, Y float64
	S    string
}

// PageY converts a top-down baseline into page space (origin bottom-left)
func (t Text) PageY() float64 {
	return PageHeight - t.Y
}

// Build renders one Letter page per entry of pages using Helvetica 12pt
func Build(t testing.TB, pages ...[]Text) []byte {
	t.Helper()
	return build(t, 0, pages)
}

// Padded is like Build but pads the document info with at least size
// bytes, for tests that need large uploads.
func Padded(t testing.TB, size int, pages ...[]Text) []byte {
	t.Helper()
	return build(t, size, pages)
}

func build(t testing.TB, padding int, pages [][]Text) []byte {
	t.Helper()

	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetFont("Helvetica", "", 12)
	if padding > 0 {
		doc.SetSubject(strings.Repeat("padding ", padding/8+1), false)
	}

	for _, texts := range pages {
		doc.AddPage()
		for _, text := range texts {
			doc.Text(text.X, text.Y, text.S)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("failed to build test PDF: %v", err)
	}
	return buf.Bytes()
}

// Roster is a single page holding a header and two names on one line
func Roster() []Text {
	return []Text{
		{X: 72, Y: 100, S: "NAME"},
		{X: 72, Y: 130, S: "Alice"},
		{X: 200, Y: 130, S: "Bob"},
	}
}
