package table

import (
	"strings"
	"unicode/utf8"

	"github.com/pyhub-apps/pdfregion/pkg/coords"
	"github.com/pyhub-apps/pdfregion/pkg/pdf"
)

// Extract builds a normalized table from the runs whose anchor lies inside
// rect. A degenerate rect never matches anything.
func Extract(runs []pdf.TextRun, rect coords.PageRect, opts ...Option) (Table, error) {
	if rect.Degenerate() {
		return Table{}, ErrNoTextInSelection
	}

	texts := Filter(runs, rect)
	if len(texts) == 0 {
		return Table{}, ErrNoTextInSelection
	}

	t := Cluster(texts, opts...)
	if len(t.Rows) == 0 {
		return Table{}, ErrInvalidTableStructure
	}

	return t.Normalize(), nil
}

// Filter returns the text of every run anchored inside rect, in emission
// order. Blank runs are dropped.
func Filter(runs []pdf.TextRun, rect coords.PageRect) []string {
	bbox := rect.BBox()

	var texts []string
	for _, run := range runs {
		x, y := run.Anchor()
		if !bbox.Contains(x, y) {
			continue
		}
		if run.Blank() {
			continue
		}
		texts = append(texts, run.Text)
	}
	return texts
}

// Cluster groups run strings into rows. A header starts a row of its own;
// a full last row also starts a new one. Anything else is split into words
// and appended to the last row.
func Cluster(texts []string, opts ...Option) Table {
	options := buildOptions(opts)

	var rows [][]string
	lastIsHeader := false
	for _, text := range texts {
		words := strings.Fields(text)
		if len(words) == 0 {
			continue
		}

		header := isHeader(text, options)
		last := len(rows) - 1
		switch {
		case last < 0,
			header,
			lastIsHeader,
			len(rows[last]) >= options.RowTokenLimit:
			rows = append(rows, words)
		default:
			rows[last] = append(rows[last], words...)
		}
		lastIsHeader = header
	}

	return Table{Rows: rows}
}

// IsHeader reports whether text reads as a header with the default thresholds
func IsHeader(text string) bool {
	return isHeader(text, DefaultOptions())
}

// isHeader is case-driven and length-gated: the trimmed text must equal its
// upper-case form and be longer than HeaderMinLength characters.
func isHeader(text string, options Options) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed == strings.ToUpper(trimmed) &&
		utf8.RuneCountInString(trimmed) > options.HeaderMinLength
}
