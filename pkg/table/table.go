// Package table filters a page's text runs by a page-space rectangle and
// clusters the surviving strings into rows and columns.
package table

import (
	"errors"
)

var (
	// ErrNoTextInSelection indicates no text run fell inside the selection
	ErrNoTextInSelection = errors.New("no text was found in the selected area")

	// ErrInvalidTableStructure indicates clustering produced no rows
	ErrInvalidTableStructure = errors.New("could not create a valid table from the selected content")
)

// Table is an ordered sequence of rows, each an ordered sequence of cells
type Table struct {
	Rows [][]string `json:"rows"`
}

// Columns returns the length of the longest row
func (t Table) Columns() int {
	columns := 0
	for _, row := range t.Rows {
		if len(row) > columns {
			columns = len(row)
		}
	}
	return columns
}

// IsNormalized reports whether every row has the same number of cells
func (t Table) IsNormalized() bool {
	columns := t.Columns()
	for _, row := range t.Rows {
		if len(row) != columns {
			return false
		}
	}
	return true
}

// Normalize pads every row on the right with empty cells so that all rows
// have as many cells as the longest one. The receiver is not modified.
func (t Table) Normalize() Table {
	columns := t.Columns()
	rows := make([][]string, len(t.Rows))

	for i, row := range t.Rows {
		padded := make([]string, columns)
		copy(padded, row)
		rows[i] = padded
	}

	return Table{Rows: rows}
}
