package pdf

import (
	"bytes"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"
)

// LedongthucSource reads glyphs using the ledongthuc/pdf library.
// It provides the most accurate text positions and is tried first.
type LedongthucSource struct {
	reader *lpdf.Reader
}

// OpenLedongthuc parses an in-memory PDF with ledongthuc/pdf
func OpenLedongthuc(src []byte) (*LedongthucSource, error) {
	r, err := lpdf.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with ledongthuc: %w", err)
	}
	return &LedongthucSource{reader: r}, nil
}

// Name identifies the backend
func (s *LedongthucSource) Name() string {
	return "ledongthuc"
}

// NumPage returns the number of pages
func (s *LedongthucSource) NumPage() int {
	return s.reader.NumPage()
}

// Glyphs extracts the positioned glyphs of a page
func (s *LedongthucSource) Glyphs(pageNumber int) (glyphs []glyph, err error) {
	if pageNumber < 1 || pageNumber > s.reader.NumPage() {
		return nil, fmt.Errorf("invalid page number: %d", pageNumber)
	}

	page := s.reader.Page(pageNumber)
	if page.V.IsNull() {
		return nil, fmt.Errorf("page %d has no dictionary", pageNumber)
	}

	// The library panics on malformed content streams
	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = fmt.Errorf("failed to read content of page %d: %v", pageNumber, r)
		}
	}()

	content := page.Content()
	glyphs = make([]glyph, 0, len(content.Text))
	for _, text := range content.Text {
		glyphs = append(glyphs, glyph{
			S:        text.S,
			Font:     text.Font,
			FontSize: text.FontSize,
			X:        text.X,
			Y:        text.Y,
			W:        text.W,
		})
	}

	return glyphs, nil
}

// pageBox reads the MediaBox and Rotate entries of a page, following
// inherited attributes up the page tree. Letter size is assumed when the
// page has no usable MediaBox.
func (s *LedongthucSource) pageBox(pageNumber int) (box pageBox) {
	box = letterBox()

	defer func() {
		if r := recover(); r != nil {
			box = letterBox()
		}
	}()

	mediaBox, rotate := lpdf.Value{}, lpdf.Value{}
	node := s.reader.Page(pageNumber).V
	for depth := 0; depth < maxTreeDepth && node.Kind() == lpdf.Dict; depth++ {
		if mediaBox.Kind() != lpdf.Array {
			mediaBox = node.Key("MediaBox")
		}
		if rotate.Kind() != lpdf.Integer {
			rotate = node.Key("Rotate")
		}
		node = node.Key("Parent")
	}

	if mediaBox.Kind() == lpdf.Array && mediaBox.Len() == 4 {
		box = boxFromCorners(
			mediaBox.Index(0).Float64(), mediaBox.Index(1).Float64(),
			mediaBox.Index(2).Float64(), mediaBox.Index(3).Float64(),
		)
	}
	if rotate.Kind() == lpdf.Integer {
		box.rotation = int(rotate.Int64())
	}
	return box
}

// Close releases the reader
func (s *LedongthucSource) Close() error {
	s.reader = nil
	return nil
}
