package pdf

import (
	"bytes"
	"fmt"

	gopdf "github.com/dslipak/pdf"
)

// DsliPakSource reads glyphs using the dslipak/pdf library.
// Used when ledongthuc cannot parse the document.
type DsliPakSource struct {
	reader *gopdf.Reader
}

// OpenDslipak parses an in-memory PDF with dslipak/pdf
func OpenDslipak(src []byte) (*DsliPakSource, error) {
	r, err := gopdf.NewReader(bytes.NewReader(src), int64(len(src)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF with dslipak: %w", err)
	}
	return &DsliPakSource{reader: r}, nil
}

// Name identifies the backend
func (s *DsliPakSource) Name() string {
	return "dslipak"
}

// NumPage returns the number of pages
func (s *DsliPakSource) NumPage() int {
	return s.reader.NumPage()
}

// Glyphs extracts the positioned glyphs of a page
func (s *DsliPakSource) Glyphs(pageNumber int) (glyphs []glyph, err error) {
	if pageNumber < 1 || pageNumber > s.reader.NumPage() {
		return nil, fmt.Errorf("invalid page number: %d", pageNumber)
	}

	defer func() {
		if r := recover(); r != nil {
			glyphs = nil
			err = fmt.Errorf("failed to read content of page %d: %v", pageNumber, r)
		}
	}()

	content := s.reader.Page(pageNumber).Content()
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
func (s *DsliPakSource) pageBox(pageNumber int) (box pageBox) {
	box = letterBox()

	defer func() {
		if r := recover(); r != nil {
			box = letterBox()
		}
	}()

	mediaBox, rotate := gopdf.Value{}, gopdf.Value{}
	node := s.reader.Page(pageNumber).V
	for depth := 0; depth < maxTreeDepth && node.Kind() == gopdf.Dict; depth++ {
		if mediaBox.Kind() != gopdf.Array {
			mediaBox = node.Key("MediaBox")
		}
		if rotate.Kind() != gopdf.Integer {
			rotate = node.Key("Rotate")
		}
		node = node.Key("Parent")
	}

	if mediaBox.Kind() == gopdf.Array && mediaBox.Len() == 4 {
		box = boxFromCorners(
			mediaBox.Index(0).Float64(), mediaBox.Index(1).Float64(),
			mediaBox.Index(2).Float64(), mediaBox.Index(3).Float64(),
		)
	}
	if rotate.Kind() == gopdf.Integer {
		box.rotation = int(rotate.Int64())
	}
	return box
}

// Close releases the reader
func (s *DsliPakSource) Close() error {
	s.reader = nil
	return nil
}
