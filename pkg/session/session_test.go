package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/xuri/excelize/v2"

	"github.com/pyhub-apps/pdfregion/internal/testpdf"
	"github.com/pyhub-apps/pdfregion/pkg/coords"
	"github.com/pyhub-apps/pdfregion/pkg/intake"
	"github.com/pyhub-apps/pdfregion/pkg/pdf"
	"github.com/pyhub-apps/pdfregion/pkg/selection"
	"github.com/pyhub-apps/pdfregion/pkg/table"
	"github.com/pyhub-apps/pdfregion/pkg/tempstore"
)

var letter = coords.Size{Width: testpdf.PageWidth, Height: testpdf.PageHeight}

// fakeRenderer serves a fixed set of pages and counts loads
type fakeRenderer struct {
	loads   int
	pages   int
	runs    []pdf.TextRun
	loadErr error
	textErr error
}

func (r *fakeRenderer) LoadDocument(ctx context.Context, src []byte) (pdf.Document, error) {
	r.loads++
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return &fakeDocument{renderer: r}, nil
}

type fakeDocument struct {
	renderer *fakeRenderer
	closed   bool
}

func (d *fakeDocument) PageCount() int { return d.renderer.pages }

func (d *fakeDocument) Page(ctx context.Context, n int) (pdf.Page, error) {
	if n < 1 || n > d.renderer.pages {
		return nil, errors.New("page out of range")
	}
	return &fakePage{doc: d, number: n}, nil
}

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

type fakePage struct {
	doc    *fakeDocument
	number int
}

func (p *fakePage) Number() int { return p.number }

func (p *fakePage) TextRuns(ctx context.Context) ([]pdf.TextRun, error) {
	if p.doc.renderer.textErr != nil {
		return nil, p.doc.renderer.textErr
	}
	return p.doc.renderer.runs, nil
}

func (p *fakePage) Viewport(ctx context.Context) (pdf.Viewport, error) {
	return pdf.Viewport{Width: testpdf.PageWidth, Height: testpdf.PageHeight}, nil
}

func newSession(t *testing.T, renderer pdf.Renderer) (*Session, *tempstore.Registry) {
	t.Helper()

	registry, err := tempstore.Open()
	require.NoError(t, err)
	t.Cleanup(func() { registry.Close() })

	s, err := New(context.Background(), renderer, registry, WithLogger(arbor.NewLogger()))
	require.NoError(t, err)
	return s, registry
}

func stored(t *testing.T, registry *tempstore.Registry) int {
	t.Helper()
	n, err := registry.Len()
	require.NoError(t, err)
	return n
}

func pdfFile(data []byte) intake.File {
	return intake.File{Name: "roster.pdf", MediaType: intake.PDFMediaType, Data: data}
}

// drag selects the display rectangle between two points
func drag(s *Session, from, to selection.Point) {
	s.PointerDown(from)
	s.PointerMove(to)
	s.PointerUp()
}

func TestOpenRejectsNonPDF(t *testing.T) {
	renderer := &fakeRenderer{pages: 1}
	s, registry := newSession(t, renderer)

	n, err := s.Open(context.Background(), intake.File{
		Name:      "notes.txt",
		MediaType: "text/plain",
		Data:      []byte("hello"),
	})

	assert.ErrorIs(t, err, intake.ErrInvalidFileType)
	assert.Equal(t, "Invalid file type", n.Title)
	assert.Equal(t, "Please select a PDF file.", n.Description)
	assert.True(t, n.Failed())
	assert.Zero(t, renderer.loads)
	assert.Zero(t, stored(t, registry))
	assert.Zero(t, s.Snapshot().PageCount)
}

func TestOpenLoadsDocument(t *testing.T) {
	s, registry := newSession(t, pdf.NewLoader())
	src := testpdf.Build(t, testpdf.Roster(), []testpdf.Text{{X: 72, Y: 72, S: "Second"}})

	n, err := s.Open(context.Background(), pdfFile(src))
	require.NoError(t, err)

	assert.Equal(t, loadedNotification, n)
	assert.Equal(t, 1, stored(t, registry))

	snap := s.Snapshot()
	assert.Equal(t, "roster.pdf", snap.FileName)
	assert.True(t, strings.HasPrefix(snap.Token, "temp_"))
	assert.True(t, strings.HasSuffix(snap.Token, "_roster.pdf"))
	assert.Equal(t, 2, snap.PageCount)
	assert.Equal(t, 1, snap.CurrentPage)
	assert.Nil(t, snap.Selection)
}

func TestOpenLargeUpload(t *testing.T) {
	renderer := &fakeRenderer{pages: 1}
	s, registry := newSession(t, renderer)

	data := bytes.Repeat([]byte("%PDF-1.7 padding "), (3<<20)/17+1)
	require.Greater(t, len(data), 3<<20)

	n, err := s.Open(context.Background(), pdfFile(data))
	require.NoError(t, err)
	assert.Equal(t, loadedNotification, n)
	assert.Equal(t, 1, renderer.loads)
	assert.Equal(t, 1, stored(t, registry))

	got, err := registry.Load(context.Background(), s.Snapshot().Token)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
}

func TestOpenLoadFailureKeepsPreviousDocument(t *testing.T) {
	s, _ := newSession(t, pdf.NewLoader())
	ctx := context.Background()

	_, err := s.Open(ctx, pdfFile(testpdf.Build(t, testpdf.Roster())))
	require.NoError(t, err)

	n, err := s.Open(ctx, intake.File{Name: "broken.pdf", MediaType: intake.PDFMediaType, Data: []byte("not really a pdf")})
	assert.ErrorIs(t, err, pdf.ErrDocumentLoad)
	assert.Equal(t, "Error", n.Title)
	assert.True(t, strings.HasPrefix(n.Description, "Failed to load PDF: "))
	assert.True(t, n.Failed())

	assert.Equal(t, "roster.pdf", s.Snapshot().FileName)
	assert.Equal(t, 1, s.Snapshot().PageCount)
}

func TestOpenWrapsRendererErrors(t *testing.T) {
	s, _ := newSession(t, &fakeRenderer{loadErr: errors.New("bad xref table")})

	n, err := s.Open(context.Background(), pdfFile([]byte("%PDF-1.4")))
	assert.ErrorIs(t, err, pdf.ErrDocumentLoad)
	assert.Equal(t, "Failed to load PDF: bad xref table", n.Description)
}

func TestOpenResetsPageAndSelection(t *testing.T) {
	s, _ := newSession(t, &fakeRenderer{pages: 3})
	ctx := context.Background()

	_, err := s.Open(ctx, pdfFile([]byte("%PDF")))
	require.NoError(t, err)
	s.NextPage()
	drag(s, selection.Point{X: 10, Y: 10}, selection.Point{X: 50, Y: 50})
	require.NotNil(t, s.Snapshot().Selection)

	_, err = s.Open(ctx, pdfFile([]byte("%PDF")))
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.CurrentPage)
	assert.Nil(t, snap.Selection)
}

func TestPageNavigationClamps(t *testing.T) {
	s, _ := newSession(t, &fakeRenderer{pages: 3})

	_, err := s.GoToPage(2)
	assert.ErrorIs(t, err, ErrNoDocument)

	_, err = s.Open(context.Background(), pdfFile([]byte("%PDF")))
	require.NoError(t, err)

	assert.Equal(t, 1, s.PrevPage())
	assert.Equal(t, 2, s.NextPage())
	assert.Equal(t, 3, s.NextPage())
	assert.Equal(t, 3, s.NextPage())

	page, err := s.GoToPage(0)
	require.NoError(t, err)
	assert.Equal(t, 1, page)

	page, err = s.GoToPage(99)
	require.NoError(t, err)
	assert.Equal(t, 3, page)
}

func TestPointerEventsReportSelection(t *testing.T) {
	s, _ := newSession(t, &fakeRenderer{pages: 1})

	snap := s.PointerDown(selection.Point{X: 100, Y: 100})
	assert.True(t, snap.Selecting)

	snap = s.PointerMove(selection.Point{X: 40, Y: 160})
	require.NotNil(t, snap.Selection)
	assert.Equal(t, selection.Rect{X: 40, Y: 100, Width: 60, Height: 60}, *snap.Selection)

	snap = s.PointerLeave()
	assert.False(t, snap.Selecting)
	require.NotNil(t, snap.Selection)
	assert.Equal(t, selection.Rect{X: 40, Y: 100, Width: 60, Height: 60}, *snap.Selection)

	// Moves after the drag ended are ignored
	snap = s.PointerMove(selection.Point{X: 500, Y: 500})
	assert.Equal(t, selection.Rect{X: 40, Y: 100, Width: 60, Height: 60}, *snap.Selection)
}

func TestExportRoster(t *testing.T) {
	s, _ := newSession(t, pdf.NewLoader())
	ctx := context.Background()

	_, err := s.Open(ctx, pdfFile(testpdf.Build(t, testpdf.Roster())))
	require.NoError(t, err)

	drag(s, selection.Point{X: 60, Y: 80}, selection.Point{X: 300, Y: 140})

	export, n, err := s.Export(ctx, letter)
	require.NoError(t, err)
	assert.Equal(t, exportedNotification, n)

	assert.Equal(t, [][]string{
		{"NAME", ""},
		{"Alice", "Bob"},
	}, export.Table.Rows)
	assert.Equal(t, 1, export.Page)
	assert.Equal(t, "extracted_data.xlsx", export.FileName)

	f, err := excelize.OpenReader(bytes.NewReader(export.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Extracted Data")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"NAME"}, {"Alice", "Bob"}}, rows)

	assert.False(t, s.Snapshot().Exporting)
}

func TestExportScalesSurface(t *testing.T) {
	s, _ := newSession(t, pdf.NewLoader())
	ctx := context.Background()

	_, err := s.Open(ctx, pdfFile(testpdf.Build(t, testpdf.Roster())))
	require.NoError(t, err)

	// Same area as TestExportRoster on a surface rendered at half size
	drag(s, selection.Point{X: 30, Y: 40}, selection.Point{X: 150, Y: 70})

	export, _, err := s.Export(ctx, coords.Size{Width: letter.Width / 2, Height: letter.Height / 2})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"NAME", ""}, {"Alice", "Bob"}}, export.Table.Rows)
}

func TestExportIsDeterministic(t *testing.T) {
	s, _ := newSession(t, pdf.NewLoader())
	ctx := context.Background()

	_, err := s.Open(ctx, pdfFile(testpdf.Build(t, testpdf.Roster())))
	require.NoError(t, err)
	drag(s, selection.Point{X: 0, Y: 0}, selection.Point{X: letter.Width, Y: letter.Height})

	first, _, err := s.Export(ctx, letter)
	require.NoError(t, err)
	second, _, err := s.Export(ctx, letter)
	require.NoError(t, err)

	assert.Equal(t, first.Table, second.Table)
}

func TestExportZeroRect(t *testing.T) {
	s, _ := newSession(t, &fakeRenderer{
		pages: 1,
		runs:  []pdf.TextRun{{Text: "Alice", Transform: pdf.Translation(0, 792)}},
	})
	ctx := context.Background()

	_, err := s.Open(ctx, pdfFile([]byte("%PDF")))
	require.NoError(t, err)

	s.PointerDown(selection.Point{X: 0, Y: 0})
	s.PointerUp()

	export, n, err := s.Export(ctx, letter)
	assert.Nil(t, export)
	assert.ErrorIs(t, err, table.ErrNoTextInSelection)
	assert.Equal(t, "No text found", n.Title)
	assert.True(t, n.Failed())
}

func TestExportFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("no document", func(t *testing.T) {
		s, _ := newSession(t, &fakeRenderer{pages: 1})
		_, n, err := s.Export(ctx, letter)
		assert.ErrorIs(t, err, ErrNoDocument)
		assert.True(t, n.Failed())
	})

	t.Run("no selection", func(t *testing.T) {
		s, _ := newSession(t, &fakeRenderer{pages: 1})
		_, err := s.Open(ctx, pdfFile([]byte("%PDF")))
		require.NoError(t, err)

		s.PointerDown(selection.Point{X: 1, Y: 1})
		_, _, err = s.Export(ctx, letter)
		assert.ErrorIs(t, err, ErrNoSelection)
	})

	t.Run("surface not ready", func(t *testing.T) {
		s, _ := newSession(t, &fakeRenderer{pages: 1})
		_, err := s.Open(ctx, pdfFile([]byte("%PDF")))
		require.NoError(t, err)
		drag(s, selection.Point{X: 0, Y: 0}, selection.Point{X: 10, Y: 10})

		_, n, err := s.Export(ctx, coords.Size{})
		assert.ErrorIs(t, err, coords.ErrSurfaceNotReady)
		assert.Equal(t, "Page not ready", n.Title)
	})

	t.Run("text failure shown verbatim", func(t *testing.T) {
		s, _ := newSession(t, &fakeRenderer{pages: 1, textErr: errors.New("font program missing")})
		_, err := s.Open(ctx, pdfFile([]byte("%PDF")))
		require.NoError(t, err)
		drag(s, selection.Point{X: 0, Y: 0}, selection.Point{X: 10, Y: 10})

		_, n, err := s.Export(ctx, letter)
		var rendererErr *RendererError
		require.ErrorAs(t, err, &rendererErr)
		assert.Equal(t, "text", rendererErr.Op)
		assert.Equal(t, "Error", n.Title)
		assert.Equal(t, "font program missing", n.Description)
	})

	t.Run("nothing inside selection", func(t *testing.T) {
		s, _ := newSession(t, &fakeRenderer{
			pages: 1,
			runs:  []pdf.TextRun{{Text: "far away", Transform: pdf.Translation(500, 10)}},
		})
		_, err := s.Open(ctx, pdfFile([]byte("%PDF")))
		require.NoError(t, err)
		drag(s, selection.Point{X: 0, Y: 0}, selection.Point{X: 10, Y: 10})

		_, n, err := s.Export(ctx, letter)
		assert.ErrorIs(t, err, table.ErrNoTextInSelection)
		assert.Equal(t, "No text was found in the selected area. Try selecting a different area.", n.Description)
	})
}

func TestExportUsesTableOptions(t *testing.T) {
	registry, err := tempstore.Open()
	require.NoError(t, err)
	defer registry.Close()

	renderer := &fakeRenderer{
		pages: 1,
		runs: []pdf.TextRun{
			{Text: "a b", Transform: pdf.Translation(10, 780)},
			{Text: "c d", Transform: pdf.Translation(10, 770)},
		},
	}
	s, err := New(context.Background(), renderer, registry, WithTableOptions(table.WithRowTokenLimit(2)))
	require.NoError(t, err)

	_, err = s.Open(context.Background(), pdfFile([]byte("%PDF")))
	require.NoError(t, err)
	drag(s, selection.Point{X: 0, Y: 0}, selection.Point{X: 100, Y: 100})

	export, _, err := s.Export(context.Background(), letter)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, export.Table.Rows)
}

func TestCloseClearsRegistry(t *testing.T) {
	renderer := &fakeRenderer{pages: 1}
	s, registry := newSession(t, renderer)
	ctx := context.Background()

	_, err := s.Open(ctx, pdfFile([]byte("%PDF")))
	require.NoError(t, err)
	require.Equal(t, 1, stored(t, registry))

	require.NoError(t, s.Close(ctx))
	assert.Zero(t, stored(t, registry))
	assert.Zero(t, s.Snapshot().PageCount)
}

func TestNewClearsRegistry(t *testing.T) {
	registry, err := tempstore.Open()
	require.NoError(t, err)
	defer registry.Close()

	_, err = registry.Store(context.Background(), "stale.pdf", []byte("%PDF"))
	require.NoError(t, err)

	_, err = New(context.Background(), &fakeRenderer{}, registry)
	require.NoError(t, err)
	assert.Zero(t, stored(t, registry))
}
