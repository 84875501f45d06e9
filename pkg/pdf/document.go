package pdf

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
)

// ErrDocumentLoad indicates the renderer rejected the document bytes
var ErrDocumentLoad = errors.New("failed to load PDF")

// Loader implements Renderer with the pdfcpu, ledongthuc and dslipak libraries
type Loader struct {
	config textRunConfig
	logger arbor.ILogger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithLogger sets the logger used to report backend fallbacks
func WithLogger(logger arbor.ILogger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithTextRunOptions sets how glyphs are merged into runs
func WithTextRunOptions(opts ...TextRunOption) LoaderOption {
	return func(l *Loader) {
		for _, opt := range opts {
			opt(&l.config)
		}
	}
}

// NewLoader creates a Loader
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{config: defaultTextRunConfig()}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = arbor.NewLogger()
	}
	return l
}

// LoadDocument parses an in-memory PDF. The text backend must accept the
// document; pdfcpu only supplies page geometry when it can read it.
func (l *Loader) LoadDocument(ctx context.Context, src []byte) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrDocumentLoad)
	}

	source, err := l.openSource(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentLoad, err)
	}

	info, err := inspectPDF(src)
	switch {
	case err != nil:
		l.logger.Warn().
			Err(err).
			Str("backend", source.Name()).
			Msg("pdfcpu could not read document, using backend page geometry")
		info = inspectSource(source)
	case source.NumPage() != info.pageCount:
		l.logger.Warn().
			Str("backend", source.Name()).
			Int("backend_pages", source.NumPage()).
			Int("pages", info.pageCount).
			Msg("Page count mismatch between backends")
	}

	if info.pageCount < 1 {
		source.Close()
		return nil, fmt.Errorf("%w: document has no pages", ErrDocumentLoad)
	}

	return &document{
		source: source,
		info:   info,
		config: l.config,
	}, nil
}

// openSource tries ledongthuc first as it has the most accurate text
// positions, then falls back to dslipak.
func (l *Loader) openSource(src []byte) (glyphSource, error) {
	primary, err := OpenLedongthuc(src)
	if err == nil {
		return primary, nil
	}

	l.logger.Debug().Err(err).Msg("Falling back to dslipak backend")

	fallback, fallbackErr := OpenDslipak(src)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%v; %w", err, fallbackErr)
	}
	return fallback, nil
}

// document implements Document
type document struct {
	source glyphSource
	info   *inspection
	config textRunConfig
}

// PageCount returns the total number of pages
func (d *document) PageCount() int {
	return d.info.pageCount
}

// Page returns a specific page by number (1-based)
func (d *document) Page(ctx context.Context, pageNumber int) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if pageNumber < 1 || pageNumber > d.info.pageCount {
		return nil, fmt.Errorf("page number %d out of range [1, %d]", pageNumber, d.info.pageCount)
	}
	return &page{
		doc:    d,
		number: pageNumber,
		box:    d.info.boxes[pageNumber-1],
	}, nil
}

// Close releases resources associated with the document
func (d *document) Close() error {
	if d.source != nil {
		return d.source.Close()
	}
	return nil
}

// page implements Page
type page struct {
	doc    *document
	number int
	box    pageBox
}

// Number returns the page number (1-based)
func (p *page) Number() int {
	return p.number
}

// TextRuns reads the page content and merges glyphs into runs.
// Anchors are shifted so that the MediaBox origin is (0, 0).
func (p *page) TextRuns(ctx context.Context) ([]TextRun, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	glyphs, err := p.doc.source.Glyphs(p.number)
	if err != nil {
		return nil, err
	}

	for i := range glyphs {
		glyphs[i].X -= p.box.originX
		glyphs[i].Y -= p.box.originY
	}

	return mergeGlyphs(glyphs, p.doc.config), nil
}

// Viewport returns the page dimensions at unit scale
func (p *page) Viewport(ctx context.Context) (Viewport, error) {
	if err := ctx.Err(); err != nil {
		return Viewport{}, err
	}
	return p.box.viewport, nil
}

// Rotation returns the page rotation in degrees
func (p *page) Rotation() int {
	return p.box.rotation
}
