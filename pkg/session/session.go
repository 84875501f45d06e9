// Package session drives one user's document viewing, area selection and
// export workflow.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ternarybob/arbor"

	"github.com/pyhub-apps/pdfregion/pkg/coords"
	"github.com/pyhub-apps/pdfregion/pkg/intake"
	"github.com/pyhub-apps/pdfregion/pkg/pdf"
	"github.com/pyhub-apps/pdfregion/pkg/selection"
	"github.com/pyhub-apps/pdfregion/pkg/sheet"
	"github.com/pyhub-apps/pdfregion/pkg/table"
)

// Registry keeps uploaded files for the lifetime of the session
type Registry interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
	ClearAll(ctx context.Context) error
}

// Export is a finished spreadsheet ready to be handed to the user
type Export struct {
	Page        int
	Table       table.Table
	FileName    string
	ContentType string
	Data        []byte
}

// Snapshot describes the observable session state
type Snapshot struct {
	FileName    string          `json:"fileName,omitempty"`
	Token       string          `json:"token,omitempty"`
	PageCount   int             `json:"pageCount"`
	CurrentPage int             `json:"currentPage"`
	Selecting   bool            `json:"selecting"`
	Selection   *selection.Rect `json:"selection,omitempty"`
	Exporting   bool            `json:"exporting"`
}

// PageInfo describes the page currently shown
type PageInfo struct {
	Number   int          `json:"number"`
	Viewport pdf.Viewport `json:"viewport"`
	Rotation int          `json:"rotation"`
}

// Option configures a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(logger arbor.ILogger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithTableOptions sets the clustering thresholds used on export
func WithTableOptions(opts ...table.Option) Option {
	return func(s *Session) {
		s.tableOptions = append(s.tableOptions, opts...)
	}
}

// WithEmitter sets the spreadsheet emitter
func WithEmitter(emitter *sheet.Emitter) Option {
	return func(s *Session) {
		s.emitter = emitter
	}
}

// WithFileName sets the name of exported workbooks
func WithFileName(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.exportName = name
		}
	}
}

// Session owns at most one open document. All methods are safe for
// concurrent use and run one at a time.
type Session struct {
	mu sync.Mutex

	renderer     pdf.Renderer
	registry     Registry
	emitter      *sheet.Emitter
	tableOptions []table.Option
	exportName   string
	logger       arbor.ILogger

	doc         pdf.Document
	fileName    string
	token       string
	currentPage int
	tracker     *selection.Tracker

	// exporting is readable while an export holds mu
	exporting atomic.Bool
}

// New starts a session and clears any files left in the registry
func New(ctx context.Context, renderer pdf.Renderer, registry Registry, opts ...Option) (*Session, error) {
	s := &Session{
		renderer:   renderer,
		registry:   registry,
		exportName: sheet.DefaultFileName,
		tracker:    selection.NewTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.emitter == nil {
		s.emitter = sheet.NewEmitter(sheet.DefaultSheetName)
	}
	if s.logger == nil {
		s.logger = arbor.NewLogger()
	}

	if err := registry.ClearAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear temporary files: %w", err)
	}
	return s, nil
}

// Open validates f, registers it and loads it as the current document.
// On failure the previous document, if any, stays open.
func (s *Session) Open(ctx context.Context, f intake.File) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := intake.Validate(f); err != nil {
		s.logger.Warn().Str("file", f.Name).Str("type", f.MediaType).Msg("Rejected upload")
		return NotificationFor(err), err
	}

	token, err := s.registry.Store(ctx, f.Name, f.Data)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrFileHandling, err)
		s.logger.Error().Err(err).Str("file", f.Name).Msg("Failed to register upload")
		return NotificationFor(err), err
	}

	doc, err := s.renderer.LoadDocument(ctx, f.Data)
	if err != nil {
		if !errors.Is(err, pdf.ErrDocumentLoad) {
			err = fmt.Errorf("%w: %v", pdf.ErrDocumentLoad, err)
		}
		s.logger.Error().Err(err).Str("file", f.Name).Msg("Failed to load PDF")
		return NotificationFor(err), err
	}

	if s.doc != nil {
		if err := s.doc.Close(); err != nil {
			s.logger.Warn().Err(err).Str("file", s.fileName).Msg("Failed to close previous document")
		}
	}

	s.doc = doc
	s.fileName = f.Name
	s.token = token
	s.currentPage = 1
	s.tracker.Reset()

	s.logger.Info().
		Str("file", f.Name).
		Str("token", token).
		Int("pages", doc.PageCount()).
		Msg("PDF loaded")

	return loadedNotification, nil
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		FileName:    s.fileName,
		Token:       s.token,
		CurrentPage: s.currentPage,
		Selecting:   s.tracker.Selecting(),
		Exporting:   s.exporting.Load(),
	}
	if s.doc != nil {
		snap.PageCount = s.doc.PageCount()
	}
	if s.tracker.Selecting() {
		rect := s.tracker.Current()
		snap.Selection = &rect
	} else if rect, ok := s.tracker.Selection(); ok {
		snap.Selection = &rect
	}
	return snap
}

// Exporting reports whether an export is running. It does not wait for
// other session calls.
func (s *Session) Exporting() bool {
	return s.exporting.Load()
}

// NextPage moves forward one page, stopping at the last page
func (s *Session) NextPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goTo(s.currentPage + 1)
}

// PrevPage moves back one page, stopping at the first page
func (s *Session) PrevPage() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goTo(s.currentPage - 1)
}

// GoToPage moves to page n, clamped to the document
func (s *Session) GoToPage(n int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return 0, ErrNoDocument
	}
	return s.goTo(n), nil
}

// goTo clamps n into range. Changing page keeps the selection rectangle,
// which is then applied to the new page on export.
func (s *Session) goTo(n int) int {
	if s.doc == nil {
		return s.currentPage
	}
	if n < 1 {
		n = 1
	}
	if count := s.doc.PageCount(); n > count {
		n = count
	}
	s.currentPage = n
	return n
}

// Page describes the current page
func (s *Session) Page(ctx context.Context) (PageInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return PageInfo{}, ErrNoDocument
	}

	page, err := s.doc.Page(ctx, s.currentPage)
	if err != nil {
		return PageInfo{}, rendererError("page", err)
	}
	viewport, err := page.Viewport(ctx)
	if err != nil {
		return PageInfo{}, rendererError("viewport", err)
	}

	info := PageInfo{Number: page.Number(), Viewport: viewport}
	if r, ok := page.(interface{ Rotation() int }); ok {
		info.Rotation = r.Rotation()
	}
	return info, nil
}

// PointerDown starts a new selection at p
func (s *Session) PointerDown(p selection.Point) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.PointerDown(p)
	return s.snapshot()
}

// PointerMove updates the in-progress selection
func (s *Session) PointerMove(p selection.Point) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.PointerMove(p)
	return s.snapshot()
}

// PointerUp completes the selection
func (s *Session) PointerUp() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.PointerUp()
	return s.snapshot()
}

// PointerLeave completes the selection when the pointer leaves the surface
func (s *Session) PointerLeave() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracker.PointerLeave()
	return s.snapshot()
}

// Export extracts the selected area of the current page into a workbook.
// surface is the displayed size of the page.
func (s *Session) Export(ctx context.Context, surface coords.Size) (*Export, Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, NotificationFor(ErrNoDocument), ErrNoDocument
	}
	rect, ok := s.tracker.Selection()
	if !ok {
		return nil, NotificationFor(ErrNoSelection), ErrNoSelection
	}

	s.exporting.Store(true)
	defer s.exporting.Store(false)

	export, err := s.export(ctx, rect, surface)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("file", s.fileName).
			Int("page", s.currentPage).
			Msg("Export failed")
		return nil, NotificationFor(err), err
	}

	s.logger.Info().
		Str("file", s.fileName).
		Int("page", export.Page).
		Int("rows", len(export.Table.Rows)).
		Int("columns", export.Table.Columns()).
		Msg("Selection exported")

	return export, exportedNotification, nil
}

func (s *Session) export(ctx context.Context, rect selection.Rect, surface coords.Size) (*Export, error) {
	page, err := s.doc.Page(ctx, s.currentPage)
	if err != nil {
		return nil, rendererError("page", err)
	}

	viewport, err := page.Viewport(ctx)
	if err != nil {
		return nil, rendererError("viewport", err)
	}

	pageRect, err := coords.Map(rect, surface, viewport)
	if err != nil {
		return nil, err
	}

	if r, ok := page.(interface{ Rotation() int }); ok && r.Rotation() != 0 {
		s.logger.Warn().
			Int("page", page.Number()).
			Int("rotation", r.Rotation()).
			Msg("Page is rotated; selection is mapped without rotation")
	}

	runs, err := page.TextRuns(ctx)
	if err != nil {
		return nil, rendererError("text", err)
	}

	s.logger.Debug().
		Float64("x", pageRect.X).
		Float64("y", pageRect.Y).
		Float64("width", pageRect.Width).
		Float64("height", pageRect.Height).
		Int("runs", len(runs)).
		Msg("Extracting selection")

	tbl, err := table.Extract(runs, pageRect, s.tableOptions...)
	if err != nil {
		return nil, err
	}

	data, err := s.emitter.Encode(tbl)
	if err != nil {
		return nil, err
	}

	return &Export{
		Page:        page.Number(),
		Table:       tbl,
		FileName:    s.exportName,
		ContentType: sheet.ContentType,
		Data:        data,
	}, nil
}

// Close closes the document and clears the registry
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.doc != nil {
		errs = append(errs, s.doc.Close())
		s.doc = nil
	}
	errs = append(errs, s.registry.ClearAll(ctx))

	s.fileName = ""
	s.token = ""
	s.currentPage = 0
	s.tracker.Reset()

	return errors.Join(errs...)
}
