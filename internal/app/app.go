// Package app wires the configuration, logger, registry and session that
// the server and CLI share.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/pyhub-apps/pdfregion/internal/config"
	"github.com/pyhub-apps/pdfregion/pkg/pdf"
	"github.com/pyhub-apps/pdfregion/pkg/session"
	"github.com/pyhub-apps/pdfregion/pkg/sheet"
	"github.com/pyhub-apps/pdfregion/pkg/tempstore"
)

// App holds the application services
type App struct {
	Config   *config.Config
	Logger   arbor.ILogger
	Registry *tempstore.Registry
	Renderer *pdf.Loader
	Session  *session.Session
}

// New creates the services described by cfg
func New(ctx context.Context, cfg *config.Config, logger arbor.ILogger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	registry, err := tempstore.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize registry: %w", err)
	}
	a.Registry = registry

	a.Renderer = pdf.NewLoader(
		pdf.WithLogger(logger),
		pdf.WithTextRunOptions(cfg.TextRunOptions()...),
	)

	a.Session, err = session.New(ctx, a.Renderer, a.Registry,
		session.WithLogger(logger),
		session.WithTableOptions(cfg.TableOptions()...),
		session.WithEmitter(sheet.NewEmitter(cfg.Export.SheetName)),
		session.WithFileName(cfg.Export.FileName),
	)
	if err != nil {
		registry.Close()
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}

	logger.Debug().
		Int("row_token_limit", cfg.Extract.RowTokenLimit).
		Int("header_min_length", cfg.Extract.HeaderMinLength).
		Str("sheet", cfg.Export.SheetName).
		Msg("Application initialized")

	return a, nil
}

// Close ends the session and releases the registry
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Session != nil {
		errs = append(errs, a.Session.Close(ctx))
	}
	if a.Registry != nil {
		errs = append(errs, a.Registry.Close())
	}
	return errors.Join(errs...)
}
