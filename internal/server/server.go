package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pyhub-apps/pdfregion/internal/app"
	"github.com/pyhub-apps/pdfregion/internal/handlers"
)

// Server manages the HTTP server and routes
type Server struct {
	app    *app.App
	router *http.ServeMux
	server *http.Server

	documents *handlers.DocumentHandler
	exports   *handlers.ExportHandler
	pointer   *handlers.WebSocketHandler
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{
		app:       application,
		documents: handlers.NewDocumentHandler(application.Session, application.Logger, application.Config.Upload.MaxBytes),
		exports:   handlers.NewExportHandler(application.Session, application.Logger),
		pointer:   handlers.NewWebSocketHandler(application.Session, application.Logger, application.Config.MoveThrottle()),
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:         application.Config.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.withConditionalMiddleware(s.router)
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.app.Logger.Info().
		Str("address", s.server.Addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server and clears uploaded files
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := s.app.Close(ctx); err != nil {
		return fmt.Errorf("failed to release session: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
