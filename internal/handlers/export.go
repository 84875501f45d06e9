package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/pyhub-apps/pdfregion/pkg/coords"
	"github.com/pyhub-apps/pdfregion/pkg/session"
)

// ExportHandler turns the current selection into a workbook download
type ExportHandler struct {
	session *session.Session
	logger  arbor.ILogger
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(s *session.Session, logger arbor.ILogger) *ExportHandler {
	return &ExportHandler{session: s, logger: logger}
}

// ExportRequest carries the displayed size of the page
type ExportRequest struct {
	Surface coords.Size `json:"surface"`
}

// ExportHandler handles POST /api/export
func (h *ExportHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ExportRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	export, n, err := h.session.Export(r.Context(), req.Surface)
	if err != nil {
		WriteNotification(w, err, n)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(export.Data); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to write export")
	}
}
