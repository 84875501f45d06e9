package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/pyhub-apps/pdfregion/pkg/intake"
	"github.com/pyhub-apps/pdfregion/pkg/session"
)

// DocumentHandler serves upload, state and page navigation
type DocumentHandler struct {
	session  *session.Session
	logger   arbor.ILogger
	maxBytes int64
}

// NewDocumentHandler creates a DocumentHandler. Uploads larger than
// maxBytes are rejected.
func NewDocumentHandler(s *session.Session, logger arbor.ILogger, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{session: s, logger: logger, maxBytes: maxBytes}
}

// PageRequest moves the current page
type PageRequest struct {
	Action string `json:"action" validate:"required,oneof=next prev goto"`
	Page   int    `json:"page" validate:"gte=0"`
}

// UploadHandler handles POST /api/document with a multipart "file" field.
// The part's declared Content-Type is the media type that gets validated.
func (h *DocumentHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File exceeds %d bytes", h.maxBytes))
			return
		}
		h.logger.Warn().Err(err).Msg("Failed to read upload")
		WriteError(w, http.StatusBadRequest, "Missing or unreadable file field")
		return
	}

	n, err := h.session.Open(r.Context(), file)
	if err != nil {
		WriteNotification(w, err, n)
		return
	}

	h.writeState(w, r, &n)
}

// GetHandler handles GET /api/document
func (h *DocumentHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	h.writeState(w, r, nil)
}

// PageHandler handles POST /api/document/page
func (h *DocumentHandler) PageHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req PageRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	if h.session.Snapshot().PageCount == 0 {
		err := session.ErrNoDocument
		WriteNotification(w, err, session.NotificationFor(err))
		return
	}

	switch req.Action {
	case "next":
		h.session.NextPage()
	case "prev":
		h.session.PrevPage()
	case "goto":
		if _, err := h.session.GoToPage(req.Page); err != nil {
			WriteNotification(w, err, session.NotificationFor(err))
			return
		}
	}

	h.writeState(w, r, nil)
}

func (h *DocumentHandler) writeState(w http.ResponseWriter, r *http.Request, n *session.Notification) {
	snap := h.session.Snapshot()
	resp := Response{Status: "success", Notification: n, Document: &snap}

	if snap.PageCount > 0 {
		page, err := h.session.Page(r.Context())
		if err != nil {
			WriteNotification(w, err, session.NotificationFor(err))
			return
		}
		resp.Page = &page
	}

	WriteJSON(w, http.StatusOK, resp)
}

// readUpload reads the "file" part of a multipart form
func readUpload(r *http.Request) (intake.File, error) {
	part, header, err := r.FormFile("file")
	if err != nil {
		return intake.File{}, err
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		return intake.File{}, err
	}

	return intake.File{
		Name:      header.Filename,
		MediaType: header.Header.Get("Content-Type"),
		Data:      data,
	}, nil
}
