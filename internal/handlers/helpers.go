package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/pyhub-apps/pdfregion/pkg/coords"
	"github.com/pyhub-apps/pdfregion/pkg/intake"
	"github.com/pyhub-apps/pdfregion/pkg/pdf"
	"github.com/pyhub-apps/pdfregion/pkg/session"
	"github.com/pyhub-apps/pdfregion/pkg/table"
)

var validate = validator.New()

// Response is the JSON body returned by the API
type Response struct {
	Status       string                `json:"status"`
	Notification *session.Notification `json:"notification,omitempty"`
	Document     *session.Snapshot     `json:"document,omitempty"`
	Page         *session.PageInfo     `json:"page,omitempty"`
	Error        string                `json:"error,omitempty"`
}

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, Response{Status: "error", Error: message})
}

// WriteNotification writes the notification for a failed action
func WriteNotification(w http.ResponseWriter, err error, n session.Notification) error {
	return WriteJSON(w, StatusFor(err), Response{Status: "error", Notification: &n, Error: err.Error()})
}

// DecodeJSON reads and validates a JSON request body
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// StatusFor maps an action error to an HTTP status code
func StatusFor(err error) int {
	var rendererErr *session.RendererError

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, intake.ErrInvalidFileType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, pdf.ErrDocumentLoad),
		errors.Is(err, table.ErrNoTextInSelection),
		errors.Is(err, table.ErrInvalidTableStructure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNoDocument),
		errors.Is(err, session.ErrNoSelection),
		errors.Is(err, coords.ErrSurfaceNotReady):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	case errors.As(err, &rendererErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
