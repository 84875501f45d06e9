package session

import (
	"context"
	"errors"

	"github.com/pyhub-apps/pdfregion/pkg/coords"
	"github.com/pyhub-apps/pdfregion/pkg/intake"
	"github.com/pyhub-apps/pdfregion/pkg/pdf"
	"github.com/pyhub-apps/pdfregion/pkg/sheet"
	"github.com/pyhub-apps/pdfregion/pkg/table"
)

// Variant selects how a notification is displayed
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is the short message shown to the user after an action
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Failed reports whether the notification describes a failure
func (n Notification) Failed() bool {
	return n.Variant == VariantDestructive
}

var (
	loadedNotification = Notification{
		Title:       "Success",
		Description: "PDF file loaded successfully.",
		Variant:     VariantDefault,
	}
	exportedNotification = Notification{
		Title:       "Export successful",
		Description: "The selected content has been exported to Excel.",
		Variant:     VariantDefault,
	}
	exportFailedNotification = Notification{
		Title:       "Export failed",
		Description: "An error occurred while exporting the content. Please try again.",
		Variant:     VariantDestructive,
	}
)

// NotificationFor converts an action error into the message shown to the
// user. Errors that match no known condition are reported as export failures.
func NotificationFor(err error) Notification {
	destructive := func(title, description string) Notification {
		return Notification{Title: title, Description: description, Variant: VariantDestructive}
	}

	var rendererErr *RendererError

	switch {
	case err == nil:
		return Notification{}
	case errors.Is(err, intake.ErrInvalidFileType):
		return destructive("Invalid file type", "Please select a PDF file.")
	case errors.Is(err, pdf.ErrDocumentLoad):
		return destructive("Error", "Failed to load PDF: "+loadReason(err))
	case errors.Is(err, ErrFileHandling):
		return destructive("Error", "Failed to handle the PDF file. Please try again.")
	case errors.Is(err, ErrNoDocument), errors.Is(err, ErrNoSelection):
		return destructive("Nothing to export", "Load a PDF and select an area on the page first.")
	case errors.Is(err, coords.ErrSurfaceNotReady):
		return destructive("Page not ready", "The page has not finished rendering. Please try again.")
	case errors.Is(err, table.ErrNoTextInSelection):
		return destructive("No text found", "No text was found in the selected area. Try selecting a different area.")
	case errors.Is(err, table.ErrInvalidTableStructure):
		return destructive("Invalid table structure", "Could not create a valid table from the selected content. Please select a different area.")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return exportFailedNotification
	case errors.As(err, &rendererErr):
		return destructive("Error", rendererErr.Error())
	case errors.Is(err, sheet.ErrExport):
		return exportFailedNotification
	default:
		return exportFailedNotification
	}
}

// loadReason strips the sentinel prefix so only the renderer's message remains
func loadReason(err error) string {
	msg := err.Error()
	prefix := pdf.ErrDocumentLoad.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	if msg == pdf.ErrDocumentLoad.Error() {
		return "Unknown error"
	}
	return msg
}
