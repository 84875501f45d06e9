package session

import (
	"errors"
)

var (
	// ErrNoDocument indicates an action that needs a loaded PDF
	ErrNoDocument = errors.New("no document loaded")

	// ErrNoSelection indicates an export without a completed selection
	ErrNoSelection = errors.New("no area selected")

	// ErrFileHandling indicates the upload could not be registered
	ErrFileHandling = errors.New("failed to handle the PDF file")
)

// RendererError carries a renderer failure whose message is shown to the
// user unchanged.
type RendererError struct {
	Op  string // "page", "text", "viewport"
	Err error
}

func (e *RendererError) Error() string {
	return e.Err.Error()
}

func (e *RendererError) Unwrap() error {
	return e.Err
}

func rendererError(op string, err error) *RendererError {
	return &RendererError{Op: op, Err: err}
}
