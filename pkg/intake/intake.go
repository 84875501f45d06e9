// Package intake accepts user-supplied files and checks they are PDFs.
package intake

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// PDFMediaType is the only media type accepted
const PDFMediaType = "application/pdf"

// ErrInvalidFileType indicates the declared media type is not PDF
var ErrInvalidFileType = errors.New("invalid file type")

// File is a user-supplied file together with its declared media type
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// Size returns the file size in bytes
func (f File) Size() int {
	return len(f.Data)
}

// Validate checks the declared media type. Only an exact match is
// accepted; parameters or different casing are rejected.
func Validate(f File) error {
	if f.MediaType != PDFMediaType {
		return fmt.Errorf("%w: %q", ErrInvalidFileType, f.MediaType)
	}
	return nil
}

// DetectMediaType sniffs the media type from the content. Used for sources
// such as the command line that carry no declared type.
func DetectMediaType(data []byte) string {
	mtype := mimetype.Detect(data)
	if mtype.Is(PDFMediaType) {
		return PDFMediaType
	}
	return mtype.String()
}

// ReadFile loads a file from disk and declares its sniffed media type
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return File{
		Name:      filepath.Base(path),
		MediaType: DetectMediaType(data),
		Data:      data,
	}, nil
}
