// Package extract converts uploaded contract documents into plain text.
package extract

import (
	"bytes"
	"context"
)

var pdfMagic = []byte("%PDF-")

// TextExtractor is stage one of the pipeline: document bytes -> plain text.
type TextExtractor interface {
	// Validate reports whether data carries the expected document signature.
	Validate(data []byte) bool
	// Extract returns the document's text content.
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractionError is a terminal stage failure; its message becomes the
// failed job's reason.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string { return e.Message }
func (e *ExtractionError) Unwrap() error { return e.Err }

// IsPDF checks the PDF magic bytes.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, pdfMagic)
}
