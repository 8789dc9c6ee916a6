package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"
)

// PdftotextExtractor extracts text from PDF bytes by piping them through the
// poppler pdftotext binary (stdin to stdout, no temp files).
type PdftotextExtractor struct {
	binary  string
	timeout time.Duration
	runner  Runner
}

type PdftotextOption func(*PdftotextExtractor)

func WithRunner(r Runner) PdftotextOption {
	return func(e *PdftotextExtractor) { e.runner = r }
}

func NewPdftotextExtractor(binary string, timeout time.Duration, opts ...PdftotextOption) *PdftotextExtractor {
	if binary == "" {
		binary = "pdftotext"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	e := &PdftotextExtractor{
		binary:  binary,
		timeout: timeout,
		runner:  execRunner{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *PdftotextExtractor) Validate(data []byte) bool {
	return IsPDF(data)
}

func (e *PdftotextExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	stdout, stderr, err := e.runner.Run(ctx, bytes.NewReader(data), e.binary, "-layout", "-q", "-", "-")
	if err != nil {
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = err.Error()
		}
		return "", &ExtractionError{Message: fmt.Sprintf("pdf text extraction failed: %s", msg), Err: err}
	}

	text := strings.TrimSpace(string(stdout))
	if text == "" {
		return "", &ExtractionError{Message: "no extractable text in document"}
	}
	return text, nil
}
