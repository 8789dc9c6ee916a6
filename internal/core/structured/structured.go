// Package structured turns extracted contract text into a schema-validated
// ContractRecord. Two implementations exist: a remote model client and a
// deterministic demo fallback. The caller picks one at construction time.
package structured

import (
	"context"
	"strings"

	"github.com/perhapsishould/contract-processor/internal/core/record"
)

// Extractor is stage two of the pipeline: plain text -> structured record.
type Extractor interface {
	Extract(ctx context.Context, text string) (record.ContractRecord, error)
}

// ExtractionError is a terminal stage failure; its message becomes the
// failed job's reason.
type ExtractionError struct {
	Message string
	Err     error
}

func (e *ExtractionError) Error() string { return e.Message }
func (e *ExtractionError) Unwrap() error { return e.Err }

// stripFences removes a markdown code fence wrapper that models sometimes
// emit around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
