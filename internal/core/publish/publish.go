// Package publish renders a contract record as a wiki page and returns its
// locator. A demo implementation returns a synthetic locator without any
// network call.
package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/perhapsishould/contract-processor/internal/core/record"
)

// Publisher is stage three of the pipeline: record -> page locator.
// target, when non-empty, overrides the configured destination space.
type Publisher interface {
	Publish(ctx context.Context, rec record.ContractRecord, target string) (string, error)
}

// PublishingError is a terminal stage failure; its message becomes the
// failed job's reason.
type PublishingError struct {
	Message string
	Err     error
}

func (e *PublishingError) Error() string { return e.Message }
func (e *PublishingError) Unwrap() error { return e.Err }

// renderPage renders the record as a markdown wiki page body.
func renderPage(rec record.ContractRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", rec.Title)
	fmt.Fprintf(&b, "%s\n\n", rec.Summary)

	b.WriteString("## Parties\n\n")
	for _, p := range rec.Parties {
		if p.Role != "" {
			fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Role)
		} else {
			fmt.Fprintf(&b, "- %s\n", p.Name)
		}
	}
	b.WriteString("\n## Details\n\n")

	row := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "| %s | %s |\n", label, value)
		}
	}
	b.WriteString("| Field | Value |\n|---|---|\n")
	row("Effective date", rec.EffectiveDate)
	row("Expiration date", rec.ExpirationDate)
	row("Contract value", rec.ContractValue)
	row("Currency", rec.CurrencyCode)
	row("Governing law", rec.GoverningLaw)

	if len(rec.KeyTerms) > 0 {
		b.WriteString("\n## Key terms\n\n")
		for _, t := range rec.KeyTerms {
			fmt.Fprintf(&b, "- %s\n", t)
		}
	}

	return b.String()
}
