package publish

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/perhapsishould/contract-processor/internal/core/record"
)

// DemoPublisher returns a synthetic locator without contacting any wiki.
type DemoPublisher struct {
	space string
}

func NewDemoPublisher(defaultSpace string) *DemoPublisher {
	if defaultSpace == "" {
		defaultSpace = "contracts"
	}
	return &DemoPublisher{space: defaultSpace}
}

func (p *DemoPublisher) Publish(_ context.Context, rec record.ContractRecord, target string) (string, error) {
	space := p.space
	if target != "" {
		space = target
	}
	return fmt.Sprintf("https://wiki.invalid/%s/%s", slug.Make(space), slug.Make(rec.Title)), nil
}
