// Package pipeline orchestrates the contract processing stages and owns each
// job's lifecycle: pending -> running -> completed | failed.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/perhapsishould/contract-processor/internal/core/event"
	"github.com/perhapsishould/contract-processor/internal/core/extract"
	"github.com/perhapsishould/contract-processor/internal/core/job"
	"github.com/perhapsishould/contract-processor/internal/core/publish"
	"github.com/perhapsishould/contract-processor/internal/core/spool"
	"github.com/perhapsishould/contract-processor/internal/core/structured"
	"github.com/rs/zerolog/log"
)

// Pipeline composes the three providers in fixed order and records per-stage
// outcomes in the job registry. Each submission runs in its own goroutine;
// that goroutine is the only writer for its job.
type Pipeline struct {
	registry  *job.Registry
	spool     *spool.Spool
	texts     extract.TextExtractor
	records   structured.Extractor
	publisher publish.Publisher
	bus       event.Bus
}

func New(
	registry *job.Registry,
	sp *spool.Spool,
	texts extract.TextExtractor,
	records structured.Extractor,
	publisher publish.Publisher,
	bus event.Bus,
) *Pipeline {
	return &Pipeline{
		registry:  registry,
		spool:     sp,
		texts:     texts,
		records:   records,
		publisher: publisher,
		bus:       bus,
	}
}

// Submit registers a new job and launches its background run. It returns the
// job id without waiting for any stage; the record is queryable in pending
// state before this call returns.
func (p *Pipeline) Submit(ctx context.Context, payload []byte, sourceName, publishTarget string) (string, error) {
	path, err := p.spool.Store(payload, sourceName)
	if err != nil {
		return "", fmt.Errorf("spool upload: %w", err)
	}

	j := p.registry.Create(sourceName, publishTarget)

	p.bus.Publish(ctx, event.JobEvent{Type: event.EventJobCreated, JobID: j.ID, SourceName: sourceName})

	go p.run(j.ID, path)

	return j.ID, nil
}

// Status returns a snapshot of one job.
func (p *Pipeline) Status(id string) (job.Job, error) {
	return p.registry.Get(id)
}

// List returns snapshots of all jobs in submission order.
func (p *Pipeline) List() []job.Job {
	return p.registry.List()
}

// Count returns the number of tracked jobs.
func (p *Pipeline) Count() int {
	return p.registry.Len()
}

func (p *Pipeline) run(id, path string) {
	// The submitting request has already returned; this run answers to
	// nobody and is never cancelled.
	ctx := context.Background()

	defer func() {
		if err := p.spool.Release(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Str("job_id", id).Str("path", path).Err(err).Msg("spool release failed")
		}
	}()

	j, err := p.registry.Update(id, func(j job.Job) job.Job {
		j.Status = job.StatusRunning
		return j
	})
	if err != nil {
		log.Error().Str("job_id", id).Err(err).Msg("job vanished before start")
		return
	}

	p.bus.Publish(ctx, event.JobEvent{Type: event.EventJobStarted, JobID: id, SourceName: j.SourceName})

	payload, err := os.ReadFile(path)
	if err != nil {
		p.fail(ctx, id, "upload artifact unreadable")
		return
	}

	// Stage 1: signature check, synchronous, no provider involved.
	if !p.texts.Validate(payload) {
		p.fail(ctx, id, "invalid document")
		return
	}

	// Stage 2: document bytes -> text.
	text, err := p.texts.Extract(ctx, payload)
	if err != nil {
		p.fail(ctx, id, err.Error())
		return
	}
	log.Debug().Str("job_id", id).Int("text_len", len(text)).Msg("text extracted")

	// Stage 3: text -> structured record.
	rec, err := p.records.Extract(ctx, text)
	if err != nil {
		p.fail(ctx, id, err.Error())
		return
	}

	// Stage 4: record -> published page.
	location, err := p.publisher.Publish(ctx, rec, j.PublishTarget)
	if err != nil {
		p.fail(ctx, id, err.Error())
		return
	}

	now := time.Now().UTC()
	if _, err := p.registry.Update(id, func(j job.Job) job.Job {
		j.Status = job.StatusCompleted
		j.CompletedAt = &now
		j.Result = &rec
		j.OutputLocation = location
		return j
	}); err != nil {
		log.Error().Str("job_id", id).Err(err).Msg("failed to record job completion")
		return
	}

	p.bus.Publish(ctx, event.JobEvent{Type: event.EventJobCompleted, JobID: id, SourceName: j.SourceName, Location: location})
}

func (p *Pipeline) fail(ctx context.Context, id, reason string) {
	now := time.Now().UTC()
	j, err := p.registry.Update(id, func(j job.Job) job.Job {
		j.Status = job.StatusFailed
		j.CompletedAt = &now
		j.FailureReason = reason
		return j
	})
	if err != nil {
		log.Error().Str("job_id", id).Err(err).Msg("failed to record job failure")
		return
	}

	p.bus.Publish(ctx, event.JobEvent{Type: event.EventJobFailed, JobID: id, SourceName: j.SourceName, Error: reason})
}
