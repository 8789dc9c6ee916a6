package pipeline_test

import (
	"context"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/perhapsishould/contract-processor/internal/core/event"
	"github.com/perhapsishould/contract-processor/internal/core/extract"
	"github.com/perhapsishould/contract-processor/internal/core/job"
	"github.com/perhapsishould/contract-processor/internal/core/pipeline"
	"github.com/perhapsishould/contract-processor/internal/core/publish"
	"github.com/perhapsishould/contract-processor/internal/core/record"
	"github.com/perhapsishould/contract-processor/internal/core/spool"
	"github.com/perhapsishould/contract-processor/internal/core/structured"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pdfPayload = []byte("%PDF-1.7\nfake contract document")

type fakeTexts struct {
	text     string
	err      error
	calls    atomic.Int32
	failFor  string // when set, only inputs containing this substring fail
	validate func([]byte) bool
}

func (f *fakeTexts) Validate(data []byte) bool {
	if f.validate != nil {
		return f.validate(data)
	}
	return true
}

func (f *fakeTexts) Extract(_ context.Context, data []byte) (string, error) {
	f.calls.Add(1)
	if f.err != nil && (f.failFor == "" || contains(data, f.failFor)) {
		return "", f.err
	}
	if f.text != "" {
		return f.text, nil
	}
	return string(data), nil
}

func contains(data []byte, s string) bool {
	return s != "" && strings.Contains(string(data), s)
}

type fakeRecords struct {
	rec   record.ContractRecord
	err   error
	calls atomic.Int32
}

func (f *fakeRecords) Extract(_ context.Context, text string) (record.ContractRecord, error) {
	f.calls.Add(1)
	if f.err != nil {
		return record.ContractRecord{}, f.err
	}
	return f.rec, nil
}

type fakePublisher struct {
	locator string
	err     error
	calls   atomic.Int32
	targets []string
}

func (f *fakePublisher) Publish(_ context.Context, _ record.ContractRecord, target string) (string, error) {
	f.calls.Add(1)
	f.targets = append(f.targets, target)
	if f.err != nil {
		return "", f.err
	}
	return f.locator, nil
}

func goodRecord() record.ContractRecord {
	return record.ContractRecord{
		Title:   "MSA",
		Parties: []record.Party{{Name: "Acme"}},
		Summary: "test agreement",
	}
}

func newTestPipeline(t *testing.T, texts *fakeTexts, records *fakeRecords, pub *fakePublisher) (*pipeline.Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	sp, err := spool.New(dir)
	require.NoError(t, err)

	p := pipeline.New(job.NewRegistry(), sp, texts, records, pub, event.NewBus())
	return p, dir
}

func waitTerminal(t *testing.T, p *pipeline.Pipeline, id string) job.Job {
	t.Helper()
	var j job.Job
	require.Eventually(t, func() bool {
		got, err := p.Status(id)
		if err != nil {
			return false
		}
		j = got
		return j.Status.Terminal()
	}, 5*time.Second, 2*time.Millisecond, "job %s never reached a terminal state", id)
	return j
}

func spoolEmpty(dir string) func() bool {
	return func() bool {
		entries, err := os.ReadDir(dir)
		return err == nil && len(entries) == 0
	}
}

func TestSubmit_ReturnsImmediatelyValidID(t *testing.T) {
	texts := &fakeTexts{text: "contract text"}
	p, _ := newTestPipeline(t, texts, &fakeRecords{rec: goodRecord()}, &fakePublisher{locator: "https://wiki.example.com/p"})

	id, err := p.Submit(context.Background(), pdfPayload, "contract.pdf", "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// The record exists before Submit returns; status may be anywhere in
	// pending..completed depending on goroutine scheduling.
	j, err := p.Status(id)
	require.NoError(t, err)
	assert.Equal(t, "contract.pdf", j.SourceName)
}

func TestRun_SuccessPath(t *testing.T) {
	texts := &fakeTexts{text: "contract text"}
	records := &fakeRecords{rec: goodRecord()}
	pub := &fakePublisher{locator: "https://wiki.example.com/contracts/msa"}
	p, dir := newTestPipeline(t, texts, records, pub)

	id, err := p.Submit(context.Background(), pdfPayload, "contract.pdf", "")
	require.NoError(t, err)

	j := waitTerminal(t, p, id)
	assert.Equal(t, job.StatusCompleted, j.Status)
	assert.Equal(t, "https://wiki.example.com/contracts/msa", j.OutputLocation)
	require.NotNil(t, j.Result)
	assert.Equal(t, "MSA", j.Result.Title)
	require.NotNil(t, j.CompletedAt)
	assert.Empty(t, j.FailureReason)

	assert.Equal(t, int32(1), texts.calls.Load())
	assert.Equal(t, int32(1), records.calls.Load())
	assert.Equal(t, int32(1), pub.calls.Load())

	// Transient upload is released after the pipeline finishes.
	require.Eventually(t, spoolEmpty(dir), time.Second, 2*time.Millisecond)
}

func TestRun_InvalidSignature(t *testing.T) {
	texts := &fakeTexts{validate: func(data []byte) bool { return false }}
	records := &fakeRecords{rec: goodRecord()}
	pub := &fakePublisher{locator: "x"}
	p, dir := newTestPipeline(t, texts, records, pub)

	id, err := p.Submit(context.Background(), []byte("not a pdf"), "bogus.bin", "")
	require.NoError(t, err)

	j := waitTerminal(t, p, id)
	assert.Equal(t, job.StatusFailed, j.Status)
	assert.Equal(t, "invalid document", j.FailureReason)
	assert.Nil(t, j.Result)
	assert.Empty(t, j.OutputLocation)

	// No provider runs after a failed signature check.
	assert.Equal(t, int32(0), texts.calls.Load())
	assert.Equal(t, int32(0), records.calls.Load())
	assert.Equal(t, int32(0), pub.calls.Load())

	require.Eventually(t, spoolEmpty(dir), time.Second, 2*time.Millisecond)
}

func TestRun_PublishFailure(t *testing.T) {
	texts := &fakeTexts{text: "contract text"}
	records := &fakeRecords{rec: goodRecord()}
	pub := &fakePublisher{err: &publish.PublishingError{Message: "quota exceeded"}}
	p, dir := newTestPipeline(t, texts, records, pub)

	id, err := p.Submit(context.Background(), pdfPayload, "contract.pdf", "")
	require.NoError(t, err)

	j := waitTerminal(t, p, id)
	assert.Equal(t, job.StatusFailed, j.Status)
	assert.Equal(t, "quota exceeded", j.FailureReason)
	assert.Nil(t, j.Result)
	assert.Empty(t, j.OutputLocation)
	require.NotNil(t, j.CompletedAt)

	// Temp input is still released on failure.
	require.Eventually(t, spoolEmpty(dir), time.Second, 2*time.Millisecond)
}

func TestRun_StructuredFailure(t *testing.T) {
	texts := &fakeTexts{text: "contract text"}
	records := &fakeRecords{err: &structured.ExtractionError{Message: "model output failed schema validation"}}
	pub := &fakePublisher{locator: "x"}
	p, _ := newTestPipeline(t, texts, records, pub)

	id, err := p.Submit(context.Background(), pdfPayload, "contract.pdf", "")
	require.NoError(t, err)

	j := waitTerminal(t, p, id)
	assert.Equal(t, job.StatusFailed, j.Status)
	assert.Equal(t, "model output failed schema validation", j.FailureReason)
	assert.Equal(t, int32(0), pub.calls.Load())
}

func TestRun_PublishTargetPassthrough(t *testing.T) {
	texts := &fakeTexts{text: "contract text"}
	pub := &fakePublisher{locator: "x"}
	p, _ := newTestPipeline(t, texts, &fakeRecords{rec: goodRecord()}, pub)

	id, err := p.Submit(context.Background(), pdfPayload, "contract.pdf", "legal-space")
	require.NoError(t, err)

	waitTerminal(t, p, id)
	require.Len(t, pub.targets, 1)
	assert.Equal(t, "legal-space", pub.targets[0])
}

func TestRun_FaultIsolationAcrossJobs(t *testing.T) {
	// Text extraction fails only for payloads containing the marker; the
	// sibling job must be unaffected.
	texts := &fakeTexts{
		err:     &extract.ExtractionError{Message: "corrupt stream"},
		failFor: "POISON",
		text:    "contract text",
	}
	records := &fakeRecords{rec: goodRecord()}
	pub := &fakePublisher{locator: "https://wiki.example.com/ok"}
	p, _ := newTestPipeline(t, texts, records, pub)

	badID, err := p.Submit(context.Background(), []byte("%PDF-1.7 POISON"), "bad.pdf", "")
	require.NoError(t, err)
	goodID, err := p.Submit(context.Background(), pdfPayload, "good.pdf", "")
	require.NoError(t, err)

	assert.NotEqual(t, badID, goodID)

	bad := waitTerminal(t, p, badID)
	good := waitTerminal(t, p, goodID)

	assert.Equal(t, job.StatusFailed, bad.Status)
	assert.Equal(t, "corrupt stream", bad.FailureReason)
	assert.Equal(t, job.StatusCompleted, good.Status)
	assert.Equal(t, "https://wiki.example.com/ok", good.OutputLocation)
}

func TestRun_NoDedup(t *testing.T) {
	texts := &fakeTexts{text: "contract text"}
	p, _ := newTestPipeline(t, texts, &fakeRecords{rec: goodRecord()}, &fakePublisher{locator: "x"})

	a, err := p.Submit(context.Background(), pdfPayload, "same.pdf", "")
	require.NoError(t, err)
	b, err := p.Submit(context.Background(), pdfPayload, "same.pdf", "")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	waitTerminal(t, p, a)
	waitTerminal(t, p, b)
	assert.Len(t, p.List(), 2)
	assert.Equal(t, 2, p.Count())
}

func TestList_InsertionOrder(t *testing.T) {
	texts := &fakeTexts{text: "contract text"}
	p, _ := newTestPipeline(t, texts, &fakeRecords{rec: goodRecord()}, &fakePublisher{locator: "x"})

	first, err := p.Submit(context.Background(), pdfPayload, "first.pdf", "")
	require.NoError(t, err)
	second, err := p.Submit(context.Background(), pdfPayload, "second.pdf", "")
	require.NoError(t, err)

	list := p.List()
	require.Len(t, list, 2)
	assert.Equal(t, first, list[0].ID)
	assert.Equal(t, second, list[1].ID)
}

func TestStatus_Unknown(t *testing.T) {
	texts := &fakeTexts{}
	p, _ := newTestPipeline(t, texts, &fakeRecords{}, &fakePublisher{})

	_, err := p.Status("no-such-job")
	assert.ErrorIs(t, err, job.ErrNotFound)
}

func TestRun_ResultExclusivity(t *testing.T) {
	// Completed jobs carry result+location and no failure reason; failed
	// jobs the inverse. Run both paths and check shapes.
	texts := &fakeTexts{text: "contract text"}
	okPub := &fakePublisher{locator: "https://wiki.example.com/p"}
	p, _ := newTestPipeline(t, texts, &fakeRecords{rec: goodRecord()}, okPub)

	okID, err := p.Submit(context.Background(), pdfPayload, "ok.pdf", "")
	require.NoError(t, err)
	ok := waitTerminal(t, p, okID)
	assert.NotNil(t, ok.Result)
	assert.NotEmpty(t, ok.OutputLocation)
	assert.Empty(t, ok.FailureReason)

	badTexts := &fakeTexts{err: &extract.ExtractionError{Message: "boom"}}
	p2, _ := newTestPipeline(t, badTexts, &fakeRecords{rec: goodRecord()}, okPub)
	badID, err := p2.Submit(context.Background(), pdfPayload, "bad.pdf", "")
	require.NoError(t, err)
	bad := waitTerminal(t, p2, badID)
	assert.Nil(t, bad.Result)
	assert.Empty(t, bad.OutputLocation)
	assert.NotEmpty(t, bad.FailureReason)
}
