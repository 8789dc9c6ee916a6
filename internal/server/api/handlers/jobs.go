package handlers

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/perhapsishould/contract-processor/internal/core/extract"
	"github.com/perhapsishould/contract-processor/internal/core/job"
	"github.com/perhapsishould/contract-processor/internal/core/pipeline"
	"github.com/perhapsishould/contract-processor/internal/core/record"
)

type JobsHandler struct {
	pipe    *pipeline.Pipeline
	maxSize int64
	baseURL string
}

func NewJobsHandler(pipe *pipeline.Pipeline, maxSize int64, baseURL string) *JobsHandler {
	return &JobsHandler{
		pipe:    pipe,
		maxSize: maxSize,
		baseURL: baseURL,
	}
}

// Shared types

type SubmitJobInput struct {
	RawBody multipart.Form
}

type SubmitJobBody struct {
	ID        string `json:"id" doc:"Job ID"`
	StatusURL string `json:"statusUrl" doc:"URL to poll for job status"`
}

type SubmitJobOutput struct {
	Body SubmitJobBody
}

type JobIDInput struct {
	ID string `path:"id" doc:"Job ID"`
}

type JobStatusBody struct {
	ID             string                 `json:"id" doc:"Job ID"`
	SourceName     string                 `json:"sourceName" doc:"Original upload filename"`
	Status         string                 `json:"status" doc:"Job status (pending, running, completed, failed)"`
	CreatedAt      time.Time              `json:"createdAt" doc:"Submission time"`
	CompletedAt    *time.Time             `json:"completedAt,omitempty" doc:"Terminal transition time"`
	OutputLocation string                 `json:"outputLocation,omitempty" doc:"Published page URL (completed only)"`
	Result         *record.ContractRecord `json:"result,omitempty" doc:"Extracted contract record (completed only)"`
	FailureReason  string                 `json:"failureReason,omitempty" doc:"Failure cause (failed only)"`
}

func newJobStatusBody(j job.Job) JobStatusBody {
	body := JobStatusBody{
		ID:          j.ID,
		SourceName:  j.SourceName,
		Status:      string(j.Status),
		CreatedAt:   j.CreatedAt,
		CompletedAt: j.CompletedAt,
	}
	switch j.Status {
	case job.StatusCompleted:
		body.OutputLocation = j.OutputLocation
		body.Result = j.Result
	case job.StatusFailed:
		body.FailureReason = j.FailureReason
	}
	return body
}

type JobStatusOutput struct {
	Body JobStatusBody
}

type JobSummaryBody struct {
	ID          string     `json:"id"`
	SourceName  string     `json:"sourceName"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type ListJobsBody struct {
	Total int              `json:"total" doc:"Number of jobs"`
	Jobs  []JobSummaryBody `json:"jobs" doc:"Jobs in submission order"`
}

type ListJobsOutput struct {
	Body ListJobsBody
}

// Handlers

func (h *JobsHandler) Submit(ctx context.Context, input *SubmitJobInput) (*SubmitJobOutput, error) {
	files := input.RawBody.File["document"]
	if len(files) == 0 {
		return nil, huma.Error400BadRequest("document file is required")
	}
	fh := files[0]

	if h.maxSize > 0 && fh.Size > h.maxSize {
		return nil, huma.Error400BadRequest(fmt.Sprintf("document exceeds maximum size of %d bytes", h.maxSize))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, huma.Error400BadRequest("document is unreadable")
	}
	defer func() { _ = f.Close() }()

	payload, err := io.ReadAll(f)
	if err != nil {
		return nil, huma.Error400BadRequest("document is unreadable")
	}
	if len(payload) == 0 {
		return nil, huma.Error400BadRequest("document is empty")
	}
	if !extract.IsPDF(payload) {
		return nil, huma.Error400BadRequest("unsupported document type: expected PDF")
	}

	var publishTarget string
	if vals := input.RawBody.Value["publishTarget"]; len(vals) > 0 {
		publishTarget = vals[0]
	}

	id, err := h.pipe.Submit(ctx, payload, fh.Filename, publishTarget)
	if err != nil {
		return nil, huma.Error500InternalServerError(err.Error())
	}

	return &SubmitJobOutput{Body: SubmitJobBody{
		ID:        id,
		StatusURL: fmt.Sprintf("%s/jobs/%s/status", h.baseURL, id),
	}}, nil
}

func (h *JobsHandler) Status(ctx context.Context, input *JobIDInput) (*JobStatusOutput, error) {
	j, err := h.pipe.Status(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("job not found")
	}

	return &JobStatusOutput{Body: newJobStatusBody(j)}, nil
}

func (h *JobsHandler) List(ctx context.Context, input *struct{}) (*ListJobsOutput, error) {
	jobs := h.pipe.List()

	summaries := make([]JobSummaryBody, 0, len(jobs))
	for _, j := range jobs {
		summaries = append(summaries, JobSummaryBody{
			ID:          j.ID,
			SourceName:  j.SourceName,
			Status:      string(j.Status),
			CreatedAt:   j.CreatedAt,
			CompletedAt: j.CompletedAt,
		})
	}

	return &ListJobsOutput{Body: ListJobsBody{
		Total: len(summaries),
		Jobs:  summaries,
	}}, nil
}
