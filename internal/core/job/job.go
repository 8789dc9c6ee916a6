package job

import (
	"time"

	"github.com/perhapsishould/contract-processor/internal/core/record"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether a job in this status will never change again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one tracked unit of pipeline work. A job is written only by the
// pipeline goroutine that owns it; once terminal it is read-only.
type Job struct {
	ID             string
	SourceName     string
	Status         Status
	CreatedAt      time.Time
	CompletedAt    *time.Time
	Result         *record.ContractRecord
	OutputLocation string
	FailureReason  string
	PublishTarget  string
}
