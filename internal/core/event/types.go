package event

import "time"

type EventType string

const (
	EventJobCreated   EventType = "job.created"
	EventJobStarted   EventType = "job.started"
	EventJobCompleted EventType = "job.completed"
	EventJobFailed    EventType = "job.failed"
)

// JobEvent is a job lifecycle notification. Location is set on completion,
// Error on failure.
type JobEvent struct {
	Type       EventType
	Timestamp  time.Time
	JobID      string
	SourceName string
	Location   string
	Error      string
}
