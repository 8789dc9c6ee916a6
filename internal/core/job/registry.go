package job

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("job not found")

// Registry is the in-memory source of truth for job records. Records live
// for the lifetime of the process and are never evicted. Each record is
// replaced wholesale on update so a concurrent reader sees either the old
// or the new record, never a mix.
type Registry struct {
	mu    sync.RWMutex
	jobs  map[string]*Job
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		jobs: make(map[string]*Job),
	}
}

// Create registers a new pending job and returns a snapshot of it.
func (r *Registry) Create(sourceName, publishTarget string) Job {
	j := &Job{
		ID:            uuid.NewString(),
		SourceName:    sourceName,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
		PublishTarget: publishTarget,
	}

	r.mu.Lock()
	r.jobs[j.ID] = j
	r.order = append(r.order, j.ID)
	r.mu.Unlock()

	return *j
}

// Get returns a snapshot of the job with the given id.
func (r *Registry) Get(id string) (Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return *j, nil
}

// List returns snapshots of all jobs in insertion order.
func (r *Registry) List() []Job {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Job, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.jobs[id])
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Update applies mutate to a copy of the record and swaps the copy in under
// the write lock. Readers observe the record before or after the mutation,
// never partway through.
func (r *Registry) Update(id string, mutate func(Job) Job) (Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.jobs[id]
	if !ok {
		return Job{}, ErrNotFound
	}

	next := mutate(*cur)
	next.ID = cur.ID
	next.CreatedAt = cur.CreatedAt
	r.jobs[id] = &next

	return next, nil
}
