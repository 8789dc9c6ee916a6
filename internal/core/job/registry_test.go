package job_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/perhapsishould/contract-processor/internal/core/job"
	"github.com/perhapsishould/contract-processor/internal/core/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	r := job.NewRegistry()

	j := r.Create("contract.pdf", "legal")
	assert.NotEmpty(t, j.ID)
	assert.Equal(t, job.StatusPending, j.Status)
	assert.Equal(t, "contract.pdf", j.SourceName)
	assert.Equal(t, "legal", j.PublishTarget)
	assert.False(t, j.CreatedAt.IsZero())
	assert.Nil(t, j.CompletedAt)

	got, err := r.Get(j.ID)
	require.NoError(t, err)
	assert.Equal(t, j, got)
}

func TestRegistry_GetUnknown(t *testing.T) {
	r := job.NewRegistry()

	_, err := r.Get("nope")
	assert.ErrorIs(t, err, job.ErrNotFound)
}

func TestRegistry_ListInsertionOrder(t *testing.T) {
	r := job.NewRegistry()

	var ids []string
	for i := 0; i < 5; i++ {
		j := r.Create(fmt.Sprintf("doc-%d.pdf", i), "")
		ids = append(ids, j.ID)
	}

	list := r.List()
	require.Len(t, list, 5)
	for i, j := range list {
		assert.Equal(t, ids[i], j.ID)
	}
	assert.Equal(t, 5, r.Len())
}

func TestRegistry_DistinctIDs(t *testing.T) {
	r := job.NewRegistry()

	a := r.Create("a.pdf", "")
	b := r.Create("a.pdf", "")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRegistry_UpdateUnknown(t *testing.T) {
	r := job.NewRegistry()

	_, err := r.Update("nope", func(j job.Job) job.Job { return j })
	assert.ErrorIs(t, err, job.ErrNotFound)
}

func TestRegistry_UpdateAtomicVisibility(t *testing.T) {
	r := job.NewRegistry()
	j := r.Create("contract.pdf", "")

	now := time.Now().UTC()
	rec := &record.ContractRecord{
		Title:   "MSA",
		Parties: []record.Party{{Name: "Acme"}},
		Summary: "test",
	}
	updated, err := r.Update(j.ID, func(j job.Job) job.Job {
		j.Status = job.StatusCompleted
		j.CompletedAt = &now
		j.Result = rec
		j.OutputLocation = "https://wiki.invalid/contracts/msa"
		return j
	})
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, updated.Status)

	// A completed record always carries its result and location together.
	got, err := r.Get(j.ID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.NotEmpty(t, got.OutputLocation)
	require.NotNil(t, got.CompletedAt)
}

func TestRegistry_UpdatePreservesIdentity(t *testing.T) {
	r := job.NewRegistry()
	j := r.Create("contract.pdf", "")

	got, err := r.Update(j.ID, func(u job.Job) job.Job {
		u.ID = "hijacked"
		u.CreatedAt = time.Time{}
		u.Status = job.StatusRunning
		return u
	})
	require.NoError(t, err)
	assert.Equal(t, j.ID, got.ID)
	assert.Equal(t, j.CreatedAt, got.CreatedAt)
	assert.Equal(t, job.StatusRunning, got.Status)
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := job.NewRegistry()

	const n = 50
	ids := make([]string, n)
	for i := range ids {
		ids[i] = r.Create(fmt.Sprintf("doc-%d.pdf", i), "").ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			r.Update(id, func(j job.Job) job.Job {
				j.Status = job.StatusRunning
				return j
			})
			now := time.Now().UTC()
			r.Update(id, func(j job.Job) job.Job {
				j.Status = job.StatusFailed
				j.CompletedAt = &now
				j.FailureReason = "boom"
				return j
			})
		}(id)
	}

	// Concurrent readers while writers run.
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = r.List()
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		got, err := r.Get(id)
		require.NoError(t, err)
		assert.Equal(t, job.StatusFailed, got.Status)
		assert.Equal(t, "boom", got.FailureReason)
	}
}
