package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"videogenhost/internal/domain"
)

// Registry is the process-wide source of truth for job state. Exactly one
// writer exists per job (its orchestrator goroutine); status polling and the
// home page read concurrently. No lock is ever held across I/O.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]domain.Job)}
}

// Create initializes a pending entry for a freshly issued job id.
func (r *Registry) Create(id string) {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[id] = domain.Job{ID: id, Status: domain.JobStatusPending, CreatedAt: now, UpdatedAt: now}
}

// Get returns a snapshot of the job, if known.
func (r *Registry) Get(id string) (domain.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return job, ok
}

// MarkRunning records that the backend has started executing the job. It is a
// no-op once the job is terminal.
func (r *Registry) MarkRunning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}
	job.Status = domain.JobStatusRunning
	job.UpdatedAt = time.Now()
	r.jobs[id] = job
}

// SetTerminal records the final state of a job. Calling it twice for the same
// id, or with a non-terminal status, is a programming error and is rejected so
// a terminal state can never be overwritten.
func (r *Registry) SetTerminal(id string, status domain.JobStatus, resultFile string) error {
	if !status.Terminal() {
		return fmt.Errorf("jobs: %q is not a terminal status", status)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("jobs: unknown job %q: %w", id, domain.ErrNotFound)
	}
	if job.Status.Terminal() {
		return fmt.Errorf("jobs: job %q already terminal (%s)", id, job.Status)
	}
	job.Status = status
	job.ResultFile = resultFile
	job.UpdatedAt = time.Now()
	r.jobs[id] = job
	return nil
}

// List returns a snapshot of all jobs, newest first.
func (r *Registry) List() []domain.Job {
	r.mu.RLock()
	out := make([]domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Len reports the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
