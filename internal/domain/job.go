package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending  JobStatus = "pending"
	JobStatusRunning  JobStatus = "running"
	JobStatusComplete JobStatus = "complete"
	JobStatusError    JobStatus = "error"
)

// Terminal reports whether the status can never change again.
func (s JobStatus) Terminal() bool {
	return s == JobStatusComplete || s == JobStatusError
}

// Job encapsulates the lifecycle of one video generation request.
// ResultFile is set exactly once, on the transition to complete.
type Job struct {
	ID         string
	Status     JobStatus
	ResultFile string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
