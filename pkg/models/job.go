package models

import (
	"time"

	"github.com/google/uuid"
)

// JobKind identifies which pipeline a job runs.
type JobKind string

const (
	JobKindUpload JobKind = "upload"
	JobKindEdit   JobKind = "edit"
	JobKindDelete JobKind = "delete"
)

// JobStatus is the lifecycle state of a tracked job.
type JobStatus string

const (
	JobStatusPreparing   JobStatus = "preparing"
	JobStatusUploading   JobStatus = "uploading"
	JobStatusDatabase    JobStatus = "database"
	JobStatusDeleting    JobStatus = "deleting"
	JobStatusCompleted   JobStatus = "completed"
	JobStatusError       JobStatus = "error"
	JobStatusCancelled   JobStatus = "cancelled"
	JobStatusInterrupted JobStatus = "interrupted"
)

// IsActive reports whether a job in this status is still being driven by a runner.
func (s JobStatus) IsActive() bool {
	switch s {
	case JobStatusPreparing, JobStatusUploading, JobStatusDatabase, JobStatusDeleting:
		return true
	}
	return false
}

// IsTerminal reports whether the status is absorbing.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusError, JobStatusCancelled, JobStatusInterrupted:
		return true
	}
	return false
}

// rank orders the active states along the pipeline. Terminal states share the top rank.
func (s JobStatus) rank() int {
	switch s {
	case JobStatusPreparing:
		return 0
	case JobStatusUploading:
		return 1
	case JobStatusDatabase, JobStatusDeleting:
		return 2
	}
	return 3
}

// CanTransition reports whether moving from s to next keeps the state machine monotonic.
func (s JobStatus) CanTransition(next JobStatus) bool {
	if s.IsTerminal() {
		return false
	}
	if next == JobStatusInterrupted {
		return false
	}
	return next.rank() >= s.rank()
}

// JobRecord tracks one upload, edit or delete operation. The full list of records is
// persisted as a JSON array and reloaded on startup.
type JobRecord struct {
	ID        uuid.UUID  `json:"id"`
	Kind      JobKind    `json:"kind"`
	Title     string     `json:"title"`
	FileName  string     `json:"fileName"`
	Status    JobStatus  `json:"status"`
	Progress  int        `json:"progress"`
	Error     *string    `json:"error,omitempty"`
	StartTime time.Time  `json:"startTime"`
	// EndTime is set when the record enters a terminal state.
	EndTime   *time.Time `json:"endTime,omitempty"`
}

// FinishedBefore reports whether a terminal record ended before cutoff. Records saved
// without an end time fall back to their start time.
func (r JobRecord) FinishedBefore(cutoff time.Time) bool {
	if !r.Status.IsTerminal() {
		return false
	}
	if r.EndTime != nil {
		return r.EndTime.Before(cutoff)
	}
	return r.StartTime.Before(cutoff)
}
