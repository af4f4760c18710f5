package model

import "time"

// JobType identifies what a background job does.
type JobType string

const (
	// JobTypeScrapeAll syncs every scrape-eligible account.
	JobTypeScrapeAll JobType = "SCRAPE_ALL"
	// JobTypeScrapeSpecific syncs a single account.
	JobTypeScrapeSpecific JobType = "SCRAPE_SPECIFIC"
)

// JobStatus tracks a job through its lifecycle.
type JobStatus string

const (
	// JobStatusPending means the job is queued and waiting for the worker.
	JobStatusPending JobStatus = "pending"
	// JobStatusRunning means the worker is currently executing the job.
	JobStatusRunning JobStatus = "running"
	// JobStatusCompleted means the job finished without error.
	JobStatusCompleted JobStatus = "completed"
	// JobStatusFailed means the job raised an error during execution.
	JobStatusFailed JobStatus = "failed"
)

// Terminal reports whether the status is an end state.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is a unit of asynchronous work tracked through
// pending -> running -> completed/failed.
type Job struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	ID              string
	Type            JobType
	Status          JobStatus
	ErrorMessage    string
	TargetAccountID *int64 // set only for SCRAPE_SPECIFIC
}
