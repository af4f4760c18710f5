package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nisioka/self-money/internal/common"
	"github.com/nisioka/self-money/internal/model"
)

const jobColumns = `id, type, status, target_account_id, error_message, created_at, updated_at`

// CreateJob inserts a new job in pending state and returns it.
func (s *SQLiteStorage) CreateJob(ctx context.Context, jobType model.JobType, targetAccountID *int64) (*model.Job, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if jobType != model.JobTypeScrapeAll && jobType != model.JobTypeScrapeSpecific {
		return nil, fmt.Errorf("unknown job type: %s", jobType)
	}

	job := &model.Job{
		ID:              uuid.NewString(),
		Type:            jobType,
		Status:          model.JobStatusPending,
		TargetAccountID: targetAccountID,
		CreatedAt:       time.Now().UTC(),
	}
	job.UpdatedAt = job.CreatedAt

	query := `
		INSERT INTO jobs (id, type, status, target_account_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	var target any
	if targetAccountID != nil {
		target = *targetAccountID
	}

	if _, err := s.db.ExecContext(ctx, query,
		job.ID, job.Type, job.Status, target, job.CreatedAt, job.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	slog.Debug("created job", "id", job.ID, "type", job.Type)
	return job, nil
}

// GetJob returns a job by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetJob(ctx context.Context, id string) (*model.Job, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("job %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job: %w", err)
	}
	return job, nil
}

// GetNextPendingJob returns the oldest pending job, or nil when the queue is
// empty. Running, completed, and failed jobs are never returned.
func (s *SQLiteStorage) GetNextPendingJob(ctx context.Context) (*model.Job, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT 1`

	job, err := scanJob(s.db.QueryRowContext(ctx, query, model.JobStatusPending))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query next pending job: %w", err)
	}
	return job, nil
}

// HasRunningJob reports whether any job is currently in running state.
func (s *SQLiteStorage) HasRunningJob(ctx context.Context) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM jobs WHERE status = ?)`
	if err := s.db.QueryRowContext(ctx, query, model.JobStatusRunning).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check running jobs: %w", err)
	}
	return exists, nil
}

// UpdateJobStatus transitions a job to the given status. It fails with
// common.ErrNotFound when the id does not exist.
func (s *SQLiteStorage) UpdateJobStatus(ctx context.Context, id string, status model.JobStatus, errorMessage string) (*model.Job, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if err := validateJobStatus(status); err != nil {
		return nil, err
	}

	query := `
		UPDATE jobs
		SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ?`

	var msg any
	if errorMessage != "" {
		msg = errorMessage
	}

	result, err := s.db.ExecContext(ctx, query, status, msg, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("job %s: %w", id, common.ErrNotFound)
	}

	return s.GetJob(ctx, id)
}

// GetRecentJobs returns up to limit jobs, newest first.
func (s *SQLiteStorage) GetRecentJobs(ctx context.Context, limit int) ([]model.Job, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		ORDER BY created_at DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating jobs: %w", err)
	}
	return jobs, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var job model.Job
	var target sql.NullInt64
	var errMsg sql.NullString

	if err := row.Scan(&job.ID, &job.Type, &job.Status, &target, &errMsg,
		&job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}

	if target.Valid {
		job.TargetAccountID = &target.Int64
	}
	if errMsg.Valid {
		job.ErrorMessage = errMsg.String
	}
	return &job, nil
}
