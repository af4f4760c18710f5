// Package jobs contains the background job worker and its scheduler. The
// worker is a single-flight poller: at most one job executes at any time, and
// jobs are consumed oldest-first.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/service"
)

// DefaultPollInterval is how often the worker checks for pending jobs.
const DefaultPollInterval = 5 * time.Second

// unknownErrorMessage is recorded when a job fails without a message.
const unknownErrorMessage = "Unknown error"

// JobStore is the slice of the persistence layer the worker needs.
type JobStore interface {
	GetNextPendingJob(ctx context.Context) (*model.Job, error)
	HasRunningJob(ctx context.Context) (bool, error)
	UpdateJobStatus(ctx context.Context, id string, status model.JobStatus, errorMessage string) (*model.Job, error)
}

// Worker polls the job store and hands pending jobs to the executor, one at
// a time. It is the sole mutator of job status.
type Worker struct {
	store    JobStore
	executor service.JobExecutor
	cancel   context.CancelFunc
	done     chan struct{}
	interval time.Duration
	mu       sync.Mutex
}

// NewWorker creates a worker. A non-positive interval falls back to
// DefaultPollInterval.
func NewWorker(store JobStore, executor service.JobExecutor, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Worker{
		store:    store,
		executor: executor,
		interval: interval,
	}
}

// Start launches the polling loop. Calling Start on a running worker is a
// no-op.
func (w *Worker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(ctx)

	slog.Info("worker started", "poll_interval", w.interval)
}

// Stop halts the polling loop and waits for an in-flight tick to finish.
// Calling Stop on a stopped worker is a no-op.
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancel == nil {
		return
	}

	w.cancel()
	<-w.done
	w.cancel = nil
	w.done = nil

	slog.Info("worker stopped")
}

// Running reports whether the polling loop is active.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Each tick runs to completion before the next is considered;
			// a long scrape simply delays subsequent ticks.
			if err := w.processNext(ctx); err != nil {
				slog.Error("error processing job", "error", err)
			}
		}
	}
}

// processNext runs one polling tick: skip if a job is mid-flight, otherwise
// claim the oldest pending job and execute it to a terminal state.
func (w *Worker) processNext(ctx context.Context) error {
	running, err := w.store.HasRunningJob(ctx)
	if err != nil {
		return err
	}
	if running {
		return nil
	}

	job, err := w.store.GetNextPendingJob(ctx)
	if err != nil {
		return err
	}
	if job == nil {
		return nil
	}

	if _, err := w.store.UpdateJobStatus(ctx, job.ID, model.JobStatusRunning, ""); err != nil {
		return err
	}

	slog.Info("executing job", "id", job.ID, "type", job.Type)
	start := time.Now()

	// The terminal status write must land even when the job was aborted by
	// shutdown; a job stranded in "running" blocks every future tick.
	writeCtx := context.WithoutCancel(ctx)

	if execErr := w.executor.Execute(ctx, job); execErr != nil {
		message := execErr.Error()
		if message == "" {
			message = unknownErrorMessage
		}
		slog.Warn("job failed",
			"id", job.ID,
			"type", job.Type,
			"duration", time.Since(start),
			"error", message)
		_, err = w.store.UpdateJobStatus(writeCtx, job.ID, model.JobStatusFailed, message)
		return err
	}

	slog.Info("job completed", "id", job.ID, "type", job.Type, "duration", time.Since(start))
	_, err = w.store.UpdateJobStatus(writeCtx, job.ID, model.JobStatusCompleted, "")
	return err
}
