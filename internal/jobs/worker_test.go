package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/testutil"
)

// stubExecutor records executed jobs and fails the ones listed in failWith.
type stubExecutor struct {
	failWith map[string]error
	executed []string
	mu       sync.Mutex
}

func (e *stubExecutor) Execute(_ context.Context, job *model.Job) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.executed = append(e.executed, job.ID)
	if err, ok := e.failWith[job.ID]; ok {
		return err
	}
	return nil
}

func (e *stubExecutor) executedJobs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.executed...)
}

func TestProcessNextFIFO(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	var ids []string
	for range 3 {
		job, err := db.Storage.CreateJob(ctx, model.JobTypeScrapeAll, nil)
		require.NoError(t, err)
		ids = append(ids, job.ID)
		time.Sleep(2 * time.Millisecond)
	}

	executor := &stubExecutor{}
	worker := NewWorker(db.Storage, executor, time.Hour)

	for range 3 {
		require.NoError(t, worker.processNext(ctx))
	}

	assert.Equal(t, ids, executor.executedJobs(), "oldest job first")

	for _, id := range ids {
		job, err := db.Storage.GetJob(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, model.JobStatusCompleted, job.Status)
	}
}

func TestProcessNextEmptyQueue(t *testing.T) {
	db := testutil.SetupTestDB(t)

	executor := &stubExecutor{}
	worker := NewWorker(db.Storage, executor, time.Hour)

	require.NoError(t, worker.processNext(context.Background()))
	assert.Empty(t, executor.executedJobs())
}

func TestProcessNextSkipsWhileRunning(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	running, err := db.Storage.CreateJob(ctx, model.JobTypeScrapeAll, nil)
	require.NoError(t, err)
	_, err = db.Storage.UpdateJobStatus(ctx, running.ID, model.JobStatusRunning, "")
	require.NoError(t, err)

	pending, err := db.Storage.CreateJob(ctx, model.JobTypeScrapeAll, nil)
	require.NoError(t, err)

	executor := &stubExecutor{}
	worker := NewWorker(db.Storage, executor, time.Hour)

	require.NoError(t, worker.processNext(ctx))
	assert.Empty(t, executor.executedJobs(), "nothing starts while a job is running")

	job, err := db.Storage.GetJob(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, job.Status)
}

func TestProcessNextRecordsFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	job, err := db.Storage.CreateJob(ctx, model.JobTypeScrapeAll, nil)
	require.NoError(t, err)

	executor := &stubExecutor{failWith: map[string]error{
		job.ID: errors.New("login rejected"),
	}}
	worker := NewWorker(db.Storage, executor, time.Hour)

	require.NoError(t, worker.processNext(ctx))

	failed, err := db.Storage.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, failed.Status)
	assert.Equal(t, "login rejected", failed.ErrorMessage)
}

func TestProcessNextEmptyErrorMessage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	job, err := db.Storage.CreateJob(ctx, model.JobTypeScrapeAll, nil)
	require.NoError(t, err)

	executor := &stubExecutor{failWith: map[string]error{
		job.ID: errors.New(""),
	}}
	worker := NewWorker(db.Storage, executor, time.Hour)

	require.NoError(t, worker.processNext(ctx))

	failed, err := db.Storage.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, failed.Status)
	assert.Equal(t, "Unknown error", failed.ErrorMessage)
}

func TestWorkerStartStopIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)

	worker := NewWorker(db.Storage, &stubExecutor{}, 10*time.Millisecond)
	ctx := context.Background()

	worker.Start(ctx)
	worker.Start(ctx)
	assert.True(t, worker.Running())

	worker.Stop()
	worker.Stop()
	assert.False(t, worker.Running())
}

// blockingExecutor blocks until its context is canceled, like a scrape
// interrupted by shutdown.
type blockingExecutor struct {
	started chan struct{}
}

func (e *blockingExecutor) Execute(ctx context.Context, _ *model.Job) error {
	close(e.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestWorkerStopDuringExecutionRecordsFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	job, err := db.Storage.CreateJob(ctx, model.JobTypeScrapeAll, nil)
	require.NoError(t, err)

	executor := &blockingExecutor{started: make(chan struct{})}
	worker := NewWorker(db.Storage, executor, 5*time.Millisecond)
	worker.Start(ctx)

	select {
	case <-executor.started:
	case <-time.After(2 * time.Second):
		t.Fatal("job never started executing")
	}

	worker.Stop()

	failed, err := db.Storage.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, failed.Status, "interrupted job must not stay running")
	assert.Equal(t, context.Canceled.Error(), failed.ErrorMessage)

	running, err := db.Storage.HasRunningJob(ctx)
	require.NoError(t, err)
	assert.False(t, running, "queue must not be blocked after shutdown")
}

func TestWorkerExecutesThroughPolling(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	job, err := db.Storage.CreateJob(ctx, model.JobTypeScrapeAll, nil)
	require.NoError(t, err)

	executor := &stubExecutor{}
	worker := NewWorker(db.Storage, executor, 5*time.Millisecond)
	worker.Start(ctx)
	defer worker.Stop()

	require.Eventually(t, func() bool {
		reloaded, getErr := db.Storage.GetJob(ctx, job.ID)
		return getErr == nil && reloaded.Status == model.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{job.ID}, executor.executedJobs())
}
