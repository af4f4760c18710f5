package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/testutil"
)

func TestSchedulerDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)

	scheduler := NewScheduler(db.Storage, "")
	assert.Equal(t, DefaultCronExpression, scheduler.CronExpression())
}

func TestSchedulerTriggerNow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	scheduler := NewScheduler(db.Storage, "0 3 * * *")

	job, err := scheduler.TriggerNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.JobTypeScrapeAll, job.Type)
	assert.Equal(t, model.JobStatusPending, job.Status)
	assert.Nil(t, job.TargetAccountID)

	stored, err := db.Storage.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, stored.ID)
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)

	scheduler := NewScheduler(db.Storage, "0 3 * * *")

	require.NoError(t, scheduler.Start())
	require.NoError(t, scheduler.Start())
	assert.True(t, scheduler.Running())

	scheduler.Stop()
	scheduler.Stop()
	assert.False(t, scheduler.Running())
}

func TestSchedulerRejectsBadExpression(t *testing.T) {
	db := testutil.SetupTestDB(t)

	scheduler := NewScheduler(db.Storage, "not a cron line")
	assert.Error(t, scheduler.Start())
}
