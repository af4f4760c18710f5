package jobs

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/nisioka/self-money/internal/model"
)

// DefaultCronExpression triggers a full sync daily at 03:00.
const DefaultCronExpression = "0 3 * * *"

// SchedulerStore is the slice of the persistence layer the scheduler needs.
type SchedulerStore interface {
	CreateJob(ctx context.Context, jobType model.JobType, targetAccountID *int64) (*model.Job, error)
}

// Scheduler creates SCRAPE_ALL jobs on a cron schedule. It holds no polling
// loop of its own; consuming jobs is entirely the worker's business.
type Scheduler struct {
	store SchedulerStore
	cron  *cron.Cron
	expr  string
	mu    sync.Mutex
}

// NewScheduler creates a scheduler. An empty expression falls back to
// DefaultCronExpression; the expression is validated on Start.
func NewScheduler(store SchedulerStore, expr string) *Scheduler {
	if expr == "" {
		expr = DefaultCronExpression
	}
	return &Scheduler{
		store: store,
		expr:  expr,
	}
}

// Start begins firing on the schedule. Calling Start on a started scheduler
// is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.expr, func() {
		if _, err := s.TriggerNow(context.Background()); err != nil {
			slog.Error("scheduled job creation failed", "error", err)
		}
	}); err != nil {
		return err
	}

	c.Start()
	s.cron = c

	slog.Info("scheduler started", "cron", s.expr)
	return nil
}

// Stop halts the schedule. Calling Stop on a stopped scheduler is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return
	}

	<-s.cron.Stop().Done()
	s.cron = nil

	slog.Info("scheduler stopped")
}

// Running reports whether the schedule is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// TriggerNow creates a SCRAPE_ALL job immediately and returns it. It is used
// both by the schedule firing and by manual sync triggers.
func (s *Scheduler) TriggerNow(ctx context.Context) (*model.Job, error) {
	job, err := s.store.CreateJob(ctx, model.JobTypeScrapeAll, nil)
	if err != nil {
		return nil, err
	}
	slog.Info("triggered full sync job", "id", job.ID)
	return job, nil
}

// CronExpression returns the configured schedule.
func (s *Scheduler) CronExpression() string {
	return s.expr
}
