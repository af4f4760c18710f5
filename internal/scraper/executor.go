package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nisioka/self-money/internal/model"
)

// Executor runs scrape jobs against the orchestrator. It is the job worker's
// executor: SCRAPE_ALL fans out over every credentialed account, while
// SCRAPE_SPECIFIC targets one.
type Executor struct {
	service *Service
	logger  *slog.Logger
}

// NewExecutor creates a job executor backed by the scrape orchestrator.
func NewExecutor(service *Service, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		service: service,
		logger:  logger,
	}
}

// Execute dispatches one job by type.
func (e *Executor) Execute(ctx context.Context, job *model.Job) error {
	switch job.Type {
	case model.JobTypeScrapeAll:
		return e.executeScrapeAll(ctx, job)
	case model.JobTypeScrapeSpecific:
		if job.TargetAccountID == nil {
			return fmt.Errorf("job %s has no target account", job.ID)
		}
		return e.executeScrapeSpecific(ctx, job, *job.TargetAccountID)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// executeScrapeAll succeeds as long as at least one attempted account
// succeeds, or when no account was eligible at all. It fails only when every
// attempted account failed.
func (e *Executor) executeScrapeAll(ctx context.Context, job *model.Job) error {
	summaries, accountErrs, err := e.service.ScrapeAllAccounts(ctx)
	if err != nil {
		return err
	}

	added, skipped := 0, 0
	for _, s := range summaries {
		added += s.TransactionsAdded
		skipped += s.TransactionsSkipped
	}

	e.logger.Info("scrape-all finished",
		"job_id", job.ID,
		"accounts_scraped", len(summaries),
		"accounts_failed", len(accountErrs),
		"added", added,
		"skipped", skipped)

	if len(summaries) == 0 && len(accountErrs) > 0 {
		details := make([]string, 0, len(accountErrs))
		for i := range accountErrs {
			details = append(details, accountErrs[i].Error())
		}
		return fmt.Errorf("all accounts failed to scrape: %s", strings.Join(details, "; "))
	}

	return nil
}

func (e *Executor) executeScrapeSpecific(ctx context.Context, job *model.Job, accountID int64) error {
	summary, err := e.service.ScrapeAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("scrape of account %d failed: %w", accountID, err)
	}

	e.logger.Info("scrape finished",
		"job_id", job.ID,
		"account_id", summary.AccountID,
		"added", summary.TransactionsAdded,
		"skipped", summary.TransactionsSkipped,
		"balance", summary.NewBalance)

	return nil
}
