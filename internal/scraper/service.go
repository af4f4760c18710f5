package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nisioka/self-money/internal/model"
)

// Store is the storage surface the orchestrator needs.
type Store interface {
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetCredentials(ctx context.Context, accountID int64) (*model.Credentials, error)
	GetTransactionByExternalID(ctx context.Context, externalID string) (*model.Transaction, error)
	CreateTransaction(ctx context.Context, tx *model.Transaction) (*model.Transaction, error)
	UpdateAccountBalance(ctx context.Context, accountID int64, balance int64) error
}

// Classifier assigns a category to a transaction description.
type Classifier interface {
	Classify(ctx context.Context, description string) (*model.ClassificationResult, error)
}

// Summary reports what one successful account scrape changed.
type Summary struct {
	AccountName         string
	AccountID           int64
	NewBalance          int64
	TransactionsAdded   int
	TransactionsSkipped int
}

// Service orchestrates scraping: it resolves accounts to scrapers, ingests
// the extracted transactions with external-ID dedup, classifies new entries,
// and records the reported balance.
type Service struct {
	store      Store
	classifier Classifier
	registry   *Registry
	logger     *slog.Logger
}

// NewService creates the orchestrator.
func NewService(store Store, classifier Classifier, registry *Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:      store,
		classifier: classifier,
		registry:   registry,
		logger:     logger,
	}
}

// ScrapeAccount scrapes one account end to end. Failures come back as
// *AccountError carrying the failure kind.
func (s *Service) ScrapeAccount(ctx context.Context, accountID int64) (*Summary, error) {
	summary, scrapeErr := s.scrapeAccount(ctx, accountID)
	if scrapeErr != nil {
		return nil, scrapeErr
	}
	return summary, nil
}

// ScrapeAllAccounts scrapes every account that has credentials stored.
// Accounts without credentials are skipped silently. Per-account failures are
// collected rather than aborting the run; only a failure to list accounts is
// returned as an error.
func (s *Service) ScrapeAllAccounts(ctx context.Context) ([]Summary, []AccountError, error) {
	accounts, err := s.store.GetAccounts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	var summaries []Summary
	var accountErrs []AccountError
	for _, account := range accounts {
		if !account.HasCredentials() {
			continue
		}

		summary, scrapeErr := s.scrapeAccount(ctx, account.ID)
		if scrapeErr != nil {
			s.logger.Warn("account scrape failed",
				"account_id", scrapeErr.AccountID,
				"kind", scrapeErr.Kind,
				"error", scrapeErr.Message)
			accountErrs = append(accountErrs, *scrapeErr)
			continue
		}
		summaries = append(summaries, *summary)
	}

	return summaries, accountErrs, nil
}

func (s *Service) scrapeAccount(ctx context.Context, accountID int64) (*Summary, *AccountError) {
	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, &AccountError{
			AccountID: accountID,
			Kind:      KindNetworkError,
			Message:   fmt.Sprintf("failed to load account: %v", err),
		}
	}

	if !account.HasCredentials() {
		return nil, &AccountError{
			AccountID: accountID,
			Kind:      KindNoCredentials,
			Message:   "no credentials configured",
		}
	}

	scr := s.registry.Get(account.Name)
	if scr == nil {
		return nil, &AccountError{
			AccountID: accountID,
			Kind:      KindSiteChanged,
			Message:   fmt.Sprintf("no scraper registered for %q", account.Name),
		}
	}

	summary, err := s.runScrape(ctx, account, scr)
	if err != nil {
		return nil, &AccountError{
			AccountID: accountID,
			Kind:      KindAuthFailed,
			Message:   err.Error(),
		}
	}
	return summary, nil
}

func (s *Service) runScrape(ctx context.Context, account *model.Account, scr Scraper) (*Summary, error) {
	credentials, err := s.store.GetCredentials(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	result, err := scr.Scrape(ctx, credentials)
	if err != nil {
		return nil, err
	}

	added, skipped := 0, 0
	for i := range result.Transactions {
		scraped := &result.Transactions[i]

		existing, err := s.store.GetTransactionByExternalID(ctx, scraped.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("failed to check for duplicate %s: %w", scraped.ExternalID, err)
		}
		if existing != nil {
			skipped++
			continue
		}

		classification, err := s.classifier.Classify(ctx, scraped.Description)
		if err != nil {
			return nil, fmt.Errorf("failed to classify %q: %w", scraped.Description, err)
		}

		if _, err := s.store.CreateTransaction(ctx, &model.Transaction{
			Date:        scraped.Date,
			Description: scraped.Description,
			ExternalID:  scraped.ExternalID,
			Amount:      scraped.Amount,
			AccountID:   account.ID,
			CategoryID:  classification.CategoryID,
		}); err != nil {
			return nil, fmt.Errorf("failed to store transaction %s: %w", scraped.ExternalID, err)
		}
		added++
	}

	if err := s.store.UpdateAccountBalance(ctx, account.ID, result.Balance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	s.logger.Info("account scraped",
		"account_id", account.ID,
		"account", account.Name,
		"added", added,
		"skipped", skipped,
		"balance", result.Balance)

	return &Summary{
		AccountName:         account.Name,
		AccountID:           account.ID,
		NewBalance:          result.Balance,
		TransactionsAdded:   added,
		TransactionsSkipped: skipped,
	}, nil
}
