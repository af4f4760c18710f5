// Package service defines the interfaces shared across application packages.
package service

import (
	"context"
	"time"

	"github.com/nisioka/self-money/internal/model"
)

// Storage defines the contract for the persistence layer.
type Storage interface {
	// Job operations
	CreateJob(ctx context.Context, jobType model.JobType, targetAccountID *int64) (*model.Job, error)
	GetJob(ctx context.Context, id string) (*model.Job, error)
	GetNextPendingJob(ctx context.Context) (*model.Job, error)
	HasRunningJob(ctx context.Context) (bool, error)
	UpdateJobStatus(ctx context.Context, id string, status model.JobStatus, errorMessage string) (*model.Job, error)
	GetRecentJobs(ctx context.Context, limit int) ([]model.Job, error)

	// Account operations
	CreateAccount(ctx context.Context, name string, accountType model.AccountType, initialBalance int64, credentials *model.Credentials) (*model.Account, error)
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	UpdateAccount(ctx context.Context, id int64, name string, credentials *model.Credentials) (*model.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
	UpdateAccountBalance(ctx context.Context, id int64, balance int64) error
	GetCredentials(ctx context.Context, accountID int64) (*model.Credentials, error)

	// Transaction operations
	CreateTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	GetTransactionByExternalID(ctx context.Context, externalID string) (*model.Transaction, error)
	GetTransactionsByMonth(ctx context.Context, year int, month time.Month, accountID *int64) ([]model.Transaction, error)
	GetTransactionsByAccount(ctx context.Context, accountID int64) ([]model.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, update TransactionUpdate) (*model.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, name string) (*model.Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	// Auto-rule operations
	GetAutoRules(ctx context.Context) ([]model.AutoRule, error)
	UpsertAutoRule(ctx context.Context, keyword string, categoryID int64) (*model.AutoRule, error)
	DeleteAutoRule(ctx context.Context, id int64) error

	// Analytics
	GetMonthlySummary(ctx context.Context, year int, month time.Month) (*MonthlySummary, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// TransactionUpdate holds the mutable fields of a transaction. Nil means
// leave the field unchanged.
type TransactionUpdate struct {
	Amount     *int64
	CategoryID *int64
	Memo       *string
}

// JobExecutor performs the work a job describes. The worker catches any
// returned error and records it on the job.
type JobExecutor interface {
	Execute(ctx context.Context, job *model.Job) error
}

// AIClient is the external classification capability: given a description and
// the set of known category names it returns a category name, or an empty
// string when it has no suggestion. Implementations are expected to fail soft
// where possible, but callers tolerate returned errors too.
type AIClient interface {
	Classify(ctx context.Context, description string, categories []string) (string, error)
}

// MonthlySummary aggregates one calendar month of ledger activity.
type MonthlySummary struct {
	ByCategory   []CategorySummary
	Year         int
	Month        time.Month
	TotalIncome  int64
	TotalExpense int64
}

// CategorySummary is the aggregate for a single category within a summary.
type CategorySummary struct {
	CategoryName string
	CategoryID   int64
	Total        int64
	Count        int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
