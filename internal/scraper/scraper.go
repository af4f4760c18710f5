// Package scraper drives authenticated sessions against external banking
// sites and turns the extracted statements into ledger entries.
package scraper

import (
	"context"
	"fmt"

	"github.com/nisioka/self-money/internal/model"
)

// Result is what one scrape of one institution produces: the statement rows
// and the current balance as reported by the site.
type Result struct {
	Transactions []model.ScrapedTransaction
	Balance      int64
}

// Scraper is a pluggable per-institution strategy. Scrape may fail with any
// error (network, authentication, site-structure changes, two-factor
// prompts); this layer makes no distinction between failure kinds, the
// orchestrator classifies them.
type Scraper interface {
	// SupportedAccountName returns the account display name this scraper
	// serves. Registry lookup is by exact name.
	SupportedAccountName() string

	// Scrape performs one authenticated session and returns the extracted
	// transactions and current balance.
	Scrape(ctx context.Context, credentials *model.Credentials) (*Result, error)
}

// ErrorKind classifies why scraping an account failed.
type ErrorKind string

const (
	// KindAuthFailed covers anything thrown during an authenticated session.
	KindAuthFailed ErrorKind = "AUTH_FAILED"
	// KindSiteChanged means no scraper is registered for the account name.
	KindSiteChanged ErrorKind = "SITE_CHANGED"
	// KindNetworkError covers account lookup failures.
	KindNetworkError ErrorKind = "NETWORK_ERROR"
	// KindTwoFactorRequired means the site demanded a second factor.
	KindTwoFactorRequired ErrorKind = "TWO_FACTOR_REQUIRED"
	// KindNoCredentials means the account has no stored credentials.
	KindNoCredentials ErrorKind = "NO_CREDENTIALS"
)

// AccountError is a scrape failure tied to one account.
type AccountError struct {
	Message   string
	Kind      ErrorKind
	AccountID int64
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("account %d: %s: %s", e.AccountID, e.Kind, e.Message)
}
