// Package scrapers holds the per-institution scraping strategies.
package scrapers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/scraper"
)

const (
	rakutenAccountName  = "楽天銀行"
	rakutenLoginURL     = "https://fes.rakuten-bank.co.jp/MS/main/RbS?CurrentPageID=START"
	rakutenLoginAction  = "https://fes.rakuten-bank.co.jp/MS/main/RbS"
	rakutenStatementURL = "https://fes.rakuten-bank.co.jp/MS/main/gns?COMMAND=BALANCE_INQUIRY_START"
)

// RakutenBank scrapes the Rakuten Bank online banking statement pages.
type RakutenBank struct {
	newSession scraper.SessionFactory
}

// NewRakutenBank creates the scraper. The factory lets tests substitute a
// canned session.
func NewRakutenBank(factory scraper.SessionFactory) *RakutenBank {
	if factory == nil {
		factory = scraper.NewHTTPSession
	}
	return &RakutenBank{newSession: factory}
}

func (r *RakutenBank) SupportedAccountName() string {
	return rakutenAccountName
}

func (r *RakutenBank) Scrape(ctx context.Context, credentials *model.Credentials) (*scraper.Result, error) {
	session := r.newSession()
	defer func() { _ = session.Close() }()

	if _, err := session.Navigate(ctx, rakutenLoginURL); err != nil {
		return nil, fmt.Errorf("failed to open login page: %w", err)
	}

	doc, err := session.SubmitForm(ctx, rakutenLoginAction, url.Values{
		"LOGIN:USER_ID":  {credentials.LoginID},
		"LOGIN:PASSWORD": {credentials.Password},
	})
	if err != nil {
		return nil, fmt.Errorf("login submit failed: %w", err)
	}
	if msg := scraper.TextByClass(doc, "error-message"); msg != "" {
		return nil, fmt.Errorf("login rejected: %s", msg)
	}
	if scraper.FindByClass(doc, "otp-input") != nil {
		return nil, fmt.Errorf("one-time password challenge presented")
	}

	statement, err := session.Navigate(ctx, rakutenStatementURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement page: %w", err)
	}

	balanceText := scraper.TextByClass(statement, "balance-amount")
	if balanceText == "" {
		return nil, fmt.Errorf("balance element not found")
	}
	balance, err := scraper.ParseAmount(balanceText)
	if err != nil {
		return nil, fmt.Errorf("unparseable balance: %w", err)
	}

	transactions, err := extractStatementRows(statement, "transaction-table", rakutenAccountName)
	if err != nil {
		return nil, err
	}

	return &scraper.Result{
		Transactions: transactions,
		Balance:      balance,
	}, nil
}
