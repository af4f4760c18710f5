package scrapers

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/scraper"
)

const (
	smbcAccountName  = "三井住友銀行"
	smbcLoginURL     = "https://direct.smbc.co.jp/aib/aibgsjsw5001.jsp"
	smbcLoginAction  = "https://direct.smbc.co.jp/aib/aibgsjsw5001.jsp"
	smbcStatementURL = "https://direct.smbc.co.jp/aib/aibgsjsw5002.jsp"
)

// SMBC scrapes the SMBC Direct statement pages. The site asks for a branch
// code alongside the account credentials; it is carried in the credentials'
// additional fields under "branch_code".
type SMBC struct {
	newSession scraper.SessionFactory
}

// NewSMBC creates the scraper.
func NewSMBC(factory scraper.SessionFactory) *SMBC {
	if factory == nil {
		factory = scraper.NewHTTPSession
	}
	return &SMBC{newSession: factory}
}

func (s *SMBC) SupportedAccountName() string {
	return smbcAccountName
}

func (s *SMBC) Scrape(ctx context.Context, credentials *model.Credentials) (*scraper.Result, error) {
	branch := credentials.AdditionalFields["branch_code"]
	if branch == "" {
		return nil, fmt.Errorf("branch_code is required")
	}

	session := s.newSession()
	defer func() { _ = session.Close() }()

	if _, err := session.Navigate(ctx, smbcLoginURL); err != nil {
		return nil, fmt.Errorf("failed to open login page: %w", err)
	}

	doc, err := session.SubmitForm(ctx, smbcLoginAction, url.Values{
		"branchCd":  {branch},
		"accountNo": {credentials.LoginID},
		"password":  {credentials.Password},
	})
	if err != nil {
		return nil, fmt.Errorf("login submit failed: %w", err)
	}
	if msg := scraper.TextByClass(doc, "err-msg"); msg != "" {
		return nil, fmt.Errorf("login rejected: %s", msg)
	}

	statement, err := session.Navigate(ctx, smbcStatementURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open statement page: %w", err)
	}

	balanceText := scraper.TextByClass(statement, "balance")
	if balanceText == "" {
		return nil, fmt.Errorf("balance element not found")
	}
	balance, err := scraper.ParseAmount(balanceText)
	if err != nil {
		return nil, fmt.Errorf("unparseable balance: %w", err)
	}

	transactions, err := extractStatementRows(statement, "meisai-table", smbcAccountName)
	if err != nil {
		return nil, err
	}

	return &scraper.Result{
		Transactions: transactions,
		Balance:      balance,
	}, nil
}
