package scrapers

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/scraper"
)

// fakeSession serves canned documents per URL and records submitted forms.
type fakeSession struct {
	pages       map[string]string
	submitted   url.Values
	navigateErr error
}

func (f *fakeSession) Navigate(_ context.Context, rawURL string) (*html.Node, error) {
	if f.navigateErr != nil {
		return nil, f.navigateErr
	}
	return f.parse(rawURL)
}

func (f *fakeSession) SubmitForm(_ context.Context, action string, fields url.Values) (*html.Node, error) {
	f.submitted = fields
	return f.parse(action)
}

func (f *fakeSession) Close() error { return nil }

func (f *fakeSession) parse(key string) (*html.Node, error) {
	page, ok := f.pages[key]
	if !ok {
		return nil, errors.New("no canned page for " + key)
	}
	return html.Parse(strings.NewReader(page))
}

const rakutenLoginOK = `<html><body><p>ようこそ</p></body></html>`

const rakutenStatement = `
<html><body>
  <div class="balance-amount">¥250,000</div>
  <table class="transaction-table">
    <tr><th>日付</th><th>摘要</th><th>金額</th></tr>
    <tr><td>2026/01/15</td><td>スーパーマーケット</td><td>-3,500</td></tr>
    <tr><td>2026/01/15</td><td>スーパーマーケット</td><td>-3,500</td></tr>
    <tr><td>2026/01/16</td><td>給与振込</td><td>300,000</td></tr>
    <tr><td>合計</td><td></td><td></td></tr>
  </table>
</body></html>`

func rakutenFakeSession() *fakeSession {
	return &fakeSession{pages: map[string]string{
		rakutenLoginURL:     rakutenLoginOK,
		rakutenLoginAction:  rakutenLoginOK,
		rakutenStatementURL: rakutenStatement,
	}}
}

func TestRakutenBankScrape(t *testing.T) {
	session := rakutenFakeSession()
	bank := NewRakutenBank(func() scraper.Session { return session })

	result, err := bank.Scrape(context.Background(), &model.Credentials{
		LoginID:  "user123",
		Password: "hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(250000), result.Balance)
	require.Len(t, result.Transactions, 3, "subtotal row is dropped")

	assert.Equal(t, "user123", session.submitted.Get("LOGIN:USER_ID"))

	first, second := result.Transactions[0], result.Transactions[1]
	assert.Equal(t, int64(-3500), first.Amount)
	assert.NotEqual(t, first.ExternalID, second.ExternalID,
		"identical rows get distinct indexes")
	assert.Equal(t, "楽天銀行-2026-01-15--3500-スーパーマーケット-0", first.ExternalID)
	assert.Equal(t, "楽天銀行-2026-01-15--3500-スーパーマーケット-1", second.ExternalID)
}

func TestRakutenBankLoginRejected(t *testing.T) {
	session := rakutenFakeSession()
	session.pages[rakutenLoginAction] = `<html><body><div class="error-message">IDまたはパスワードが違います</div></body></html>`
	bank := NewRakutenBank(func() scraper.Session { return session })

	_, err := bank.Scrape(context.Background(), &model.Credentials{LoginID: "u", Password: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login rejected")
}

func TestRakutenBankOTPChallenge(t *testing.T) {
	session := rakutenFakeSession()
	session.pages[rakutenLoginAction] = `<html><body><input class="otp-input"/></body></html>`
	bank := NewRakutenBank(func() scraper.Session { return session })

	_, err := bank.Scrape(context.Background(), &model.Credentials{LoginID: "u", Password: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one-time password")
}

func TestRakutenBankNetworkFailure(t *testing.T) {
	session := rakutenFakeSession()
	session.navigateErr = errors.New("connection refused")
	bank := NewRakutenBank(func() scraper.Session { return session })

	_, err := bank.Scrape(context.Background(), &model.Credentials{LoginID: "u", Password: "p"})
	assert.Error(t, err)
}

func TestRakutenBankMissingBalance(t *testing.T) {
	session := rakutenFakeSession()
	session.pages[rakutenStatementURL] = `<html><body><p>メンテナンス中</p></body></html>`
	bank := NewRakutenBank(func() scraper.Session { return session })

	_, err := bank.Scrape(context.Background(), &model.Credentials{LoginID: "u", Password: "p"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balance")
}
