package scrapers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/scraper"
)

const smbcLoginOK = `<html><body><p>ログイン完了</p></body></html>`

const smbcStatement = `
<html><body>
  <span class="balance">1,200,000円</span>
  <table class="meisai-table">
    <tr><th>年月日</th><th>お取り扱い内容</th><th>金額</th></tr>
    <tr><td>2026年1月20日</td><td>コンビニ</td><td>-800</td></tr>
    <tr><td>2026年1月25日</td><td>電気料金</td><td>-9,500</td></tr>
  </table>
</body></html>`

func smbcFakeSession() *fakeSession {
	return &fakeSession{pages: map[string]string{
		smbcLoginAction:  smbcLoginOK,
		smbcStatementURL: smbcStatement,
	}}
}

func smbcCreds() *model.Credentials {
	return &model.Credentials{
		LoginID:  "1234567",
		Password: "secret",
		AdditionalFields: map[string]string{
			"branch_code": "209",
		},
	}
}

func TestSMBCScrape(t *testing.T) {
	session := smbcFakeSession()
	bank := NewSMBC(func() scraper.Session { return session })

	result, err := bank.Scrape(context.Background(), smbcCreds())
	require.NoError(t, err)

	assert.Equal(t, int64(1200000), result.Balance)
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, int64(-800), result.Transactions[0].Amount)
	assert.Equal(t, "三井住友銀行-2026-01-25--9500-電気料金-0", result.Transactions[1].ExternalID)

	assert.Equal(t, "209", session.submitted.Get("branchCd"))
	assert.Equal(t, "1234567", session.submitted.Get("accountNo"))
}

func TestSMBCRequiresBranchCode(t *testing.T) {
	bank := NewSMBC(func() scraper.Session { return smbcFakeSession() })

	_, err := bank.Scrape(context.Background(), &model.Credentials{
		LoginID:  "1234567",
		Password: "secret",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch_code")
}

func TestSMBCLoginRejected(t *testing.T) {
	session := smbcFakeSession()
	session.pages[smbcLoginAction] = `<html><body><div class="err-msg">口座番号または暗証番号が誤っています</div></body></html>`
	bank := NewSMBC(func() scraper.Session { return session })

	_, err := bank.Scrape(context.Background(), smbcCreds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login rejected")
}
