package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const statementHTML = `
<html><body>
  <div class="balance-amount">¥250,000</div>
  <table class="transaction-table">
    <tr><th>日付</th><th>摘要</th><th>金額</th></tr>
    <tr><td>2026/01/15</td><td>スーパーマーケット</td><td>-3,500</td></tr>
    <tr><td>2026/01/16</td><td>給与振込</td><td>300,000</td></tr>
  </table>
</body></html>`

func parseTestHTML(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

func TestTextByClass(t *testing.T) {
	doc := parseTestHTML(t, statementHTML)

	assert.Equal(t, "¥250,000", TextByClass(doc, "balance-amount"))
	assert.Equal(t, "", TextByClass(doc, "missing-class"))
}

func TestTableRows(t *testing.T) {
	doc := parseTestHTML(t, statementHTML)

	rows := TableRows(doc, "transaction-table")
	require.Len(t, rows, 2, "header row is skipped")
	assert.Equal(t, []string{"2026/01/15", "スーパーマーケット", "-3,500"}, rows[0])
	assert.Equal(t, []string{"2026/01/16", "給与振込", "300,000"}, rows[1])
}

func TestTableRowsMissingTable(t *testing.T) {
	doc := parseTestHTML(t, "<html><body><p>maintenance</p></body></html>")
	assert.Nil(t, TableRows(doc, "transaction-table"))
}
