package scrapers

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/scraper"
)

// extractStatementRows parses a date/description/amount statement table into
// scraped transactions. Rows that do not parse are skipped rather than
// failing the whole statement; banks pad their tables with subtotal and
// notice rows. The per-key index in the external ID separates legitimate
// same-day duplicates (two identical coffees) from re-scraped rows.
func extractStatementRows(doc *html.Node, tableClass, institution string) ([]model.ScrapedTransaction, error) {
	rows := scraper.TableRows(doc, tableClass)
	if rows == nil {
		return nil, fmt.Errorf("statement table %q not found", tableClass)
	}

	seen := make(map[string]int)
	var transactions []model.ScrapedTransaction
	for _, cells := range rows {
		if len(cells) < 3 {
			continue
		}

		date, err := scraper.ParseDate(cells[0])
		if err != nil {
			continue
		}
		description := cells[1]
		amount, err := scraper.ParseAmount(cells[2])
		if err != nil {
			continue
		}

		key := scraper.ExternalID(institution, date, amount, description, 0)
		index := seen[key]
		seen[key]++

		transactions = append(transactions, model.ScrapedTransaction{
			Date:        date,
			Description: description,
			Amount:      amount,
			ExternalID:  scraper.ExternalID(institution, date, amount, description, index),
		})
	}

	return transactions, nil
}
