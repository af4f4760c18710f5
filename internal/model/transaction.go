package model

import "time"

// Transaction is a persisted ledger entry. Amount is signed, in the smallest
// currency unit; positive means inflow. ExternalID is empty for manual
// entries and unique across all transactions when present.
type Transaction struct {
	Date        time.Time
	CreatedAt   time.Time
	Description string
	Memo        string
	ExternalID  string
	ID          int64
	Amount      int64
	AccountID   int64
	CategoryID  int64
	IsManual    bool
}

// ScrapedTransaction is one row extracted by a scraper. It is never persisted
// as-is; the orchestrator deduplicates by ExternalID and turns new rows into
// Transactions.
type ScrapedTransaction struct {
	Date        time.Time
	Description string
	ExternalID  string
	Amount      int64
}
