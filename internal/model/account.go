package model

import "time"

// AccountType distinguishes the kinds of accounts tracked in the ledger.
type AccountType string

const (
	// AccountTypeBank is an ordinary bank account.
	AccountTypeBank AccountType = "BANK"
	// AccountTypeCard is a credit card account.
	AccountTypeCard AccountType = "CARD"
	// AccountTypeSecurities is a brokerage account.
	AccountTypeSecurities AccountType = "SECURITIES"
	// AccountTypeCash is a cash wallet; never scraped.
	AccountTypeCash AccountType = "CASH"
)

// ValidAccountType reports whether t is one of the known account types.
func ValidAccountType(t AccountType) bool {
	switch t {
	case AccountTypeBank, AccountTypeCard, AccountTypeSecurities, AccountTypeCash:
		return true
	}
	return false
}

// Account is a real-world account whose balance and transactions are tracked.
// Balance is in the smallest currency unit.
type Account struct {
	CreatedAt            time.Time
	Name                 string
	Type                 AccountType
	EncryptedCredentials []byte // nil when the account is not scrape-eligible
	ID                   int64
	Balance              int64
}

// HasCredentials reports whether the account has stored credentials and is
// therefore a scrape candidate.
func (a *Account) HasCredentials() bool {
	return len(a.EncryptedCredentials) > 0
}

// Credentials is the decrypted login material for one institution.
type Credentials struct {
	AdditionalFields map[string]string
	LoginID          string
	Password         string
}
