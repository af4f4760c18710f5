package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nisioka/self-money/internal/common"
	"github.com/nisioka/self-money/internal/model"
)

const accountColumns = `id, name, type, balance, encrypted_credentials, created_at`

// CreateAccount inserts a new account. Credentials, when provided, are
// serialized to JSON and encrypted before they touch the database.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, name string, accountType model.AccountType, initialBalance int64, credentials *model.Credentials) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if !model.ValidAccountType(accountType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountType, accountType)
	}

	encrypted, err := s.encryptCredentials(credentials)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO accounts (name, type, balance, encrypted_credentials, created_at)
		VALUES (?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query, name, accountType, initialBalance, encrypted, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get account ID: %w", err)
	}

	slog.Info("created account", "id", id, "name", name, "type", accountType)
	return &model.Account{
		ID:                   id,
		Name:                 name,
		Type:                 accountType,
		Balance:              initialBalance,
		EncryptedCredentials: encrypted,
		CreatedAt:            now,
	}, nil
}

// GetAccount returns an account by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

	account, err := scanAccount(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}
	return account, nil
}

// GetAccounts returns all accounts ordered by id.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccount renames an account and/or replaces its credentials. Nil
// credentials leaves the stored credentials untouched.
func (s *SQLiteStorage) UpdateAccount(ctx context.Context, id int64, name string, credentials *model.Credentials) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	existing, err := s.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		existing.Name = name
	}

	if credentials != nil {
		encrypted, err := s.encryptCredentials(credentials)
		if err != nil {
			return nil, err
		}
		existing.EncryptedCredentials = encrypted
	}

	query := `UPDATE accounts SET name = ?, encrypted_credentials = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, existing.Name, existing.EncryptedCredentials, id); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return existing, nil
}

// DeleteAccount removes an account. It fails with common.ErrHasTransactions
// while ledger entries still reference the account.
func (s *SQLiteStorage) DeleteAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	if _, err := s.GetAccount(ctx, id); err != nil {
		return err
	}

	var count int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, id).Scan(&count); err != nil {
		return fmt.Errorf("failed to count transactions: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("account %d has %d transactions: %w", id, count, common.ErrHasTransactions)
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// UpdateAccountBalance overwrites the account balance. The balance reflects
// point-in-time external truth, not a delta from inserted transactions.
func (s *SQLiteStorage) UpdateAccountBalance(ctx context.Context, id int64, balance int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ? WHERE id = ?`, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("account %d: %w", id, common.ErrNotFound)
	}
	return nil
}

// GetCredentials decrypts and returns the stored credentials for an account.
// It fails with common.ErrNoCredentials when none are stored.
func (s *SQLiteStorage) GetCredentials(ctx context.Context, accountID int64) (*model.Credentials, error) {
	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.HasCredentials() {
		return nil, fmt.Errorf("account %d: %w", accountID, common.ErrNoCredentials)
	}

	plaintext, err := s.cipher.Decrypt(account.EncryptedCredentials)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt credentials for account %d: %w", accountID, err)
	}

	var creds model.Credentials
	if err := json.Unmarshal(plaintext, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse credentials for account %d: %w", accountID, err)
	}
	return &creds, nil
}

func (s *SQLiteStorage) encryptCredentials(credentials *model.Credentials) ([]byte, error) {
	if credentials == nil {
		return nil, nil
	}

	plaintext, err := json.Marshal(credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize credentials: %w", err)
	}

	encrypted, err := s.cipher.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt credentials: %w", err)
	}
	return encrypted, nil
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var account model.Account
	if err := row.Scan(&account.ID, &account.Name, &account.Type,
		&account.Balance, &account.EncryptedCredentials, &account.CreatedAt); err != nil {
		return nil, err
	}
	return &account, nil
}
