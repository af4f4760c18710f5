package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/nisioka/self-money/internal/common"
	"github.com/nisioka/self-money/internal/model"
	"github.com/nisioka/self-money/internal/service"
)

const transactionColumns = `id, date, amount, description, memo, is_manual, external_id, account_id, category_id, created_at`

// CreateTransaction inserts a new ledger entry. The external id, when
// present, must be unique; a collision fails with
// common.ErrDuplicateExternalID so callers can treat it as a dedup signal.
func (s *SQLiteStorage) CreateTransaction(ctx context.Context, txn *model.Transaction) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateTransaction(txn); err != nil {
		return nil, err
	}

	if txn.ExternalID != "" {
		existing, err := s.GetTransactionByExternalID(ctx, txn.ExternalID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("external id %q: %w", txn.ExternalID, common.ErrDuplicateExternalID)
		}
	}

	if _, err := s.GetAccount(ctx, txn.AccountID); err != nil {
		return nil, err
	}
	if _, err := s.GetCategoryByID(ctx, txn.CategoryID); err != nil {
		return nil, err
	}

	created := *txn
	created.Description = strings.TrimSpace(txn.Description)
	created.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO transactions (date, amount, description, memo, is_manual, external_id, account_id, category_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var externalID any
	if created.ExternalID != "" {
		externalID = created.ExternalID
	}
	var memo any
	if created.Memo != "" {
		memo = created.Memo
	}

	result, err := s.db.ExecContext(ctx, query,
		created.Date, created.Amount, created.Description, memo,
		created.IsManual, externalID, created.AccountID, created.CategoryID, created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction ID: %w", err)
	}
	created.ID = id

	return &created, nil
}

// GetTransaction returns a transaction by id, or common.ErrNotFound.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction: %w", err)
	}
	return txn, nil
}

// GetTransactionByExternalID returns the transaction carrying the external
// id, or nil when none exists. This is the dedup lookup for scraped rows.
func (s *SQLiteStorage) GetTransactionByExternalID(ctx context.Context, externalID string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(externalID, "externalID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE external_id = ?`

	txn, err := scanTransaction(s.db.QueryRowContext(ctx, query, externalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction by external id: %w", err)
	}
	return txn, nil
}

// GetTransactionsByMonth returns the transactions of one calendar month,
// newest first, optionally restricted to a single account.
func (s *SQLiteStorage) GetTransactionsByMonth(ctx context.Context, year int, month time.Month, accountID *int64) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE date >= ? AND date < ?`
	args := []any{start, end}

	if accountID != nil {
		query += ` AND account_id = ?`
		args = append(args, *accountID)
	}
	query += ` ORDER BY date DESC, id DESC`

	return s.queryTransactions(ctx, query, args...)
}

// GetTransactionsByAccount returns every transaction of one account, newest first.
func (s *SQLiteStorage) GetTransactionsByAccount(ctx context.Context, accountID int64) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE account_id = ?
		ORDER BY date DESC, id DESC`

	return s.queryTransactions(ctx, query, accountID)
}

// UpdateTransaction applies the non-nil fields of update to a transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, id int64, update service.TransactionUpdate) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	existing, err := s.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Amount != nil {
		existing.Amount = *update.Amount
	}
	if update.CategoryID != nil {
		if _, err := s.GetCategoryByID(ctx, *update.CategoryID); err != nil {
			return nil, err
		}
		existing.CategoryID = *update.CategoryID
	}
	if update.Memo != nil {
		existing.Memo = *update.Memo
	}

	var memo any
	if existing.Memo != "" {
		memo = existing.Memo
	}

	query := `UPDATE transactions SET amount = ?, category_id = ?, memo = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, query, existing.Amount, existing.CategoryID, memo, id); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return existing, nil
}

// DeleteTransaction removes a transaction by id.
func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("transaction %d: %w", id, common.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txns, nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var txn model.Transaction
	var memo, externalID sql.NullString

	if err := row.Scan(&txn.ID, &txn.Date, &txn.Amount, &txn.Description,
		&memo, &txn.IsManual, &externalID, &txn.AccountID, &txn.CategoryID, &txn.CreatedAt); err != nil {
		return nil, err
	}

	if memo.Valid {
		txn.Memo = memo.String
	}
	if externalID.Valid {
		txn.ExternalID = externalID.String
	}
	return &txn, nil
}
