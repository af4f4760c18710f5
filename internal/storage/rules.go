package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nisioka/self-money/internal/common"
	"github.com/nisioka/self-money/internal/model"
)

// GetAutoRules returns all keyword rules with their category names, ordered
// by keyword.
func (s *SQLiteStorage) GetAutoRules(ctx context.Context) ([]model.AutoRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT r.id, r.keyword, r.category_id, c.name, r.created_at
		FROM auto_rules r
		JOIN categories c ON c.id = r.category_id
		ORDER BY r.keyword`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query auto rules: %w", err)
	}
	defer rows.Close()

	var rules []model.AutoRule
	for rows.Next() {
		var rule model.AutoRule
		if err := rows.Scan(&rule.ID, &rule.Keyword, &rule.CategoryID,
			&rule.CategoryName, &rule.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan auto rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating auto rules: %w", err)
	}
	return rules, nil
}

// UpsertAutoRule creates a keyword rule, or repoints an existing keyword to a
// new category.
func (s *SQLiteStorage) UpsertAutoRule(ctx context.Context, keyword string, categoryID int64) (*model.AutoRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	keyword = strings.TrimSpace(keyword)
	if err := validateString(keyword, "keyword"); err != nil {
		return nil, err
	}

	category, err := s.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO auto_rules (keyword, category_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(keyword) DO UPDATE SET category_id = excluded.category_id`

	if _, err := s.db.ExecContext(ctx, query, keyword, categoryID, now); err != nil {
		return nil, fmt.Errorf("failed to upsert auto rule: %w", err)
	}

	var rule model.AutoRule
	err = s.db.QueryRowContext(ctx,
		`SELECT id, keyword, category_id, created_at FROM auto_rules WHERE keyword = ?`,
		keyword).Scan(&rule.ID, &rule.Keyword, &rule.CategoryID, &rule.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to query upserted rule: %w", err)
	}
	rule.CategoryName = category.Name

	return &rule, nil
}

// DeleteAutoRule removes a rule by id.
func (s *SQLiteStorage) DeleteAutoRule(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM auto_rules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete auto rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("auto rule %d: %w", id, common.ErrNotFound)
	}
	return nil
}
