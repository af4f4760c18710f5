package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/nisioka/self-money/internal/service"
)

// GetMonthlySummary aggregates one calendar month: total income, total
// expense (as a positive magnitude), and a per-category breakdown ordered by
// the absolute total, largest first.
func (s *SQLiteStorage) GetMonthlySummary(ctx context.Context, year int, month time.Month) (*service.MonthlySummary, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	summary := &service.MonthlySummary{Year: year, Month: month}

	totalsQuery := `
		SELECT
			COALESCE(SUM(CASE WHEN amount > 0 THEN amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN amount < 0 THEN -amount ELSE 0 END), 0)
		FROM transactions
		WHERE date >= ? AND date < ?`

	if err := s.db.QueryRowContext(ctx, totalsQuery, start, end).Scan(
		&summary.TotalIncome, &summary.TotalExpense); err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}

	breakdownQuery := `
		SELECT c.id, c.name, SUM(t.amount), COUNT(*)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.date >= ? AND t.date < ?
		GROUP BY c.id, c.name
		ORDER BY ABS(SUM(t.amount)) DESC`

	rows, err := s.db.QueryContext(ctx, breakdownQuery, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query category breakdown: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs service.CategorySummary
		if err := rows.Scan(&cs.CategoryID, &cs.CategoryName, &cs.Total, &cs.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		summary.ByCategory = append(summary.ByCategory, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category summaries: %w", err)
	}
	return summary, nil
}
