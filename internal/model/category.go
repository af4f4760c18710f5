package model

import "time"

// Category groups transactions for reporting.
type Category struct {
	CreatedAt time.Time
	Name      string
	ID        int64
}

// ClassificationSource records which stage of the cascade produced a result.
type ClassificationSource string

const (
	// SourceRule means a stored keyword rule matched the description.
	SourceRule ClassificationSource = "RULE"
	// SourceAI means the AI capability named a known category.
	SourceAI ClassificationSource = "AI"
	// SourceFallback means neither rules nor AI produced a usable category.
	SourceFallback ClassificationSource = "FALLBACK"
)

// ClassificationResult is the outcome of classifying one description. It is
// not persisted; it determines the CategoryID written onto a new Transaction.
type ClassificationResult struct {
	CategoryName string
	Source       ClassificationSource
	CategoryID   int64
}
