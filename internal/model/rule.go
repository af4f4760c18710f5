package model

import "time"

// AutoRule maps a description keyword to a category. A rule matches when its
// keyword is a substring of a transaction description.
type AutoRule struct {
	CreatedAt    time.Time
	Keyword      string
	CategoryName string
	ID           int64
	CategoryID   int64
}
