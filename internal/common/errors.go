// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Database errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEntry = errors.New("duplicate entry")

	// Ingestion errors.
	ErrDuplicateExternalID = errors.New("duplicate external id")

	// Referential integrity errors.
	ErrHasTransactions = errors.New("account has transactions")
	ErrCategoryInUse   = errors.New("category is in use")

	// Credential errors.
	ErrNoCredentials = errors.New("no credentials stored")

	// Configuration errors.
	ErrInvalidConfig = errors.New("invalid configuration")
)
