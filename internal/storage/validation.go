package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nisioka/self-money/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidLimit       = errors.New("limit must be positive")
	ErrInvalidStatus      = errors.New("invalid job status")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidAccountType = errors.New("invalid account type")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateLimit ensures a query limit is positive.
func validateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	return nil
}

// validateJobStatus ensures a status is one of the known lifecycle states.
func validateJobStatus(status model.JobStatus) error {
	switch status {
	case model.JobStatusPending,
		model.JobStatusRunning,
		model.JobStatusCompleted,
		model.JobStatusFailed:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
}

// validateTransaction validates a transaction before insertion.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if strings.TrimSpace(txn.Description) == "" {
		return fmt.Errorf("%w: missing description", ErrInvalidTransaction)
	}
	if txn.AccountID == 0 {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if txn.CategoryID == 0 {
		return fmt.Errorf("%w: missing category ID", ErrInvalidTransaction)
	}
	return nil
}
