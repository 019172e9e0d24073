package inventorystore

import "errors"

// ErrEmptyTableNameSupplied is returned when a table name option receives an empty string.
var ErrEmptyTableNameSupplied = errors.New("empty table name supplied")

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithTableNames overrides the default table names for books, borrowers
// and the borrowing ledger.
func WithTableNames(bookTable string, borrowerTable string, borrowingTable string) Option {
	return func(s *Store) error {
		if bookTable == "" || borrowerTable == "" || borrowingTable == "" {
			return ErrEmptyTableNameSupplied
		}

		s.bookTable = bookTable
		s.borrowerTable = borrowerTable
		s.borrowingTable = borrowingTable

		return nil
	}
}

// WithLogger sets the logger for the Store.
//
// Debug level: SQL queries with execution timing (development use)
// Warn level: non-critical issues like row cleanup failures
// Error level: failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}
