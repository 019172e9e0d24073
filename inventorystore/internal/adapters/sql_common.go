package adapters

import (
	"context"
	"database/sql"
)

// stdRows wraps standard library sql.Rows to implement the DBRows interface.
type stdRows struct {
	rows *sql.Rows
}

// Next advances to the next row.
func (s *stdRows) Next() bool {
	return s.rows.Next()
}

// Scan copies row values into provided destinations.
func (s *stdRows) Scan(dest ...any) error {
	return s.rows.Scan(dest...)
}

// Close closes the rows iterator.
func (s *stdRows) Close() error {
	return s.rows.Close()
}

// stdResult wraps standard library sql.Result to implement the DBResult interface.
type stdResult struct {
	result sql.Result
}

// RowsAffected returns the number of rows affected by the command.
func (s *stdResult) RowsAffected() (int64, error) {
	return s.result.RowsAffected()
}

// stdTransaction wraps standard library sql.Tx to implement the DBTransaction interface.
// database/sql transactions are not context-aware on commit/rollback, so the
// context parameters are accepted for interface symmetry and ignored.
type stdTransaction struct {
	tx *sql.Tx
}

// Query executes a query within the transaction and returns wrapped rows.
func (s *stdTransaction) Query(ctx context.Context, query string) (DBRows, error) {
	rows, err := s.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdRows{rows: rows}, nil
}

// Exec executes a query within the transaction and returns wrapped result.
func (s *stdTransaction) Exec(ctx context.Context, query string) (DBResult, error) {
	result, err := s.tx.ExecContext(ctx, query)
	if err != nil {
		return nil, err
	}

	return &stdResult{result: result}, nil
}

// Commit commits the transaction.
func (s *stdTransaction) Commit(_ context.Context) error {
	return s.tx.Commit()
}

// Rollback aborts the transaction.
func (s *stdTransaction) Rollback(_ context.Context) error {
	return s.tx.Rollback()
}
