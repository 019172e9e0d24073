package inventorystore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Emin3mUI/library-management-task/core"
)

// DDL is issued as raw SQL: goqu builds DML only. Table names are
// interpolated from the (validated, non-empty) configured names.
const (
	createBookTableDDL = `CREATE TABLE IF NOT EXISTS %s (
	book_id    TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT NOT NULL,
	genre      TEXT NOT NULL DEFAULT '',
	publisher  TEXT NOT NULL DEFAULT '',
	quantity   INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
	available  BOOLEAN NOT NULL DEFAULT TRUE,
	place      TEXT NOT NULL DEFAULT ''
)`

	createBorrowerTableDDL = `CREATE TABLE IF NOT EXISTS %s (
	email     TEXT PRIMARY KEY,
	password  TEXT NOT NULL
)`

	createBorrowingTableDDL = `CREATE TABLE IF NOT EXISTS %s (
	id              TEXT PRIMARY KEY,
	borrower_email  TEXT NOT NULL,
	book_id         TEXT NOT NULL,
	start_date      DATE NOT NULL,
	return_date     DATE NOT NULL,
	is_returned     BOOLEAN NOT NULL DEFAULT FALSE
)`

	createOpenBorrowingIndexDDL = `CREATE INDEX IF NOT EXISTS idx_%s_open
	ON %s (book_id, start_date DESC) WHERE is_returned = FALSE`
)

// EnsureSchema creates the book, borrower and borrowing tables plus the
// open-borrowing lookup index if they do not exist yet. Intended to run
// once at process startup.
func (s *Store) EnsureSchema(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf(createBookTableDDL, s.bookTable),
		fmt.Sprintf(createBorrowerTableDDL, s.borrowerTable),
		fmt.Sprintf(createBorrowingTableDDL, s.borrowingTable),
		fmt.Sprintf(createOpenBorrowingIndexDDL, s.borrowingTable, s.borrowingTable),
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(ctx, statement); err != nil {
			s.logError(logMsgExecFailed, logAttrError, err.Error(), logAttrQuery, statement)
			return errors.Join(core.ErrStoreUnavailable, err)
		}
	}

	return nil
}
