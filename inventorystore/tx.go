package inventorystore

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/Emin3mUI/library-management-task/core"
	"github.com/Emin3mUI/library-management-task/inventorystore/internal/adapters"
)

const (
	logMsgRollbackFailed = "failed to roll back transaction"
	logMsgCommitFailed   = "failed to commit transaction"
)

// LendingTx exposes the ledger and availability operations available
// within a single inventory-store transaction. All reads that feed a
// lending decision take row-level locks so that concurrent transactions
// on the same book serialize.
type LendingTx interface {
	BorrowerExists(ctx context.Context, email string) (bool, error)
	BookForUpdate(ctx context.Context, bookID string) (core.Book, bool, error)
	InsertBorrowing(ctx context.Context, record core.BorrowingRecord) error
	SetBookAvailable(ctx context.Context, bookID string, available bool) error
	OpenBorrowingForUpdate(ctx context.Context, bookID string) (core.BorrowingRecord, bool, error)
	MarkBorrowingReturned(ctx context.Context, recordID uuid.UUID, returnDate core.Date) error
	DeleteAllBorrowings(ctx context.Context) error
	MarkAllBooksAvailable(ctx context.Context) error
}

// WithinTx runs fn inside a single database transaction. The transaction
// is committed when fn returns nil and rolled back on every other exit
// path, including panics, so no partial lending state can ever be
// committed. The scoped connection is released either way.
func (s *Store) WithinTx(ctx context.Context, fn func(tx LendingTx) error) error {
	dbTx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logError(logMsgExecFailed, logAttrError, beginErr.Error())
		return errors.Join(core.ErrStoreUnavailable, beginErr)
	}

	committed := false

	defer func() {
		if committed {
			return
		}
		if rbErr := dbTx.Rollback(ctx); rbErr != nil {
			if s.logger != nil {
				s.logger.Warn(logMsgRollbackFailed, logAttrError, rbErr.Error())
			}
		}
	}()

	if err := fn(&lendingTx{store: s, tx: dbTx}); err != nil {
		return err
	}

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		s.logError(logMsgCommitFailed, logAttrError, commitErr.Error())
		return errors.Join(core.ErrStoreUnavailable, commitErr)
	}

	committed = true

	return nil
}

// lendingTx implements LendingTx on top of an open database transaction.
type lendingTx struct {
	store *Store
	tx    adapters.DBTransaction
}

// BorrowerExists reports whether a borrower is registered under the given email.
func (t *lendingTx) BorrowerExists(ctx context.Context, email string) (bool, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(t.store.borrowerTable).
		Select(colEmail).
		Where(goqu.Ex{colEmail: email}).
		ToSQL()
	if toSQLErr != nil {
		return false, t.store.buildQueryError(toSQLErr)
	}

	rows, err := t.query(ctx, sqlQuery, "borrower exists")
	if err != nil {
		return false, errors.Join(core.ErrStoreUnavailable, err)
	}
	defer t.store.closeRows(rows)

	return rows.Next(), nil
}

// BookForUpdate loads a book and takes a row-level lock on it for the
// duration of the transaction.
func (t *lendingTx) BookForUpdate(ctx context.Context, bookID string) (core.Book, bool, error) {
	sqlQuery, _, toSQLErr := t.store.selectBooksDataset().
		Where(goqu.Ex{colBookID: bookID}).
		ForUpdate(exp.Wait).
		ToSQL()
	if toSQLErr != nil {
		return core.Book{}, false, t.store.buildQueryError(toSQLErr)
	}

	rows, err := t.query(ctx, sqlQuery, "lock book")
	if err != nil {
		return core.Book{}, false, errors.Join(core.ErrStoreUnavailable, err)
	}
	defer t.store.closeRows(rows)

	if !rows.Next() {
		return core.Book{}, false, nil
	}

	var book core.Book

	scanErr := rows.Scan(
		&book.BookID, &book.Title, &book.Author, &book.Genre,
		&book.Publisher, &book.Quantity, &book.Available, &book.Place,
	)
	if scanErr != nil {
		t.store.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return core.Book{}, false, errors.Join(core.ErrStoreUnavailable, scanErr)
	}

	return book, true, nil
}

// InsertBorrowing appends a new record to the borrowing ledger.
func (t *lendingTx) InsertBorrowing(ctx context.Context, record core.BorrowingRecord) error {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Insert(t.store.borrowingTable).
		Rows(goqu.Record{
			colID:            record.ID.String(),
			colBorrowerEmail: record.BorrowerEmail,
			colBookID:        record.BookID,
			colStartDate:     record.StartDate.String(),
			colReturnDate:    record.ReturnDate.String(),
			colIsReturned:    record.IsReturned,
		}).
		ToSQL()
	if toSQLErr != nil {
		return t.store.buildQueryError(toSQLErr)
	}

	if err := t.exec(ctx, sqlQuery, "insert borrowing"); err != nil {
		return errors.Join(core.ErrStoreUnavailable, err)
	}

	return nil
}

// SetBookAvailable flips the availability flag of a book.
func (t *lendingTx) SetBookAvailable(ctx context.Context, bookID string, available bool) error {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Update(t.store.bookTable).
		Set(goqu.Record{colAvailable: available}).
		Where(goqu.Ex{colBookID: bookID}).
		ToSQL()
	if toSQLErr != nil {
		return t.store.buildQueryError(toSQLErr)
	}

	if err := t.exec(ctx, sqlQuery, "set book availability"); err != nil {
		return errors.Join(core.ErrStoreUnavailable, err)
	}

	return nil
}

// OpenBorrowingForUpdate finds the most recent open borrowing record for a
// book and locks it. When several open records exist due to a prior
// invariant violation, the one with the latest start date wins.
func (t *lendingTx) OpenBorrowingForUpdate(ctx context.Context, bookID string) (core.BorrowingRecord, bool, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(t.store.borrowingTable).
		Select(colID, colBorrowerEmail, colBookID, colStartDate, colReturnDate, colIsReturned).
		Where(goqu.Ex{colBookID: bookID, colIsReturned: false}).
		Order(goqu.I(colStartDate).Desc()).
		Limit(1).
		ForUpdate(exp.Wait).
		ToSQL()
	if toSQLErr != nil {
		return core.BorrowingRecord{}, false, t.store.buildQueryError(toSQLErr)
	}

	rows, err := t.query(ctx, sqlQuery, "lock open borrowing")
	if err != nil {
		return core.BorrowingRecord{}, false, errors.Join(core.ErrStoreUnavailable, err)
	}
	defer t.store.closeRows(rows)

	if !rows.Next() {
		return core.BorrowingRecord{}, false, nil
	}

	var (
		rawID      string
		startDate  time.Time
		returnDate time.Time
		record     core.BorrowingRecord
	)

	scanErr := rows.Scan(&rawID, &record.BorrowerEmail, &record.BookID, &startDate, &returnDate, &record.IsReturned)
	if scanErr != nil {
		t.store.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return core.BorrowingRecord{}, false, errors.Join(core.ErrStoreUnavailable, scanErr)
	}

	record.ID = parseRecordID(rawID)
	record.StartDate = core.DateOf(startDate)
	record.ReturnDate = core.DateOf(returnDate)

	return record, true, nil
}

// MarkBorrowingReturned closes a borrowing record with the given return date.
func (t *lendingTx) MarkBorrowingReturned(ctx context.Context, recordID uuid.UUID, returnDate core.Date) error {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Update(t.store.borrowingTable).
		Set(goqu.Record{
			colReturnDate: returnDate.String(),
			colIsReturned: true,
		}).
		Where(goqu.Ex{colID: recordID.String()}).
		ToSQL()
	if toSQLErr != nil {
		return t.store.buildQueryError(toSQLErr)
	}

	if err := t.exec(ctx, sqlQuery, "mark borrowing returned"); err != nil {
		return errors.Join(core.ErrStoreUnavailable, err)
	}

	return nil
}

// DeleteAllBorrowings wipes the borrowing ledger.
func (t *lendingTx) DeleteAllBorrowings(ctx context.Context) error {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Delete(t.store.borrowingTable).
		ToSQL()
	if toSQLErr != nil {
		return t.store.buildQueryError(toSQLErr)
	}

	if err := t.exec(ctx, sqlQuery, "delete all borrowings"); err != nil {
		return errors.Join(core.ErrStoreUnavailable, err)
	}

	return nil
}

// MarkAllBooksAvailable resets the availability flag of every book.
func (t *lendingTx) MarkAllBooksAvailable(ctx context.Context) error {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Update(t.store.bookTable).
		Set(goqu.Record{colAvailable: true}).
		ToSQL()
	if toSQLErr != nil {
		return t.store.buildQueryError(toSQLErr)
	}

	if err := t.exec(ctx, sqlQuery, "mark all books available"); err != nil {
		return errors.Join(core.ErrStoreUnavailable, err)
	}

	return nil
}

func (t *lendingTx) query(ctx context.Context, sqlQuery string, action string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := t.tx.Query(ctx, sqlQuery)
	t.store.logQueryWithDuration(sqlQuery, action, time.Since(start))

	if err != nil {
		t.store.logError(logMsgQueryFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		return nil, err
	}

	return rows, nil
}

func (t *lendingTx) exec(ctx context.Context, sqlQuery string, action string) error {
	start := time.Now()
	_, err := t.tx.Exec(ctx, sqlQuery)
	t.store.logQueryWithDuration(sqlQuery, action, time.Since(start))

	if err != nil {
		t.store.logError(logMsgExecFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		return err
	}

	return nil
}
