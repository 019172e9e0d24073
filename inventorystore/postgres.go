package inventorystore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/Emin3mUI/library-management-task/core"
	"github.com/Emin3mUI/library-management-task/inventorystore/internal/adapters"
)

const (
	defaultBookTableName      = "book"
	defaultBorrowerTableName  = "borrower"
	defaultBorrowingTableName = "borrowing"

	logMsgBuildQueryFailed = "failed to build sql query"
	logMsgQueryFailed      = "database query execution failed"
	logMsgExecFailed       = "database execution failed"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgSQLExecuted      = "executed sql for: "
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrDurationMS      = "duration_ms"

	colBookID        = "book_id"
	colTitle         = "title"
	colAuthor        = "author"
	colGenre         = "genre"
	colPublisher     = "publisher"
	colQuantity      = "quantity"
	colAvailable     = "available"
	colPlace         = "place"
	colEmail         = "email"
	colPassword      = "password"
	colID            = "id"
	colBorrowerEmail = "borrower_email"
	colStartDate     = "start_date"
	colReturnDate    = "return_date"
	colIsReturned    = "is_returned"

	dialectPostgres = "postgres"

	pgUniqueViolationCode = "23505"
)

// ErrNilDatabaseConnection is returned when a nil connection is supplied to a constructor.
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")

// Logger interface for SQL query logging, warnings, and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Store is the Postgres-backed inventory store holding books, borrowers
// and the borrowing ledger. It is safe for concurrent use; connections are
// pooled by the underlying adapter.
type Store struct {
	db             adapters.DBAdapter
	bookTable      string
	borrowerTable  string
	borrowingTable string
	logger         Logger
}

// NewStoreFromPGXPool creates a new Store using a pgx pool with optional configuration.
func NewStoreFromPGXPool(pool *pgxpool.Pool, options ...Option) (*Store, error) {
	if pool == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(pool), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	store := &Store{
		db:             db,
		bookTable:      defaultBookTableName,
		borrowerTable:  defaultBorrowerTableName,
		borrowingTable: defaultBorrowingTableName,
	}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// GetBook returns the book with the given id, or core.ErrBookNotFound.
func (s *Store) GetBook(ctx context.Context, bookID string) (core.Book, error) {
	sqlQuery, _, toSQLErr := s.selectBooksDataset().
		Where(goqu.Ex{colBookID: bookID}).
		ToSQL()
	if toSQLErr != nil {
		return core.Book{}, s.buildQueryError(toSQLErr)
	}

	books, err := s.queryBooks(ctx, sqlQuery)
	if err != nil {
		return core.Book{}, err
	}

	if len(books) == 0 {
		return core.Book{}, core.ErrBookNotFound
	}

	return books[0], nil
}

// ListBooks returns all books ordered by their id.
func (s *Store) ListBooks(ctx context.Context) ([]core.Book, error) {
	sqlQuery, _, toSQLErr := s.selectBooksDataset().
		Order(goqu.I(colBookID).Asc()).
		ToSQL()
	if toSQLErr != nil {
		return nil, s.buildQueryError(toSQLErr)
	}

	return s.queryBooks(ctx, sqlQuery)
}

// InsertBook stores a new book. A duplicate key yields core.ErrDuplicateBook.
func (s *Store) InsertBook(ctx context.Context, book core.Book) error {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Insert(s.bookTable).
		Rows(goqu.Record{
			colBookID:    book.BookID,
			colTitle:     book.Title,
			colAuthor:    book.Author,
			colGenre:     book.Genre,
			colPublisher: book.Publisher,
			colQuantity:  book.Quantity,
			colAvailable: book.Available,
			colPlace:     book.Place,
		}).
		ToSQL()
	if toSQLErr != nil {
		return s.buildQueryError(toSQLErr)
	}

	if _, err := s.exec(ctx, sqlQuery, "insert book"); err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateBook
		}

		return errors.Join(core.ErrStoreUnavailable, err)
	}

	return nil
}

// DeleteBook removes the book with the given id. Deleting an absent book is not an error.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Delete(s.bookTable).
		Where(goqu.Ex{colBookID: bookID}).
		ToSQL()
	if toSQLErr != nil {
		return s.buildQueryError(toSQLErr)
	}

	if _, err := s.exec(ctx, sqlQuery, "delete book"); err != nil {
		return errors.Join(core.ErrStoreUnavailable, err)
	}

	return nil
}

// GetBorrower returns the borrower registered under the given email,
// or core.ErrUnknownBorrower.
func (s *Store) GetBorrower(ctx context.Context, email string) (core.Borrower, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(s.borrowerTable).
		Select(colEmail, colPassword).
		Where(goqu.Ex{colEmail: email}).
		ToSQL()
	if toSQLErr != nil {
		return core.Borrower{}, s.buildQueryError(toSQLErr)
	}

	rows, err := s.query(ctx, sqlQuery, "get borrower")
	if err != nil {
		return core.Borrower{}, errors.Join(core.ErrStoreUnavailable, err)
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return core.Borrower{}, core.ErrUnknownBorrower
	}

	var borrower core.Borrower
	if scanErr := rows.Scan(&borrower.Email, &borrower.Password); scanErr != nil {
		s.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
		return core.Borrower{}, errors.Join(core.ErrStoreUnavailable, scanErr)
	}

	return borrower, nil
}

// InsertBorrower registers a new borrower. The password is stored as a
// bcrypt hash, never as plaintext. A duplicate email yields
// core.ErrDuplicateBorrower.
func (s *Store) InsertBorrower(ctx context.Context, email string, password string) error {
	hash, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if hashErr != nil {
		return errors.Join(core.ErrStoreUnavailable, hashErr)
	}

	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Insert(s.borrowerTable).
		Rows(goqu.Record{
			colEmail:    email,
			colPassword: string(hash),
		}).
		ToSQL()
	if toSQLErr != nil {
		return s.buildQueryError(toSQLErr)
	}

	if _, err := s.exec(ctx, sqlQuery, "insert borrower"); err != nil {
		if isUniqueViolation(err) {
			return core.ErrDuplicateBorrower
		}

		return errors.Join(core.ErrStoreUnavailable, err)
	}

	return nil
}

func (s *Store) selectBooksDataset() *goqu.SelectDataset {
	return goqu.Dialect(dialectPostgres).
		From(s.bookTable).
		Select(colBookID, colTitle, colAuthor, colGenre, colPublisher, colQuantity, colAvailable, colPlace)
}

func (s *Store) queryBooks(ctx context.Context, sqlQuery string) ([]core.Book, error) {
	rows, err := s.query(ctx, sqlQuery, "select books")
	if err != nil {
		return nil, errors.Join(core.ErrStoreUnavailable, err)
	}
	defer s.closeRows(rows)

	books := make([]core.Book, 0)

	for rows.Next() {
		var book core.Book

		scanErr := rows.Scan(
			&book.BookID, &book.Title, &book.Author, &book.Genre,
			&book.Publisher, &book.Quantity, &book.Available, &book.Place,
		)
		if scanErr != nil {
			s.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(core.ErrStoreUnavailable, scanErr)
		}

		books = append(books, book)
	}

	return books, nil
}

func (s *Store) query(ctx context.Context, sqlQuery string, action string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := s.db.Query(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, action, time.Since(start))

	if err != nil {
		s.logError(logMsgQueryFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		return nil, err
	}

	return rows, nil
}

func (s *Store) exec(ctx context.Context, sqlQuery string, action string) (int64, error) {
	start := time.Now()
	result, err := s.db.Exec(ctx, sqlQuery)
	s.logQueryWithDuration(sqlQuery, action, time.Since(start))

	if err != nil {
		s.logError(logMsgExecFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		return 0, err
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		return 0, rowsAffectedErr
	}

	return rowsAffected, nil
}

func (s *Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

func (s *Store) buildQueryError(err error) error {
	s.logError(logMsgBuildQueryFailed, logAttrError, err.Error())
	return errors.Join(core.ErrStoreUnavailable, err)
}

// logQueryWithDuration logs SQL queries with execution time at debug level if the logger is configured.
func (s *Store) logQueryWithDuration(sqlQuery string, action string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, duration.Milliseconds(), logAttrQuery, sqlQuery)
	}
}

func (s *Store) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}

// isUniqueViolation reports whether err is a primary key / unique
// constraint violation, for either the pgx or the lib/pq driver.
func isUniqueViolation(err error) bool {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code == pgUniqueViolationCode
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolationCode
	}

	return false
}

func parseRecordID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}

	return id
}
