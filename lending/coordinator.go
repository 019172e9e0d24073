package lending

import (
	"context"
	"errors"

	"github.com/Emin3mUI/library-management-task/core"
	"github.com/Emin3mUI/library-management-task/inventorystore"
)

const (
	logMsgBookBorrowed      = "book borrowed"
	logMsgBookReturned      = "book returned"
	logMsgBorrowingsReset   = "all borrowings reset"
	logAttrRecordID         = "record_id"
	logAttrCoordBookID      = "book_id"
	logAttrCoordBorrower    = "borrower_email"
	logAttrCoordStartDate   = "start_date"
	logAttrCoordReturnDate  = "return_date"
)

var (
	// ErrNilInventoryStore is returned when a nil inventory store is supplied.
	ErrNilInventoryStore = errors.New("inventory store must not be nil")

	// ErrNilMirrorer is returned when a nil mirrorer is supplied.
	ErrNilMirrorer = errors.New("mirrorer must not be nil")

	// ErrNilRelationshipStore is returned when a nil relationship store is supplied.
	ErrNilRelationshipStore = errors.New("relationship store must not be nil")

	// ErrInvalidQueueSize is returned when a non-positive mirror queue size is supplied.
	ErrInvalidQueueSize = errors.New("mirror queue size must be positive")

	// ErrInvalidTaskTimeout is returned when a non-positive mirror task timeout is supplied.
	ErrInvalidTaskTimeout = errors.New("mirror task timeout must be positive")
)

// Logger interface for operational logging and error reporting.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// InventoryStore defines the interface the coordinator needs from the
// primary store. All lending effects run inside a WithinTx closure so the
// precondition checks and writes commit or roll back together.
type InventoryStore interface {
	WithinTx(ctx context.Context, fn func(tx inventorystore.LendingTx) error) error
}

// BorrowCommand represents the intent to borrow a book.
type BorrowCommand struct {
	BookID        string
	BorrowerEmail string
	StartDate     core.Date
	ReturnDate    core.Date
}

// ReturnCommand represents the intent to return a book. The borrower is
// deliberately absent: the open ledger record resolves them implicitly.
type ReturnCommand struct {
	BookID     string
	ReturnDate core.Date
}

// Coordinator validates and executes borrow/return transitions,
// orchestrating writes to the borrowing ledger, the book availability
// flag and the relationship-store mirror, in that order.
type Coordinator struct {
	inventory InventoryStore
	mirror    *Mirrorer
	logger    Logger
	today     func() core.Date
}

// CoordinatorOption defines a functional option for configuring a Coordinator.
type CoordinatorOption func(*Coordinator) error

// WithLogger sets the logger for the Coordinator.
func WithLogger(logger Logger) CoordinatorOption {
	return func(c *Coordinator) error {
		c.logger = logger
		return nil
	}
}

// WithClock overrides the source of "today" used for the past-start-date
// check. Intended for tests.
func WithClock(today func() core.Date) CoordinatorOption {
	return func(c *Coordinator) error {
		c.today = today
		return nil
	}
}

// NewCoordinator creates a Coordinator with optional configuration.
func NewCoordinator(inventory InventoryStore, mirror *Mirrorer, options ...CoordinatorOption) (*Coordinator, error) {
	if inventory == nil {
		return nil, ErrNilInventoryStore
	}

	if mirror == nil {
		return nil, ErrNilMirrorer
	}

	coordinator := &Coordinator{
		inventory: inventory,
		mirror:    mirror,
		today:     core.Today,
	}

	for _, option := range options {
		if err := option(coordinator); err != nil {
			return nil, err
		}
	}

	return coordinator, nil
}

// Borrow validates and executes a borrow transition.
//
// Preconditions are checked in a fixed order and the first failure wins:
// valid dates, start date not in the past, return date not before start
// date, registered borrower, existing book, available book. The ledger
// insert and the availability flip commit atomically; the book row is
// locked for the duration so concurrent borrows of the last copy cannot
// both succeed. The mirror write is enqueued after commit and can never
// fail the borrow.
func (c *Coordinator) Borrow(ctx context.Context, command BorrowCommand) (core.BorrowingRecord, error) {
	if err := core.ValidateBorrowDates(command.StartDate, command.ReturnDate, c.today()); err != nil {
		return core.BorrowingRecord{}, err
	}

	var record core.BorrowingRecord

	txErr := c.inventory.WithinTx(ctx, func(tx inventorystore.LendingTx) error {
		borrowerExists, err := tx.BorrowerExists(ctx, command.BorrowerEmail)
		if err != nil {
			return err
		}

		book, bookFound, err := tx.BookForUpdate(ctx, command.BookID)
		if err != nil {
			return err
		}

		decideErr := core.DecideBorrow(core.BorrowState{
			BorrowerExists: borrowerExists,
			BookFound:      bookFound,
			BookAvailable:  bookFound && book.Available,
		})
		if decideErr != nil {
			return decideErr
		}

		record = core.NewBorrowingRecord(command.BorrowerEmail, command.BookID, command.StartDate, command.ReturnDate)

		if err := tx.InsertBorrowing(ctx, record); err != nil {
			return err
		}

		return tx.SetBookAvailable(ctx, command.BookID, false)
	})
	if txErr != nil {
		return core.BorrowingRecord{}, txErr
	}

	c.mirror.EnqueueBorrowed(record)

	c.logInfo(logMsgBookBorrowed,
		logAttrRecordID, record.ID.String(),
		logAttrCoordBookID, record.BookID,
		logAttrCoordBorrower, record.BorrowerEmail,
		logAttrCoordStartDate, record.StartDate.String(),
		logAttrCoordReturnDate, record.ReturnDate.String(),
	)

	return record, nil
}

// Return validates and executes a return transition.
//
// The book's most recent open ledger record identifies the borrowing;
// core.ErrNoActiveBorrow is returned when none exists. Closing the record
// and flipping the availability flag commit atomically. The mirror update
// is enqueued after commit with the borrower resolved from the record.
func (c *Coordinator) Return(ctx context.Context, command ReturnCommand) error {
	if command.ReturnDate.IsZero() {
		return core.ErrInvalidDate
	}

	var closedRecord core.BorrowingRecord

	txErr := c.inventory.WithinTx(ctx, func(tx inventorystore.LendingTx) error {
		record, found, err := tx.OpenBorrowingForUpdate(ctx, command.BookID)
		if err != nil {
			return err
		}

		if !found {
			return core.ErrNoActiveBorrow
		}

		if decideErr := core.DecideReturn(record, command.ReturnDate); decideErr != nil {
			return decideErr
		}

		if err := tx.MarkBorrowingReturned(ctx, record.ID, command.ReturnDate); err != nil {
			return err
		}

		if err := tx.SetBookAvailable(ctx, command.BookID, true); err != nil {
			return err
		}

		closedRecord = record

		return nil
	})
	if txErr != nil {
		return txErr
	}

	c.mirror.EnqueueReturned(closedRecord.BorrowerEmail, command.BookID, command.ReturnDate)

	c.logInfo(logMsgBookReturned,
		logAttrRecordID, closedRecord.ID.String(),
		logAttrCoordBookID, command.BookID,
		logAttrCoordBorrower, closedRecord.BorrowerEmail,
		logAttrCoordReturnDate, command.ReturnDate.String(),
	)

	return nil
}

// ResetAllBorrowings deletes every borrowing record and marks every book
// available, atomically, then schedules the wipe of all BORROWED edges.
// The graph wipe is best effort: an unreachable relationship store does
// not fail the reset. The operation is idempotent.
func (c *Coordinator) ResetAllBorrowings(ctx context.Context) error {
	txErr := c.inventory.WithinTx(ctx, func(tx inventorystore.LendingTx) error {
		if err := tx.DeleteAllBorrowings(ctx); err != nil {
			return err
		}

		return tx.MarkAllBooksAvailable(ctx)
	})
	if txErr != nil {
		return txErr
	}

	c.mirror.EnqueueWipe()

	c.logInfo(logMsgBorrowingsReset)

	return nil
}

func (c *Coordinator) logInfo(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Info(msg, args...)
	}
}
