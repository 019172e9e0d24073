package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/Emin3mUI/library-management-task/core"
	"github.com/Emin3mUI/library-management-task/inventorystore"
)

// FakeInventoryStore is a mutex-guarded in-memory stand-in for the
// Postgres inventory store. Transactions are fully serialized: WithinTx
// holds the store lock for the duration of fn, mimicking the row-level
// locking of the real store, and writes are staged on a copy that is only
// swapped in when fn succeeds.
type FakeInventoryStore struct {
	mu         sync.Mutex
	books      map[string]core.Book
	borrowers  map[string]core.Borrower
	borrowings []core.BorrowingRecord
	txErr      error
}

// NewFakeInventoryStore creates an empty fake inventory store.
func NewFakeInventoryStore() *FakeInventoryStore {
	return &FakeInventoryStore{
		books:     make(map[string]core.Book),
		borrowers: make(map[string]core.Borrower),
	}
}

// FailTransactionsWith makes every subsequent WithinTx call fail with err
// before reaching fn. Pass nil to restore normal behavior.
func (f *FakeInventoryStore) FailTransactionsWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.txErr = err
}

// SeedBook stores a book directly, bypassing duplicate checks.
func (f *FakeInventoryStore) SeedBook(book core.Book) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books[book.BookID] = book
}

// SeedBorrower registers a borrower directly.
func (f *FakeInventoryStore) SeedBorrower(email string, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrowers[email] = core.Borrower{Email: email, Password: password}
}

// Book returns the stored book and whether it exists.
func (f *FakeInventoryStore) Book(bookID string) (core.Book, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	book, found := f.books[bookID]
	return book, found
}

// Borrowings returns a snapshot of the ledger.
func (f *FakeInventoryStore) Borrowings() []core.BorrowingRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make([]core.BorrowingRecord, len(f.borrowings))
	copy(snapshot, f.borrowings)
	return snapshot
}

// OpenBorrowingCount returns how many open records exist for a book.
func (f *FakeInventoryStore) OpenBorrowingCount(bookID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, record := range f.borrowings {
		if record.BookID == bookID && !record.IsReturned {
			count++
		}
	}

	return count
}

// GetBook implements the collaborator-facing read used by the HTTP layer.
func (f *FakeInventoryStore) GetBook(_ context.Context, bookID string) (core.Book, error) {
	book, found := f.Book(bookID)
	if !found {
		return core.Book{}, core.ErrBookNotFound
	}

	return book, nil
}

// ListBooks returns all stored books.
func (f *FakeInventoryStore) ListBooks(_ context.Context) ([]core.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	books := make([]core.Book, 0, len(f.books))
	for _, book := range f.books {
		books = append(books, book)
	}

	return books, nil
}

// InsertBook stores a new book, rejecting duplicate ids.
func (f *FakeInventoryStore) InsertBook(_ context.Context, book core.Book) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.books[book.BookID]; exists {
		return core.ErrDuplicateBook
	}

	f.books[book.BookID] = book

	return nil
}

// DeleteBook removes a book; deleting an absent book is not an error.
func (f *FakeInventoryStore) DeleteBook(_ context.Context, bookID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.books, bookID)
	return nil
}

// InsertBorrower registers a borrower, rejecting duplicate emails.
func (f *FakeInventoryStore) InsertBorrower(_ context.Context, email string, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.borrowers[email]; exists {
		return core.ErrDuplicateBorrower
	}

	f.borrowers[email] = core.Borrower{Email: email, Password: password}

	return nil
}

// WithinTx runs fn against a staged copy of the store state; the copy
// replaces the live state only when fn succeeds.
func (f *FakeInventoryStore) WithinTx(_ context.Context, fn func(tx inventorystore.LendingTx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.txErr != nil {
		return f.txErr
	}

	staged := &fakeLendingTx{
		books:      make(map[string]core.Book, len(f.books)),
		borrowers:  f.borrowers,
		borrowings: make([]core.BorrowingRecord, len(f.borrowings)),
	}
	for id, book := range f.books {
		staged.books[id] = book
	}
	copy(staged.borrowings, f.borrowings)

	if err := fn(staged); err != nil {
		return err
	}

	f.books = staged.books
	f.borrowings = staged.borrowings

	return nil
}

// fakeLendingTx implements inventorystore.LendingTx over staged state.
type fakeLendingTx struct {
	books      map[string]core.Book
	borrowers  map[string]core.Borrower
	borrowings []core.BorrowingRecord
}

func (t *fakeLendingTx) BorrowerExists(_ context.Context, email string) (bool, error) {
	_, found := t.borrowers[email]
	return found, nil
}

func (t *fakeLendingTx) BookForUpdate(_ context.Context, bookID string) (core.Book, bool, error) {
	book, found := t.books[bookID]
	return book, found, nil
}

func (t *fakeLendingTx) InsertBorrowing(_ context.Context, record core.BorrowingRecord) error {
	t.borrowings = append(t.borrowings, record)
	return nil
}

func (t *fakeLendingTx) SetBookAvailable(_ context.Context, bookID string, available bool) error {
	book, found := t.books[bookID]
	if !found {
		return nil
	}

	book.Available = available
	t.books[bookID] = book

	return nil
}

func (t *fakeLendingTx) OpenBorrowingForUpdate(_ context.Context, bookID string) (core.BorrowingRecord, bool, error) {
	var (
		newest      core.BorrowingRecord
		newestFound bool
	)

	for _, record := range t.borrowings {
		if record.BookID != bookID || record.IsReturned {
			continue
		}

		if !newestFound || record.StartDate.After(newest.StartDate) {
			newest = record
			newestFound = true
		}
	}

	return newest, newestFound, nil
}

func (t *fakeLendingTx) MarkBorrowingReturned(_ context.Context, recordID uuid.UUID, returnDate core.Date) error {
	for i, record := range t.borrowings {
		if record.ID == recordID {
			t.borrowings[i].ReturnDate = returnDate
			t.borrowings[i].IsReturned = true
			return nil
		}
	}

	return nil
}

func (t *fakeLendingTx) DeleteAllBorrowings(_ context.Context) error {
	t.borrowings = nil
	return nil
}

func (t *fakeLendingTx) MarkAllBooksAvailable(_ context.Context) error {
	for id, book := range t.books {
		book.Available = true
		t.books[id] = book
	}

	return nil
}
