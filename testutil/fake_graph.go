package testutil

import (
	"context"
	"sync"

	"github.com/Emin3mUI/library-management-task/core"
)

// ReturnedMark records one MarkEdgeReturned call observed by the fake.
type ReturnedMark struct {
	BorrowerEmail string
	BookID        string
	ReturnDate    core.Date
}

// FakeGraphStore is an in-memory stand-in for the Neo4j relationship
// store. It records every mirror write and can be told to fail a number
// of calls first, to exercise the mirror worker's retry behavior.
type FakeGraphStore struct {
	mu            sync.Mutex
	edges         []core.BorrowedEdge
	returnedMarks []ReturnedMark
	wipeCalls     int
	failuresLeft  int
	failWith      error
	books         []core.Book
	borrowed      map[string][]core.Book
}

// NewFakeGraphStore creates an empty fake relationship store.
func NewFakeGraphStore() *FakeGraphStore {
	return &FakeGraphStore{borrowed: make(map[string][]core.Book)}
}

// FailNextCalls makes the next n mirror writes fail with err before
// operating normally again.
func (f *FakeGraphStore) FailNextCalls(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failuresLeft = n
	f.failWith = err
}

// SeedBooks sets the books returned by Books.
func (f *FakeGraphStore) SeedBooks(books []core.Book) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.books = books
}

// SeedBorrowed sets the books returned by BooksBorrowedBy for an email.
func (f *FakeGraphStore) SeedBorrowed(email string, books []core.Book) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.borrowed[email] = books
}

// Edges returns a snapshot of the mirrored BORROWED edges.
func (f *FakeGraphStore) Edges() []core.BorrowedEdge {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make([]core.BorrowedEdge, len(f.edges))
	copy(snapshot, f.edges)
	return snapshot
}

// ReturnedMarks returns a snapshot of the observed return updates.
func (f *FakeGraphStore) ReturnedMarks() []ReturnedMark {
	f.mu.Lock()
	defer f.mu.Unlock()
	snapshot := make([]ReturnedMark, len(f.returnedMarks))
	copy(snapshot, f.returnedMarks)
	return snapshot
}

// WipeCalls returns how often DeleteAllBorrowedEdges was called.
func (f *FakeGraphStore) WipeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wipeCalls
}

func (f *FakeGraphStore) maybeFail() error {
	if f.failuresLeft > 0 {
		f.failuresLeft--
		return f.failWith
	}

	return nil
}

// CreateBorrowedEdge records a mirrored borrowing.
func (f *FakeGraphStore) CreateBorrowedEdge(_ context.Context, edge core.BorrowedEdge) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.maybeFail(); err != nil {
		return err
	}

	f.edges = append(f.edges, edge)

	return nil
}

// MarkEdgeReturned records a mirrored return.
func (f *FakeGraphStore) MarkEdgeReturned(_ context.Context, borrowerEmail string, bookID string, returnDate core.Date) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.maybeFail(); err != nil {
		return err
	}

	f.returnedMarks = append(f.returnedMarks, ReturnedMark{
		BorrowerEmail: borrowerEmail,
		BookID:        bookID,
		ReturnDate:    returnDate,
	})

	return nil
}

// DeleteAllBorrowedEdges records a mirrored wipe.
func (f *FakeGraphStore) DeleteAllBorrowedEdges(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.maybeFail(); err != nil {
		return err
	}

	f.edges = nil
	f.wipeCalls++

	return nil
}

// Books returns the seeded graph books.
func (f *FakeGraphStore) Books(_ context.Context) ([]core.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.maybeFail(); err != nil {
		return nil, err
	}

	return f.books, nil
}

// BooksBorrowedBy returns the seeded books for an email.
func (f *FakeGraphStore) BooksBorrowedBy(_ context.Context, email string) ([]core.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.maybeFail(); err != nil {
		return nil, err
	}

	return f.borrowed[email], nil
}
