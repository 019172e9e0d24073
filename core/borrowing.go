package core

import "github.com/google/uuid"

// BorrowingRecord is one entry in the borrowing ledger: who borrowed
// what, and when. The ledger is the single source of truth for lending
// state. A record with IsReturned == false is an open record; at most one
// open record should exist per book at a time, enforced by the lending
// coordinator rather than the store.
type BorrowingRecord struct {
	ID            uuid.UUID `json:"id"`
	BorrowerEmail string    `json:"borrower_email"`
	BookID        string    `json:"book_id"`
	StartDate     Date      `json:"start_date"`
	ReturnDate    Date      `json:"return_date"`
	IsReturned    bool      `json:"is_returned"`
}

// NewBorrowingRecord creates an open borrowing record for a fresh borrow.
func NewBorrowingRecord(borrowerEmail string, bookID string, startDate Date, returnDate Date) BorrowingRecord {
	return BorrowingRecord{
		ID:            uuid.New(),
		BorrowerEmail: borrowerEmail,
		BookID:        bookID,
		StartDate:     startDate,
		ReturnDate:    returnDate,
		IsReturned:    false,
	}
}

// BorrowedEdge is the non-authoritative mirror of a BorrowingRecord in the
// relationship store: Borrower --BORROWED{...}--> Book. It is derived from
// the ledger and must never be consulted for legality checks.
type BorrowedEdge struct {
	BorrowerEmail string `json:"borrower_email"`
	BookID        string `json:"book_id"`
	StartDate     Date   `json:"start_date"`
	ReturnDate    Date   `json:"return_date"`
	IsReturned    bool   `json:"is_returned"`
}

// EdgeFromRecord derives the mirror edge for a borrowing record.
func EdgeFromRecord(record BorrowingRecord) BorrowedEdge {
	return BorrowedEdge{
		BorrowerEmail: record.BorrowerEmail,
		BookID:        record.BookID,
		StartDate:     record.StartDate,
		ReturnDate:    record.ReturnDate,
		IsReturned:    record.IsReturned,
	}
}
