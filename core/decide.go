package core

// BorrowState is the state relevant to a borrow decision, projected from
// the inventory store inside the borrow transaction.
type BorrowState struct {
	BorrowerExists bool
	BookFound      bool
	BookAvailable  bool
}

// ValidateBorrowDates checks the date preconditions of a borrow request.
// This is the first gate: it must pass before any store state is consulted.
//
// Rules, in order:
//
//	ERROR: ErrInvalidDate if either date is missing
//	ERROR: ErrPastStartDate if startDate < today (startDate == today is legal)
//	ERROR: ErrInvalidRange if returnDate < startDate (equal dates are legal)
func ValidateBorrowDates(startDate Date, returnDate Date, today Date) error {
	if startDate.IsZero() || returnDate.IsZero() {
		return ErrInvalidDate
	}

	if startDate.Before(today) {
		return ErrPastStartDate
	}

	if returnDate.Before(startDate) {
		return ErrInvalidRange
	}

	return nil
}

// DecideBorrow judges whether a borrow is legal in the given state.
// Pure function; the first violated rule wins.
//
// Rules, in order:
//
//	ERROR: ErrUnknownBorrower if the borrower is not registered
//	ERROR: ErrBookNotFound if the book does not exist
//	ERROR: ErrBookUnavailable if the book's availability flag is false
func DecideBorrow(state BorrowState) error {
	if !state.BorrowerExists {
		return ErrUnknownBorrower
	}

	if !state.BookFound {
		return ErrBookNotFound
	}

	if !state.BookAvailable {
		return ErrBookUnavailable
	}

	return nil
}

// DecideReturn judges whether an open borrowing record may be closed with
// the given return date.
//
//	ERROR: ErrInvalidRange if returnDate < record.StartDate
func DecideReturn(record BorrowingRecord, returnDate Date) error {
	if returnDate.IsZero() {
		return ErrInvalidDate
	}

	if returnDate.Before(record.StartDate) {
		return ErrInvalidRange
	}

	return nil
}
