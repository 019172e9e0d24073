package core

import "errors"

// Validation errors: the request was understood but is not legal in the
// current state. They are surfaced to the caller as rejections and must
// never be retried.
var (
	ErrInvalidDate       = errors.New("date must be a valid calendar date in YYYY-MM-DD format")
	ErrPastStartDate     = errors.New("start date must not be in the past")
	ErrInvalidRange      = errors.New("return date must not be before start date")
	ErrUnknownBorrower   = errors.New("borrower is not registered")
	ErrBookNotFound      = errors.New("book does not exist")
	ErrBookUnavailable   = errors.New("book is not available")
	ErrNoActiveBorrow    = errors.New("no active borrowing exists for this book")
	ErrDuplicateBook     = errors.New("a book with this id already exists")
	ErrDuplicateBorrower = errors.New("a borrower with this email already exists")
)

// ErrStoreUnavailable marks primary-store faults. The enclosing transaction
// guarantees no partial state was committed, so callers may safely retry.
var ErrStoreUnavailable = errors.New("inventory store unavailable")

// IsValidation reports whether err belongs to the validation class of the
// error taxonomy, as opposed to a store fault.
func IsValidation(err error) bool {
	for _, sentinel := range []error{
		ErrInvalidDate,
		ErrPastStartDate,
		ErrInvalidRange,
		ErrUnknownBorrower,
		ErrBookNotFound,
		ErrBookUnavailable,
		ErrNoActiveBorrow,
		ErrDuplicateBook,
		ErrDuplicateBorrower,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}

	return false
}
