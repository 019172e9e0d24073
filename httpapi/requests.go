package httpapi

import (
	"errors"
	"fmt"

	"github.com/Emin3mUI/library-management-task/core"
	"github.com/Emin3mUI/library-management-task/lending"
)

// ErrMissingField marks a request body that omits a required field.
// Handlers map it to 400 before any store or coordinator is reached.
var ErrMissingField = errors.New("missing required field")

func missingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

// createBookRequest uses pointer fields so an absent field is
// distinguishable from a zero value.
type createBookRequest struct {
	BookID    *string `json:"book_id"`
	Title     *string `json:"title"`
	Author    *string `json:"author"`
	Genre     *string `json:"genre"`
	Publisher *string `json:"publisher"`
	Quantity  *int    `json:"quantity"`
	Available *bool   `json:"available"`
	Place     *string `json:"place"`
}

func (r createBookRequest) validate() (core.Book, error) {
	for name, field := range map[string]*string{
		"book_id":   r.BookID,
		"title":     r.Title,
		"author":    r.Author,
		"genre":     r.Genre,
		"publisher": r.Publisher,
		"place":     r.Place,
	} {
		if field == nil {
			return core.Book{}, missingField(name)
		}
	}

	if r.Quantity == nil {
		return core.Book{}, missingField("quantity")
	}

	if r.Available == nil {
		return core.Book{}, missingField("available")
	}

	return core.Book{
		BookID:    *r.BookID,
		Title:     *r.Title,
		Author:    *r.Author,
		Genre:     *r.Genre,
		Publisher: *r.Publisher,
		Quantity:  *r.Quantity,
		Available: *r.Available,
		Place:     *r.Place,
	}, nil
}

type registerBorrowerRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (r registerBorrowerRequest) validate() (email string, password string, err error) {
	if r.Email == nil || *r.Email == "" {
		return "", "", missingField("email")
	}

	if r.Password == nil || *r.Password == "" {
		return "", "", missingField("password")
	}

	return *r.Email, *r.Password, nil
}

type borrowRequest struct {
	BookID        *string `json:"book_id"`
	BorrowerEmail *string `json:"borrower_email"`
	StartDate     *string `json:"start_date"`
	ReturnDate    *string `json:"return_date"`
}

func (r borrowRequest) validate() (lending.BorrowCommand, error) {
	if r.BookID == nil || *r.BookID == "" {
		return lending.BorrowCommand{}, missingField("book_id")
	}

	if r.BorrowerEmail == nil || *r.BorrowerEmail == "" {
		return lending.BorrowCommand{}, missingField("borrower_email")
	}

	if r.StartDate == nil {
		return lending.BorrowCommand{}, missingField("start_date")
	}

	if r.ReturnDate == nil {
		return lending.BorrowCommand{}, missingField("return_date")
	}

	startDate, err := core.ParseDate(*r.StartDate)
	if err != nil {
		return lending.BorrowCommand{}, err
	}

	returnDate, err := core.ParseDate(*r.ReturnDate)
	if err != nil {
		return lending.BorrowCommand{}, err
	}

	return lending.BorrowCommand{
		BookID:        *r.BookID,
		BorrowerEmail: *r.BorrowerEmail,
		StartDate:     startDate,
		ReturnDate:    returnDate,
	}, nil
}

type returnRequest struct {
	BookID     *string `json:"book_id"`
	ReturnDate *string `json:"return_date"`
}

func (r returnRequest) validate() (lending.ReturnCommand, error) {
	if r.BookID == nil || *r.BookID == "" {
		return lending.ReturnCommand{}, missingField("book_id")
	}

	if r.ReturnDate == nil {
		return lending.ReturnCommand{}, missingField("return_date")
	}

	returnDate, err := core.ParseDate(*r.ReturnDate)
	if err != nil {
		return lending.ReturnCommand{}, err
	}

	return lending.ReturnCommand{BookID: *r.BookID, ReturnDate: returnDate}, nil
}
