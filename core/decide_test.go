package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Emin3mUI/library-management-task/core"
)

func mustDate(t *testing.T, value string) core.Date {
	t.Helper()

	date, err := core.ParseDate(value)
	if err != nil {
		t.Fatalf("invalid test date %q: %v", value, err)
	}

	return date
}

func Test_ValidateBorrowDates_Success_WhenStartIsToday(t *testing.T) {
	// arrange
	today := mustDate(t, "2025-01-10")

	// act
	err := core.ValidateBorrowDates(today, mustDate(t, "2025-01-20"), today)

	// assert
	assert.NoError(t, err)
}

func Test_ValidateBorrowDates_Success_WhenReturnEqualsStart(t *testing.T) {
	// arrange
	today := mustDate(t, "2025-01-10")
	start := mustDate(t, "2025-01-12")

	// act
	err := core.ValidateBorrowDates(start, start, today)

	// assert
	assert.NoError(t, err)
}

func Test_ValidateBorrowDates_Fails_WhenStartIsInThePast(t *testing.T) {
	// arrange
	today := mustDate(t, "2025-01-10")

	// act
	err := core.ValidateBorrowDates(mustDate(t, "2020-01-01"), mustDate(t, "2025-01-20"), today)

	// assert
	assert.ErrorIs(t, err, core.ErrPastStartDate)
}

func Test_ValidateBorrowDates_Fails_WhenReturnBeforeStart(t *testing.T) {
	// arrange
	today := mustDate(t, "2025-01-10")

	// act
	err := core.ValidateBorrowDates(mustDate(t, "2025-01-20"), mustDate(t, "2025-01-10"), today)

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

func Test_ValidateBorrowDates_Fails_WhenDatesMissing(t *testing.T) {
	// act
	err := core.ValidateBorrowDates(core.Date{}, core.Date{}, mustDate(t, "2025-01-10"))

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func Test_DecideBorrow_Success_WhenAllPreconditionsMet(t *testing.T) {
	// act
	err := core.DecideBorrow(core.BorrowState{BorrowerExists: true, BookFound: true, BookAvailable: true})

	// assert
	assert.NoError(t, err)
}

func Test_DecideBorrow_Fails_WhenBorrowerUnknown(t *testing.T) {
	// arrange - borrower check must win even though the book is also missing
	state := core.BorrowState{BorrowerExists: false, BookFound: false, BookAvailable: false}

	// act
	err := core.DecideBorrow(state)

	// assert
	assert.ErrorIs(t, err, core.ErrUnknownBorrower)
}

func Test_DecideBorrow_Fails_WhenBookNotFound(t *testing.T) {
	// act
	err := core.DecideBorrow(core.BorrowState{BorrowerExists: true, BookFound: false})

	// assert
	assert.ErrorIs(t, err, core.ErrBookNotFound)
}

func Test_DecideBorrow_Fails_WhenBookUnavailable(t *testing.T) {
	// act
	err := core.DecideBorrow(core.BorrowState{BorrowerExists: true, BookFound: true, BookAvailable: false})

	// assert
	assert.ErrorIs(t, err, core.ErrBookUnavailable)
}

func Test_DecideReturn_Success_WhenReturnEqualsStart(t *testing.T) {
	// arrange
	record := core.NewBorrowingRecord("a@x.com", "B1", mustDate(t, "2025-01-10"), mustDate(t, "2025-01-20"))

	// act
	err := core.DecideReturn(record, mustDate(t, "2025-01-10"))

	// assert
	assert.NoError(t, err)
}

func Test_DecideReturn_Fails_WhenReturnBeforeStart(t *testing.T) {
	// arrange
	record := core.NewBorrowingRecord("a@x.com", "B1", mustDate(t, "2025-01-10"), mustDate(t, "2025-01-20"))

	// act
	err := core.DecideReturn(record, mustDate(t, "2025-01-09"))

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

func Test_EdgeFromRecord_MirrorsAllFields(t *testing.T) {
	// arrange
	record := core.NewBorrowingRecord("a@x.com", "B1", mustDate(t, "2025-01-10"), mustDate(t, "2025-01-20"))

	// act
	edge := core.EdgeFromRecord(record)

	// assert
	assert.Equal(t, record.BorrowerEmail, edge.BorrowerEmail)
	assert.Equal(t, record.BookID, edge.BookID)
	assert.True(t, record.StartDate.Equal(edge.StartDate))
	assert.True(t, record.ReturnDate.Equal(edge.ReturnDate))
	assert.False(t, edge.IsReturned)
}

func Test_IsValidation_ClassifiesTaxonomy(t *testing.T) {
	assert.True(t, core.IsValidation(core.ErrBookUnavailable))
	assert.True(t, core.IsValidation(core.ErrNoActiveBorrow))
	assert.False(t, core.IsValidation(core.ErrStoreUnavailable))
}
