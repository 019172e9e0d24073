package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Emin3mUI/library-management-task/core"
)

func Test_ParseDate_Success(t *testing.T) {
	// act
	date, err := core.ParseDate("2025-01-10")

	// assert
	assert.NoError(t, err)
	assert.Equal(t, "2025-01-10", date.String())
}

func Test_ParseDate_Fails_ForMalformedInput(t *testing.T) {
	for _, input := range []string{"", "2025-13-40", "10.01.2025", "2025-01-10T12:00:00Z", "not-a-date"} {
		// act
		_, err := core.ParseDate(input)

		// assert
		assert.ErrorIs(t, err, core.ErrInvalidDate, "input: %q", input)
	}
}

func Test_Date_Ordering(t *testing.T) {
	// arrange
	earlier, _ := core.ParseDate("2025-01-10")
	later, _ := core.ParseDate("2025-01-20")

	// assert
	assert.True(t, earlier.Before(later))
	assert.True(t, later.After(earlier))
	assert.False(t, earlier.Before(earlier))
	assert.True(t, earlier.Equal(earlier))
}

func Test_DateOf_TruncatesTimeOfDay(t *testing.T) {
	// arrange
	instant := time.Date(2025, 1, 10, 23, 59, 59, 0, time.UTC)

	// act
	date := core.DateOf(instant)

	// assert
	assert.Equal(t, "2025-01-10", date.String())
	assert.Equal(t, time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), date.Time())
}

func Test_Date_JSONRoundTrip(t *testing.T) {
	// arrange
	date, _ := core.ParseDate("2025-01-18")

	// act
	encoded, marshalErr := date.MarshalJSON()

	var decoded core.Date
	unmarshalErr := decoded.UnmarshalJSON(encoded)

	// assert
	assert.NoError(t, marshalErr)
	assert.Equal(t, `"2025-01-18"`, string(encoded))
	assert.NoError(t, unmarshalErr)
	assert.True(t, date.Equal(decoded))
}

func Test_Date_UnmarshalJSON_RejectsNonString(t *testing.T) {
	var decoded core.Date

	// act
	err := decoded.UnmarshalJSON([]byte(`20250118`))

	// assert
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}
