package core

import (
	"errors"
	"time"
)

const isoDateLayout = "2006-01-02"

// Date is a calendar date without a time-of-day component.
// It is exchanged on the wire as an ISO "YYYY-MM-DD" string and compared
// at date granularity only.
type Date struct {
	t time.Time
}

// ParseDate parses an ISO "YYYY-MM-DD" string into a Date.
func ParseDate(value string) (Date, error) {
	parsed, err := time.Parse(isoDateLayout, value)
	if err != nil {
		return Date{}, errors.Join(ErrInvalidDate, err)
	}

	return Date{t: parsed}, nil
}

// DateOf truncates a time.Time to its calendar date in UTC.
func DateOf(t time.Time) Date {
	year, month, day := t.UTC().Date()
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date according to the server clock.
func Today() Date {
	return DateOf(time.Now())
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly later than other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns the date as a time.Time at UTC midnight.
func (d Date) Time() time.Time {
	return d.t
}

// String returns the ISO "YYYY-MM-DD" representation.
func (d Date) String() string {
	return d.t.Format(isoDateLayout)
}

// MarshalJSON encodes the date as an ISO "YYYY-MM-DD" JSON string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes an ISO "YYYY-MM-DD" JSON string.
func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return ErrInvalidDate
	}

	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
