package core

import (
	"bytes"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component. Transactions,
// deductions, hire dates and project windows are all plain dates.
type Date struct {
	time.Time
}

// NewDate builds a date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// String formats as "YYYY-MM-DD".
func (d Date) String() string { return d.Format(dateLayout) }

// OnOrAfter reports d >= other.
func (d Date) OnOrAfter(other Date) bool { return !d.Before(other.Time) }

// OnOrBefore reports d <= other.
func (d Date) OnOrBefore(other Date) bool { return !d.After(other.Time) }

// MarshalJSON emits "YYYY-MM-DD", or null for the zero date.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(bytes.Trim(b, `"`)))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WholeMonthsBetween counts full calendar months from a to b, zero when b
// precedes a. A partial trailing month does not count: Mar 20 to Sep 15 is
// five months, Mar 20 to Sep 20 is six.
func WholeMonthsBetween(a, b Date) int {
	if b.Before(a.Time) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
