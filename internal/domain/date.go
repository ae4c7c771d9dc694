package domain

import (
	"fmt"
	"strings"
	"time"
)

const DateFormat = "2006-01-02"

// Date is a calendar day. It is always held as UTC midnight and travels as
// "YYYY-MM-DD" in JSON.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected %s: %w", s, DateFormat, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateFormat)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(DateFormat) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is a closed interval of calendar days.
type DateRange struct {
	Start Date
	End   Date
}

func NewDateRange(start, end Date) DateRange {
	return DateRange{Start: DateOf(start.Time), End: DateOf(end.Time)}
}

func (r DateRange) Valid() bool {
	return !r.Start.After(r.End.Time)
}

// Overlaps reports whether both closed intervals share at least one day. A
// range ending on day X overlaps one starting on day X.
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.Start.After(other.End.Time) && !other.Start.After(r.End.Time)
}

func (r DateRange) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start, r.End)
}
