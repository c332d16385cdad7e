package domain

import (
	"fmt"
	"time"
)

// dateLayout is the wire format for deadlines.
const dateLayout = "2006-01-02"

// Date is a calendar date with day granularity. The embedded time.Time is
// always midnight UTC so two Dates naming the same day compare equal.
type Date struct {
	time.Time
}

// NewDate builds a Date for the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day in the instant's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// DaysFrom returns the number of whole calendar days between the instant's
// day and d. Zero means d is "today" relative to the instant, negative means
// the date has passed.
func (d Date) DaysFrom(t time.Time) int {
	return int(d.Sub(DateOf(t).Time).Hours() / 24)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts only the "YYYY-MM-DD" form.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	t, err := time.ParseInLocation(dateLayout, s[1:len(s)-1], time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", s, err)
	}
	d.Time = t
	return nil
}
