// Package dateutil handles the calendar-date strings used throughout the
// engine. Dates are ISO (YYYY-MM-DD) strings so they are stable map keys and
// sort lexicographically in chronological order.
package dateutil

import (
	"errors"
	"strings"
	"time"
)

// Layout is the wire and storage format for calendar dates.
const Layout = "2006-01-02"

// ErrInvalidDate reports an unparsable date input.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Parse validates a date string and returns its canonical form.
func Parse(s string) (string, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrInvalidDate
	}
	return t.Format(Layout), nil
}

// ParseTime validates a date string and returns it as a time.Time (UTC midnight).
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Format renders a time as a canonical date string.
func Format(t time.Time) string {
	return t.Format(Layout)
}
