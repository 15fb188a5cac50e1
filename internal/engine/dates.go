package engine

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the civil calendar date format used for every localDate.
const DateLayout = "2006-01-02"

// LocalDate formats t as a civil date in t's own location.
func LocalDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a civil date. The result is midnight UTC on that day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// AddDays shifts a civil date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}

// Weekday returns the civil weekday of date (0=Sunday).
func Weekday(date string) (time.Weekday, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return t.Weekday(), nil
}
