package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC calendar day. The day
// boundary policy is fixed at UTC; client-local formatting is never trusted
// beyond the literal day it names.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be formatted as %s", ErrValidation, DateLayout)
	}
	return parsed, nil
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(ts time.Time) time.Time {
	year, month, day := ts.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders a calendar day in wire format.
func FormatDate(day time.Time) string {
	return day.UTC().Format(DateLayout)
}
