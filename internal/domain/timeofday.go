package domain

import (
	"fmt"
	"time"
)

// TimeOfDay is a zero-padded "HH:MM" wall-clock time. The zero padding
// makes lexicographic comparison agree with chronological order, so the
// string ordering operators are used directly for window checks.
type TimeOfDay string

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	// time.Parse accepts single-digit hours, which would break the
	// lexicographic ordering, so the canonical form must round-trip.
	t, err := time.Parse("15:04", s)
	if err != nil || t.Format("15:04") != s {
		return "", fmt.Errorf("%w: time %q must be HH:MM", ErrValidation, s)
	}
	return TimeOfDay(s), nil
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t < other
}

// Minutes returns minutes since midnight. Only valid on parsed values.
func (t TimeOfDay) Minutes() int {
	parsed, err := time.Parse("15:04", string(t))
	if err != nil {
		return 0
	}
	return parsed.Hour()*60 + parsed.Minute()
}

// Date is a calendar day in "YYYY-MM-DD" form.
type Date string

func ParseDate(s string) (Date, error) {
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return "", fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidation, s)
	}
	return Date(s), nil
}

// Overlaps reports whether the half-open intervals [aStart,aEnd) and
// [bStart,bEnd) share at least one instant.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart < bEnd && bStart < aEnd
}
