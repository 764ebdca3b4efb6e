package planning

import "time"

// =============================================================================
// WEEK MATH - Monday-anchored weekly bucketing
// =============================================================================

// StartOfWeek returns the Monday of the week containing d, at UTC midnight.
// All allocation rows are keyed by these anchors.
func StartOfWeek(d time.Time) time.Time {
	d = Midnight(d)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}

// Midnight truncates a time to its UTC calendar date.
func Midnight(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}

// WeeksSpanning counts the Monday-aligned weekly buckets needed to cover
// the inclusive range [anchor, end], where anchor is already a week start.
// A range shorter than a week still occupies one bucket, and an inverted
// range is floored to one bucket rather than producing zero (the engine
// never divides by a zero week count).
//
// Example: Mon 2025-01-06 .. Sun 2025-01-19 spans 2 buckets.
func WeeksSpanning(anchor, end time.Time) int {
	days := DaysBetween(anchor, end)
	if days < 0 {
		return 1
	}
	weeks := days/7 + 1
	if weeks < 1 {
		weeks = 1
	}
	return weeks
}
