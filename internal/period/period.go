// Package period provides calendar arithmetic for day, week and month periods.
package period

import (
	"fmt"
	"time"
)

// Unit is the length of a recurring period.
type Unit string

const (
	Day   Unit = "day"
	Week  Unit = "week"
	Month Unit = "month"
)

// maxAdvanceSteps bounds Advance for pathological inputs (e.g. a daily period
// started decades ago).
const maxAdvanceSteps = 100000

// Valid returns true if u is a recognised period unit.
func Valid(u Unit) bool {
	switch u {
	case Day, Week, Month:
		return true
	}
	return false
}

// Parse converts a string into a Unit.
func Parse(s string) (Unit, error) {
	u := Unit(s)
	if !Valid(u) {
		return "", fmt.Errorf("period: unknown unit %q (valid: day, week, month)", s)
	}
	return u, nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns midnight of the Monday on or before t.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// SameDay reports whether a and b fall on the same calendar day, evaluated in
// a's location.
func SameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// SameWeek reports whether a and b fall in the same Monday-based week.
func SameWeek(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return startOfWeek(a).Equal(startOfWeek(b.In(a.Location())))
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// Same dispatches to SameDay, SameWeek or SameMonth.
func Same(u Unit, a, b time.Time) bool {
	switch u {
	case Day:
		return SameDay(a, b)
	case Month:
		return SameMonth(a, b)
	default:
		return SameWeek(a, b)
	}
}

// Next returns start advanced by exactly one period.
func Next(start time.Time, u Unit) time.Time {
	switch u {
	case Day:
		return start.AddDate(0, 0, 1)
	case Month:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 7)
	}
}

// Length returns the duration of the period beginning at start.
func Length(start time.Time, u Unit) time.Duration {
	return Next(start, u).Sub(start)
}

// Progress returns how far t is through the period beginning at start, in [0, 1].
func Progress(t, start time.Time, u Unit) float64 {
	length := Length(start, u)
	if length <= 0 {
		return 0
	}
	r := float64(t.Sub(start)) / float64(length)
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}

// Advance moves a creation-aligned period start forward one period at a time
// until now falls inside [start, start+period). A start in the future is
// returned unchanged.
func Advance(start, now time.Time, u Unit) time.Time {
	if start.IsZero() || now.Before(start) {
		return start
	}
	for i := 0; i < maxAdvanceSteps; i++ {
		next := Next(start, u)
		if now.Before(next) {
			return start
		}
		start = next
	}
	return start
}

// DaysBetween returns the fractional number of days from a to b. It is
// negative when b is before a.
func DaysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
