// Package calendar implements the timezone-aware date math, grid
// construction and layout metrics behind the week/month schedule views.
//
// Every helper that derives "today" or truncates to a day boundary first
// localizes the instant into the viewing user's IANA timezone; taking UTC
// midnight and reinterpreting it would shift lessons across day cells for
// users west of Greenwich.
package calendar

import "time"

// WeekdayIndex maps time.Weekday onto the 0=Monday .. 6=Sunday convention
// used across the scheduling domain.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// StartOfDay truncates to local midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns local midnight of the Monday on or before t.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, -WeekdayIndex(day))
}

// StartOfMonth returns local midnight of the first day of t's month.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
}

// EndOfMonth returns local midnight of the last day of t's month.
func EndOfMonth(t time.Time, loc *time.Location) time.Time {
	return StartOfMonth(t, loc).AddDate(0, 1, -1)
}

// WeekOfMonth returns the 1-based Monday-week row that t's date falls on
// within its month. For the last day of a month this equals the number of
// week rows the month grid needs.
func WeekOfMonth(t time.Time, loc *time.Location) int {
	lt := t.In(loc)
	offset := WeekdayIndex(StartOfMonth(lt, loc))
	return (lt.Day() + offset + 6) / 7
}

// SameDay reports whether a and b fall on the same calendar day in loc,
// independent of time-of-day.
func SameDay(a, b time.Time, loc *time.Location) bool {
	la, lb := a.In(loc), b.In(loc)
	ya, ma, da := la.Date()
	yb, mb, db := lb.Date()
	return ya == yb && ma == mb && da == db
}

// SameMonth reports whether a and b fall in the same calendar month in loc.
func SameMonth(a, b time.Time, loc *time.Location) bool {
	la, lb := a.In(loc), b.In(loc)
	return la.Year() == lb.Year() && la.Month() == lb.Month()
}
