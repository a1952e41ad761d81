package core

import "time"

// NowFunc returns the current time; mockable in tests.
var NowFunc = time.Now

// DayWindow returns the half-open window [local midnight, next local midnight)
// containing t. All "today" comparisons in the app go through here; day
// boundaries follow the server's timezone, not UTC.
func DayWindow(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// Day normalizes t to its local midnight.
func Day(t time.Time) time.Time {
	start, _ := DayWindow(t)
	return start
}

// MonthWindow returns the half-open window [first of month, first of next month)
// in the server's timezone. AddDate carries the December rollover.
func MonthWindow(year int, month time.Month) (start, end time.Time) {
	start = time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}
