package timetricks

import (
	"strings"
	"time"
)

const (
	dayFormat = "20060102"

	// InputFormat is the layout of an HTML date input value.
	InputFormat = "2006-01-02"
	// StatusFormat renders a calendar day for a status line.
	StatusFormat = "Mon Jan 02 2006"
)

func SameDay(t time.Time, t2 time.Time) bool {
	return t.Format(dayFormat) == t2.Format(dayFormat)
}

// TrimClock returns midnight of t's calendar day in t's location. Unlike
// subtracting the clock, this is correct across daylight saving changes.
func TrimClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func SetClock(t time.Time, hour, minute int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, t.Location())
}

// InLocation reinterprets the calendar day of t in loc, discarding the clock.
func InLocation(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayBounds returns the first and last minute of t's calendar day.
func DayBounds(t time.Time) (start, end time.Time) {
	start = TrimClock(t)
	return start, SetClock(t, 23, 59)
}

// ParseDay reads a date input value ("2006-01-02") as a calendar day in loc.
// Surrounding whitespace is ignored.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(InputFormat, strings.TrimSpace(s), loc)
}

// UniqueDay returns a string representation of t that is unique by the day.
// For instance, two seperate times on the same calendar day return identical
// strings.
func UniqueDay(t time.Time) string {
	return t.Format(dayFormat)
}
