// Package date provides a day-granularity date used to key the daily SSR list.
package date

import (
	"fmt"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02" // write date format

// CompactFormat is the YYYYMMDD format used in remote file names.
const CompactFormat = "20060102"

// Date represent a date with no lower than day granularity.
type Date struct {
	y int
	m time.Month
	d int
}

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Today returns the current date in the local time zone.
func Today() Date { return New(time.Now().Date()) }

// TodayIn returns the current date as seen from loc.
func TodayIn(loc *time.Location) Date { return Of(time.Now(), loc) }

// Of returns the date of t in loc.
func Of(t time.Time, loc *time.Location) Date { return New(t.In(loc).Date()) }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// Weekday returns the day of the week for the date.
func (d Date) Weekday() time.Weekday { return d.time().Weekday() }

// IsWeekend reports whether d falls on a Saturday or a Sunday.
// NASDAQ does not publish a list on those days.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Compact formats the date as YYYYMMDD.
func (d Date) Compact() string { return d.time().Format(CompactFormat) }

// Parse parses a Date from a string. It is lenient and accepts formats like "2025-7-1".
func Parse(str string) (Date, error) {
	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}

// ParseCompact parses a YYYYMMDD date.
func ParseCompact(str string) (Date, error) {
	on, err := time.Parse(CompactFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, CompactFormat, err)
	}
	return New(on.Date()), nil
}
