package model

import (
	"fmt"
	"time"
)

// DateFormat is the only accepted date layout (YYYY-MM-DD).
const DateFormat = "2006-01-02"

// ParseDate parses a calendar date in DateFormat. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q want format %q: %w", s, "YYYY-MM-DD", err)
	}
	return d, nil
}

// Day returns the calendar day of t, in t's location, as midnight UTC so that
// it compares directly with the output of ParseDate.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateRange is an inclusive pair of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange checks start <= end <= today.
func NewDateRange(start, end, today time.Time) (DateRange, error) {
	start, end, today = Day(start), Day(end), Day(today)
	if end.Before(start) {
		return DateRange{}, fmt.Errorf("end %s before start %s", end.Format(DateFormat), start.Format(DateFormat))
	}
	if end.After(today) {
		return DateRange{}, fmt.Errorf("end %s is in the future", end.Format(DateFormat))
	}
	return DateRange{Start: start, End: end}, nil
}

func (r DateRange) String() string {
	return r.Start.Format(DateFormat) + ".." + r.End.Format(DateFormat)
}
