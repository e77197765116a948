package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the calendar-day format used on the wire and for grouping.
const DayLayout = "2006-01-02"

var (
	ErrInvalidRange = errors.New("invalid date range")
	ErrInvalidDate  = errors.New("invalid date")
)

// DateRange bounds a query by transaction date. From is inclusive, Until is
// exclusive; a zero value on either side leaves that side open.
type DateRange struct {
	From  time.Time
	Until time.Time
}

// Since returns the open-ended range [t, ∞).
func Since(t time.Time) DateRange {
	return DateRange{From: t}
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.Until.IsZero()
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.Until.IsZero() && !t.Before(r.Until) {
		return false
	}
	return true
}

// ParseDateRange builds a range from optional startDate/endDate strings.
//
// Each value is either a calendar day (2024-01-31) or an RFC3339 timestamp.
// A calendar-day endDate includes that whole day; a timestamp endDate is
// inclusive at that instant. An end before the start is rejected.
func ParseDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if s := strings.TrimSpace(start); s != "" {
		t, _, err := parseDateParam(s)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: startDate %q", ErrInvalidRange, s)
		}
		// The zero time marks an open bound.
		if t.IsZero() {
			return DateRange{}, fmt.Errorf("%w: startDate %q is out of range", ErrInvalidRange, s)
		}
		r.From = t
	}
	if s := strings.TrimSpace(end); s != "" {
		t, dayOnly, err := parseDateParam(s)
		if err != nil {
			return DateRange{}, fmt.Errorf("%w: endDate %q", ErrInvalidRange, s)
		}
		if dayOnly {
			r.Until = t.AddDate(0, 0, 1)
		} else {
			r.Until = t.Add(time.Nanosecond)
		}
	}
	if !r.From.IsZero() && !r.Until.IsZero() && !r.Until.After(r.From) {
		return DateRange{}, fmt.Errorf("%w: endDate is before startDate", ErrInvalidRange)
	}
	return r, nil
}

// ParseDate accepts a calendar day or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	t, _, err := parseDateParam(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func parseDateParam(s string) (time.Time, bool, error) {
	if t, err := time.Parse(DayLayout, s); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}

// DayOf formats t as the UTC calendar day it falls on.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayLayout)
}
