// Package report derives filtered, grouped and sorted views of CSSD
// collections. Nothing in it performs I/O except the exporters.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/cssd/internal/model"
)

var dayLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseDay parses a record date and truncates it to its calendar day in UTC.
// The day is the one written in the string, whatever its offset.
func ParseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dayLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// DateRange is an inclusive range of calendar days. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Unbounded reports whether neither bound is set.
func (r DateRange) Unbounded() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether the day lies within the range.
func (r DateRange) Contains(day time.Time) bool {
	if !r.From.IsZero() && day.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && day.After(r.To) {
		return false
	}
	return true
}

// ContainsDate reports whether a record date lies within the range. Dates
// that do not parse only match an unbounded range.
func (r DateRange) ContainsDate(s string) bool {
	if r.Unbounded() {
		return true
	}
	day, ok := ParseDay(s)
	if !ok {
		return false
	}
	return r.Contains(day)
}

// ParseDateRange builds a range from optional from/to strings.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if from = strings.TrimSpace(from); from != "" {
		day, ok := ParseDay(from)
		if !ok {
			return DateRange{}, fmt.Errorf("%w: bad from date %q", model.ErrInvalid, from)
		}
		r.From = day
	}
	if to = strings.TrimSpace(to); to != "" {
		day, ok := ParseDay(to)
		if !ok {
			return DateRange{}, fmt.Errorf("%w: bad to date %q", model.ErrInvalid, to)
		}
		r.To = day
	}
	return r, nil
}
