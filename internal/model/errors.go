package model

import (
	"errors"
	"time"
)

var (
	// ErrInvalid is wrapped by every rejected precondition on user input.
	ErrInvalid = errors.New("invalid input")
	// ErrTransition is returned when a record's status does not allow the
	// requested change.
	ErrTransition = errors.New("invalid status transition")
)

// Wall-clock layouts used in stored records.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Clock formats t as the HH:mm time stored in records.
func Clock(t time.Time) string {
	return t.Format(ClockLayout)
}

// Date formats t as the calendar date stored in records.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// Timestamp formats t as an RFC 3339 timestamp.
func Timestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}
