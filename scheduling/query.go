package scheduling

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
)

// TimeOfDay narrows a search to part of the business day.
type TimeOfDay int

const (
	AnyTime TimeOfDay = iota
	Morning
	Afternoon
)

func (t TimeOfDay) String() string {
	switch t {
	case Morning:
		return "morning"
	case Afternoon:
		return "afternoon"
	default:
		return "any"
	}
}

// Query is what a message asked for. Nil fields mean "not specified".
type Query struct {
	Date      *civil.Date
	Hour      *Clock
	TimeOfDay TimeOfDay
}

func (q Query) matches(c Clock, afternoonStart Clock) bool {
	if q.Hour != nil {
		return c == *q.Hour
	}
	switch q.TimeOfDay {
	case Morning:
		return c.Minutes() < afternoonStart.Minutes()
	case Afternoon:
		return c.Minutes() >= afternoonStart.Minutes()
	}
	return true
}

// ErrOutOfHours is returned when a message names an hour the practice is closed.
var ErrOutOfHours = errors.New("scheduling: requested hour is outside business hours")

// OutOfHoursError carries the hour that was asked for.
type OutOfHoursError struct {
	Requested Clock
}

func (e *OutOfHoursError) Error() string {
	return fmt.Sprintf("%s: %s", ErrOutOfHours, e.Requested)
}

func (e *OutOfHoursError) Unwrap() error {
	return ErrOutOfHours
}
