// Package scheduling decides whether a chat message asks for an appointment
// and computes which slots of the practice calendar are free.
package scheduling

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Clock is a wall-clock time of day in the business timezone.
type Clock struct {
	Hour   int
	Minute int
}

// NewClock builds a Clock. Values are not validated; use ParseClock for user input.
func NewClock(hour, minute int) Clock {
	return Clock{Hour: hour, Minute: minute}
}

// ParseClock parses "HH:MM" (or "H:MM").
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return Clock{}, fmt.Errorf("scheduling: invalid clock %q", s)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 24 {
		return Clock{}, fmt.Errorf("scheduling: invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 || (hour == 24 && minute != 0) {
		return Clock{}, fmt.Errorf("scheduling: invalid minute in %q", s)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// Minutes returns minutes since midnight.
func (c Clock) Minutes() int {
	return c.Hour*60 + c.Minute
}

// Add returns the clock shifted by d. It does not wrap at midnight.
func (c Clock) Add(d time.Duration) Clock {
	total := c.Minutes() + int(d/time.Minute)
	return Clock{Hour: total / 60, Minute: total % 60}
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// On returns the instant of c on day d in loc.
func (c Clock) On(d civil.Date, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc)
}

// ClockOf returns the wall clock of t in its own location.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

// Interval is a half-open busy range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [start, end) intersects the interval.
func (i Interval) Overlaps(start, end time.Time) bool {
	return start.Before(i.End) && end.After(i.Start)
}

// Slot is a candidate appointment start.
type Slot struct {
	Start  time.Time
	Length time.Duration
}

func (s Slot) End() time.Time {
	return s.Start.Add(s.Length)
}

// BusinessCalendar holds the fixed opening hours used to offer slots.
// It is built once at startup and passed by value.
type BusinessCalendar struct {
	Location *time.Location
	// Open is the first slot start; Close is the end of the last slot.
	Open           Clock
	Close          Clock
	SlotLength     time.Duration
	SearchDays     int
	LeadTime       time.Duration
	ClosedDays     []time.Weekday
	AfternoonStart Clock
}

// DefaultBusinessCalendar returns the practice's standard hours: 10:00 to 20:00
// in 30-minute slots, searching a week ahead.
func DefaultBusinessCalendar(loc *time.Location) BusinessCalendar {
	if loc == nil {
		loc = time.UTC
	}
	return BusinessCalendar{
		Location:       loc,
		Open:           NewClock(10, 0),
		Close:          NewClock(20, 0),
		SlotLength:     30 * time.Minute,
		SearchDays:     7,
		LeadTime:       15 * time.Minute,
		AfternoonStart: NewClock(14, 0),
	}
}

// Validate checks the calendar can produce at least one slot per open day.
func (bc BusinessCalendar) Validate() error {
	switch {
	case bc.Location == nil:
		return errors.New("scheduling: location is required")
	case bc.SlotLength <= 0 || bc.SlotLength%time.Minute != 0:
		return fmt.Errorf("scheduling: invalid slot length %s", bc.SlotLength)
	case bc.Open.Add(bc.SlotLength).Minutes() > bc.Close.Minutes():
		return fmt.Errorf("scheduling: opening hours %s-%s fit no %s slot", bc.Open, bc.Close, bc.SlotLength)
	case bc.SearchDays < 1:
		return fmt.Errorf("scheduling: search days must be positive, got %d", bc.SearchDays)
	case bc.LeadTime < 0:
		return fmt.Errorf("scheduling: negative lead time %s", bc.LeadTime)
	}
	return nil
}

// Today returns the current calendar day in the business timezone.
func (bc BusinessCalendar) Today(now time.Time) civil.Date {
	return civil.DateOf(now.In(bc.Location))
}

// LastSlot is the start of the final slot of the day.
func (bc BusinessCalendar) LastSlot() Clock {
	return bc.Close.Add(-bc.SlotLength)
}

// SlotClocks lists every slot start of a business day.
func (bc BusinessCalendar) SlotClocks() []Clock {
	var clocks []Clock
	for c := bc.Open; c.Add(bc.SlotLength).Minutes() <= bc.Close.Minutes(); c = c.Add(bc.SlotLength) {
		clocks = append(clocks, c)
	}
	return clocks
}

// FitsBusinessHours reports whether a slot starting at c ends by closing time.
func (bc BusinessCalendar) FitsBusinessHours(c Clock) bool {
	return c.Minutes() >= bc.Open.Minutes() && c.Add(bc.SlotLength).Minutes() <= bc.Close.Minutes()
}

func (bc BusinessCalendar) IsClosed(d civil.Date) bool {
	weekday := d.In(bc.Location).Weekday()
	for _, closed := range bc.ClosedDays {
		if closed == weekday {
			return true
		}
	}
	return false
}

// Days lists the calendar days searched for q: the target day when set,
// otherwise SearchDays days starting today.
func (bc BusinessCalendar) Days(q Query, now time.Time) []civil.Date {
	if q.Date != nil {
		return []civil.Date{*q.Date}
	}
	today := bc.Today(now)
	days := make([]civil.Date, 0, bc.SearchDays)
	for i := 0; i < bc.SearchDays; i++ {
		days = append(days, today.AddDays(i))
	}
	return days
}

// Window is the [start, end) instant range covering Days(q, now). It is the
// range busy intervals must be fetched for.
func (bc BusinessCalendar) Window(q Query, now time.Time) (time.Time, time.Time) {
	days := bc.Days(q, now)
	return days[0].In(bc.Location), days[len(days)-1].AddDays(1).In(bc.Location)
}

// AvailableSlots enumerates free slots for q in chronological order.
//
// A slot qualifies when it fits business hours on an open day, starts after
// now+LeadTime, matches the query, and overlaps no busy interval. With a target
// hour only the first future occurrence of that hour is considered, so at most
// one slot is returned. busy is not modified.
func (bc BusinessCalendar) AvailableSlots(q Query, busy []Interval, now time.Time) []Slot {
	earliest := now.Add(bc.LeadTime)
	clocks := bc.SlotClocks()

	var slots []Slot
	for _, day := range bc.Days(q, now) {
		if bc.IsClosed(day) {
			continue
		}
		for _, clock := range clocks {
			if !q.matches(clock, bc.AfternoonStart) {
				continue
			}
			slot := Slot{Start: clock.On(day, bc.Location), Length: bc.SlotLength}
			if !slot.Start.After(earliest) {
				continue
			}
			free := !overlapsAny(slot, busy)
			if q.Hour != nil {
				if free {
					return []Slot{slot}
				}
				return nil
			}
			if free {
				slots = append(slots, slot)
			}
		}
	}
	return slots
}

func overlapsAny(slot Slot, busy []Interval) bool {
	end := slot.End()
	for _, b := range busy {
		if b.Overlaps(slot.Start, end) {
			return true
		}
	}
	return false
}
