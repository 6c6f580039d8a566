package scheduling

import (
	"regexp"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

var weekdays = map[string]time.Weekday{
	"domingo":   time.Sunday,
	"lunes":     time.Monday,
	"martes":    time.Tuesday,
	"miercoles": time.Wednesday,
	"jueves":    time.Thursday,
	"viernes":   time.Friday,
	"sabado":    time.Saturday,
}

// hourPattern runs on normalized text. Groups: introducer, hour, minutes,
// "media", suffix.
var hourPattern = regexp.MustCompile(`\b(?:(a|la|las)\s+)?(\d{1,2})(?:[:.](\d{2})|\s+y\s+(media))?\s*(am|pm|hrs|h)?\b`)

// dayOfMonthPattern matches "lunes 20" and "lunes 20 de octubre". Groups: day,
// month word, hour marker. A hour marker means the number is an hour instead.
var dayOfMonthPattern = regexp.MustCompile(`\b(?:domingo|lunes|martes|miercoles|jueves|viernes|sabado)\s+(\d{1,2})(?:\s+de\s+([a-z]+))?(\s*(?:[:.]\d{2}|am|pm|hrs|h)\b)?`)

var months = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"setiembre": time.September, "octubre": time.October, "noviembre": time.November,
	"diciembre": time.December,
}

// Resolver turns a chat message into a Query relative to the business calendar.
type Resolver struct {
	calendar BusinessCalendar
}

func NewResolver(calendar BusinessCalendar) Resolver {
	return Resolver{calendar: calendar}
}

// Resolve extracts the requested day, hour, and part of day from message.
//
// The day comes from the first matching rule: "hoy", "pasado mañana",
// "mañana" (as tomorrow), a weekday with a day of month ("lunes 20"), then a
// weekday name. An explicit hour outside
// business hours yields an *OutOfHoursError alongside the parsed query.
func (r Resolver) Resolve(message string, now time.Time) (Query, error) {
	local := now.In(r.calendar.Location)
	tokens := tokenize(message)

	var q Query
	if day, ok := r.targetDay(normalize(message), tokens, civil.DateOf(local), ClockOf(local)); ok {
		q.Date = &day
	}

	if hour, ok := parseHour(normalize(message)); ok {
		q.Hour = &hour
		if !r.calendar.FitsBusinessHours(hour) {
			return q, &OutOfHoursError{Requested: hour}
		}
		return q, nil
	}

	q.TimeOfDay = timeOfDay(tokens)
	return q, nil
}

func (r Resolver) targetDay(text string, tokens []string, today civil.Date, nowClock Clock) (civil.Date, bool) {
	if indexOf(tokens, "hoy") >= 0 {
		return today, true
	}
	for i, token := range tokens {
		if token == "manana" && previous(tokens, i) == "pasado" {
			return today.AddDays(2), true
		}
	}
	for i, token := range tokens {
		if token == "manana" && !meansMorning(tokens, i) && previous(tokens, i) != "pasado" {
			return today.AddDays(1), true
		}
	}
	if day, ok := dayOfMonth(text, today); ok {
		return day, true
	}
	for i, token := range tokens {
		weekday, ok := weekdays[token]
		if !ok {
			continue
		}
		offset := (int(weekday) - int(weekdayOf(today)) + 7) % 7
		if offset == 0 && (nowClock.Minutes() >= r.calendar.Close.Minutes() || asksNextWeek(tokens, i)) {
			offset = 7
		}
		return today.AddDays(offset), true
	}
	return civil.Date{}, false
}

// dayOfMonth resolves "lunes 20" to the next 20th on or after today, and
// "lunes 20 de octubre" to the next such date. The number wins over the
// weekday when the two disagree.
func dayOfMonth(text string, today civil.Date) (civil.Date, bool) {
	m := dayOfMonthPattern.FindStringSubmatch(text)
	if m == nil || m[3] != "" {
		return civil.Date{}, false
	}
	dayNum, err := strconv.Atoi(m[1])
	if err != nil {
		return civil.Date{}, false
	}

	if m[2] != "" {
		month, ok := months[m[2]]
		if !ok {
			// "lunes 10 de la mañana" names an hour.
			return civil.Date{}, false
		}
		d := civil.Date{Year: today.Year, Month: month, Day: dayNum}
		if d.Before(today) {
			d.Year++
		}
		return d, d.IsValid()
	}

	d := civil.Date{Year: today.Year, Month: today.Month, Day: dayNum}
	if d.Before(today) {
		d.Month++
		if d.Month > time.December {
			d.Month, d.Year = time.January, d.Year+1
		}
	}
	return d, d.IsValid()
}

// asksNextWeek reports "próximo lunes", "lunes próximo", "la próxima semana"
// and "la semana que viene".
func asksNextWeek(tokens []string, i int) bool {
	if prev := previous(tokens, i); prev == "proximo" || prev == "proxima" {
		return true
	}
	if i+1 < len(tokens) && (tokens[i+1] == "proximo" || tokens[i+1] == "proxima") {
		return true
	}
	return hasSequence(tokens, "proxima", "semana") ||
		hasSequence(tokens, "semana", "que", "viene") ||
		hasSequence(tokens, "semana", "siguiente")
}

func timeOfDay(tokens []string) TimeOfDay {
	for i, token := range tokens {
		switch {
		case token == "manana" && meansMorning(tokens, i):
			return Morning
		case token == "tarde":
			return Afternoon
		}
	}
	return AnyTime
}

// meansMorning tells "en la mañana" (morning) apart from "mañana" (tomorrow).
func meansMorning(tokens []string, i int) bool {
	return previous(tokens, i) == "la"
}

func parseHour(text string) (Clock, bool) {
	for _, m := range hourPattern.FindAllStringSubmatch(text, -1) {
		intro, hh, mm, half, suffix := m[1], m[2], m[3], m[4], m[5]
		if intro == "" && mm == "" && half == "" && suffix == "" {
			continue
		}

		hour, err := strconv.Atoi(hh)
		if err != nil {
			continue
		}
		minute := 0
		if mm != "" {
			if minute, err = strconv.Atoi(mm); err != nil {
				continue
			}
		}
		if half != "" {
			minute = 30
		}
		if hour > 23 || minute > 59 {
			continue
		}

		switch suffix {
		case "pm":
			if hour < 12 {
				hour += 12
			}
		case "am":
			if hour == 12 {
				hour = 0
			}
		default:
			// "a las 4" at a clinic means the afternoon.
			if hour >= 1 && hour <= 7 {
				hour += 12
			}
		}
		return snapToSlot(hour, minute), true
	}
	return Clock{}, false
}

func snapToSlot(hour, minute int) Clock {
	switch {
	case minute < 15:
		minute = 0
	case minute < 45:
		minute = 30
	default:
		hour, minute = hour+1, 0
	}
	return Clock{Hour: hour, Minute: minute}
}

func weekdayOf(d civil.Date) time.Weekday {
	return d.In(time.UTC).Weekday()
}

func previous(tokens []string, i int) string {
	if i == 0 {
		return ""
	}
	return tokens[i-1]
}

func indexOf(tokens []string, word string) int {
	for i, token := range tokens {
		if token == word {
			return i
		}
	}
	return -1
}

func hasSequence(tokens []string, words ...string) bool {
	for i := 0; i+len(words) <= len(tokens); i++ {
		match := true
		for j, w := range words {
			if tokens[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
