package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

const (
	slotLayout = "Monday 2 de January, 15:04"
	dayLayout  = "Monday 2 de January"
)

// Formatter renders availability as Spanish chat replies.
type Formatter struct {
	calendar       BusinessCalendar
	maxSuggestions int
}

func NewFormatter(calendar BusinessCalendar, maxSuggestions int) Formatter {
	if maxSuggestions < 1 {
		maxSuggestions = 5
	}
	return Formatter{calendar: calendar, maxSuggestions: maxSuggestions}
}

// Format builds the reply for q given the slots AvailableSlots returned.
func (f Formatter) Format(q Query, slots []Slot) string {
	if q.Hour != nil {
		if len(slots) > 0 {
			return fmt.Sprintf("¡Sí! El %s está disponible.", f.FormatSlot(slots[0]))
		}
		var asked strings.Builder
		if q.Date != nil {
			asked.WriteString("el " + f.formatDay(q.Date.In(f.calendar.Location)) + " ")
		}
		asked.WriteString("a las " + q.Hour.String())
		return fmt.Sprintf("Lo siento, %s no se encuentra disponible. ¿Te gustaría buscar otro horario?", asked.String())
	}

	if len(slots) == 0 {
		reply := "No se encontraron horas disponibles para la fecha o rango especificado."
		if q.Date != nil || q.TimeOfDay != AnyTime {
			reply += " ¿Te gustaría probar con otra búsqueda?"
		}
		return reply
	}

	var b strings.Builder
	b.WriteString("📅 Estas son algunas horas disponibles")
	if q.Date != nil {
		b.WriteString(" para el " + f.formatDay(q.Date.In(f.calendar.Location)))
	}
	switch q.TimeOfDay {
	case Morning:
		b.WriteString(" por la mañana")
	case Afternoon:
		b.WriteString(" por la tarde")
	}
	b.WriteString(":")

	shown := slots
	if len(shown) > f.maxSuggestions {
		shown = shown[:f.maxSuggestions]
	}
	for _, slot := range shown {
		b.WriteString("\n- " + f.FormatSlot(slot))
	}
	if rest := len(slots) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n\n(Y %d más...)", rest)
	}
	return b.String()
}

// OutOfHours explains the opening hours when a message asks for a closed time.
func (f Formatter) OutOfHours(requested Clock) string {
	return fmt.Sprintf(
		"Lo siento, a las %s no atendemos. Nuestro horario de atención es de %s a %s. ¿Te gustaría buscar una hora dentro de ese horario?",
		requested, f.calendar.Open, f.calendar.LastSlot(),
	)
}

// FormatSlot renders a slot start like "lunes 13 de octubre, 10:00".
func (f Formatter) FormatSlot(s Slot) string {
	return monday.Format(s.Start.In(f.calendar.Location), slotLayout, monday.LocaleEsES)
}

func (f Formatter) formatDay(t time.Time) string {
	return monday.Format(t, dayLayout, monday.LocaleEsES)
}
