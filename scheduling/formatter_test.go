package scheduling

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSlot(t *testing.T) {
	loc := santiago(t)
	f := NewFormatter(DefaultBusinessCalendar(loc), 5)

	got := f.FormatSlot(Slot{Start: at(loc, 13, 10, 0), Length: 30 * time.Minute})
	assert.Equal(t, "lunes 13 de octubre, 10:00", got)

	// Rendered in the business timezone whatever the slot's location.
	got = f.FormatSlot(Slot{Start: at(loc, 13, 10, 0).UTC(), Length: 30 * time.Minute})
	assert.Equal(t, "lunes 13 de octubre, 10:00", got)
}

func TestFormat(t *testing.T) {
	loc := santiago(t)
	bc := DefaultBusinessCalendar(loc)
	f := NewFormatter(bc, 5)
	now := at(loc, 13, 9, 0)

	t.Run("hour available", func(t *testing.T) {
		q := Query{Date: date(13), Hour: clock(10, 0)}
		reply := f.Format(q, bc.AvailableSlots(q, nil, now))
		assert.Equal(t, "¡Sí! El lunes 13 de octubre, 10:00 está disponible.", reply)
	})

	t.Run("hour taken", func(t *testing.T) {
		q := Query{Date: date(13), Hour: clock(10, 0)}
		busy := []Interval{{Start: at(loc, 13, 10, 0), End: at(loc, 13, 10, 30)}}
		reply := f.Format(q, bc.AvailableSlots(q, busy, now))
		assert.Equal(t, "Lo siento, el lunes 13 de octubre a las 10:00 no se encuentra disponible. ¿Te gustaría buscar otro horario?", reply)
	})

	t.Run("hour taken without date", func(t *testing.T) {
		reply := f.Format(Query{Hour: clock(10, 0)}, nil)
		assert.Equal(t, "Lo siento, a las 10:00 no se encuentra disponible. ¿Te gustaría buscar otro horario?", reply)
	})

	t.Run("list is truncated", func(t *testing.T) {
		q := Query{Date: date(13)}
		slots := bc.AvailableSlots(q, nil, now)
		require.Len(t, slots, 20)

		reply := f.Format(q, slots)
		lines := strings.Split(reply, "\n")
		assert.Equal(t, "📅 Estas son algunas horas disponibles para el lunes 13 de octubre:", lines[0])
		assert.Equal(t, "- lunes 13 de octubre, 10:00", lines[1])
		assert.Equal(t, "- lunes 13 de octubre, 12:00", lines[5])
		assert.Equal(t, "", lines[6])
		assert.Equal(t, "(Y 15 más...)", lines[7])
		assert.Len(t, lines, 8)
	})

	t.Run("band without date", func(t *testing.T) {
		q := Query{TimeOfDay: Afternoon}
		slots := bc.AvailableSlots(q, nil, now)[:2]
		reply := f.Format(q, slots)
		assert.Equal(t, "📅 Estas son algunas horas disponibles por la tarde:\n- lunes 13 de octubre, 14:00\n- lunes 13 de octubre, 14:30", reply)
	})

	t.Run("nothing found", func(t *testing.T) {
		assert.Equal(t, "No se encontraron horas disponibles para la fecha o rango especificado.", f.Format(Query{}, nil))
		assert.Equal(t,
			"No se encontraron horas disponibles para la fecha o rango especificado. ¿Te gustaría probar con otra búsqueda?",
			f.Format(Query{Date: date(19)}, nil))
		assert.Equal(t,
			"No se encontraron horas disponibles para la fecha o rango especificado. ¿Te gustaría probar con otra búsqueda?",
			f.Format(Query{TimeOfDay: Morning}, nil))
	})
}

func TestOutOfHours(t *testing.T) {
	f := NewFormatter(DefaultBusinessCalendar(santiago(t)), 0)
	assert.Equal(t,
		"Lo siento, a las 05:00 no atendemos. Nuestro horario de atención es de 10:00 a 19:30. ¿Te gustaría buscar una hora dentro de ese horario?",
		f.OutOfHours(NewClock(5, 0)))
	assert.Equal(t, 5, f.maxSuggestions)
}
