package scheduling

import "strings"

// schedulingStems match the start of a token, so "hora" covers "horas" and
// "horario" but not "ahora".
var schedulingStems = []string{
	"hora",
	"turno",
	"disponib",
	"agend",
	"cita",
	"reserv",
}

// schedulingWords must match a whole token.
var schedulingWords = map[string]bool{
	"cuando": true,
	"hoy":    true,
	"manana": true,
	"tarde":  true,
}

// IsSchedulingQuery reports whether the message asks about appointment
// availability. Anything else goes to the completion model.
func IsSchedulingQuery(message string) bool {
	for _, token := range tokenize(message) {
		if schedulingWords[token] {
			return true
		}
		if _, ok := weekdays[token]; ok {
			return true
		}
		for _, stem := range schedulingStems {
			if strings.HasPrefix(token, stem) {
				return true
			}
		}
	}
	return false
}
