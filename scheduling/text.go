package scheduling

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalize lower-cases s and strips diacritics so "Miércoles" and "miercoles"
// compare equal. A transformer is built per call because chains keep state.
func normalize(s string) string {
	lower := strings.ToLower(s)
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, lower)
	if err != nil {
		return lower
	}
	return folded
}

func tokenize(s string) []string {
	return strings.FieldsFunc(normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
