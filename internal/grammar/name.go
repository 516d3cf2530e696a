package grammar

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName trims, collapses inner whitespace and applies NFC so that the
// same category typed in different documents interns to the same string.
func NormalizeName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return norm.NFC.String(s)
}

// Slug turns a name into an anchor fragment: lower case, spaces become
// hyphens, and everything except letters, digits, '-' and '_' is dropped.
func Slug(s string) string {
	// Caser хранит состояние, поэтому новый на каждый вызов
	s = cases.Lower(language.Und).String(NormalizeName(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.M, r):
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-")
}
