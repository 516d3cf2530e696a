package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/exp/ebnf"

	"grammarref/internal/grammar"
)

// EBNFProduction is one category with the alternatives of all its rules.
type EBNFProduction struct {
	Name         string
	Alternatives []grammar.Alternative
}

// EBNFName maps a category name to an EBNF production name: separators
// become underscores and the first letter is upper-cased so every production
// counts as non-lexical.
func EBNFName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '-' || unicode.IsSpace(r):
			b.WriteByte('_')
		case i == 0 && unicode.IsLetter(r) && unicode.ToUpper(r) != r:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	first := []rune(out)
	if len(first) == 0 || !unicode.IsUpper(first[0]) {
		out = "X_" + out
	}
	return out
}

// EBNF prints productions in Go's EBNF notation, one per line, in the order
// given.
func EBNF(prods []EBNFProduction) string {
	var b strings.Builder
	for _, p := range prods {
		b.WriteString(EBNFName(p.Name))
		b.WriteString(" = ")
		for i, alt := range p.Alternatives {
			if i > 0 {
				b.WriteString(" | ")
			}
			for j, e := range alt.Elements {
				if j > 0 {
					b.WriteByte(' ')
				}
				switch {
				case e.IsTerminal():
					b.WriteString(strconv.Quote(e.Text))
				case e.Optional:
					b.WriteString("[ " + EBNFName(e.Text) + " ]")
				default:
					b.WriteString(EBNFName(e.Text))
				}
			}
		}
		b.WriteString(" .\n")
	}
	return b.String()
}

// VerifyEBNF parses text and checks that every production reachable from
// start is defined and that every production is reachable.
func VerifyEBNF(filename, text, start string) error {
	g, err := ebnf.Parse(filename, strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("parse ebnf: %w", err)
	}
	if err := ebnf.Verify(g, EBNFName(start)); err != nil {
		return fmt.Errorf("verify ebnf from %s: %w", start, err)
	}
	return nil
}
