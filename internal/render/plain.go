package render

import (
	"strings"

	"grammarref/internal/grammar"
)

// Plain prints the production on a single line in the plain notation that
// grammar.ParseRule reads back. Stacked alternatives are joined with bars.
func Plain(p Production) string {
	var b strings.Builder
	for i, line := range p.Lines {
		if line.Continuation && i > 1 {
			b.WriteString(" |")
		}
		writePlainSegments(&b, line.Segments, i > 0)
	}
	return b.String()
}

func writePlainSegments(b *strings.Builder, segs []Segment, leadingSpace bool) {
	for i, s := range segs {
		if s.Kind == SegOpt {
			b.WriteString("_opt")
			continue
		}
		if i > 0 || leadingSpace {
			b.WriteByte(' ')
		}
		switch s.Kind {
		case SegLiteral:
			b.WriteString(grammar.Terminal(s.Text).PlainText())
		case SegCategory, SegName:
			b.WriteString(grammar.Nonterminal(s.Text, false).PlainText())
		default:
			b.WriteString(s.Text)
		}
	}
}
