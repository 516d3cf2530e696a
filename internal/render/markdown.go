package render

import (
	"strings"
)

// Markdown prints the production in the book's markup: italic categories
// linked to their anchors, bold literals and <sub>opt</sub> markers. Stacked
// alternatives go on indented continuation lines joined by hard breaks.
func Markdown(p Production) string {
	lines := make([]string, len(p.Lines))
	for i, line := range p.Lines {
		var b strings.Builder
		if line.Continuation {
			b.WriteString("    ")
		}
		for j, s := range line.Segments {
			if j > 0 && s.Kind != SegOpt {
				b.WriteByte(' ')
			}
			b.WriteString(markdownSegment(s))
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "  \n")
}

func markdownSegment(s Segment) string {
	switch s.Kind {
	case SegLiteral:
		if strings.Contains(s.Text, "`") {
			return "**" + s.Text + "**"
		}
		return "**`" + s.Text + "`**"
	case SegCategory:
		if s.Href != "" {
			return "[*" + s.Text + "*](" + s.Href + ")"
		}
		return "*" + s.Text + "*"
	case SegName:
		return "*" + s.Text + "*"
	case SegOpt:
		return "<sub>opt</sub>"
	default:
		return s.Text
	}
}
