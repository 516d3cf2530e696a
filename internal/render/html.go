package render

import (
	"html"
	"strings"
)

// HTML prints the production as a div of lines. The div carries the rule
// anchor as its id so links from other rules land on it.
func HTML(p Production) string {
	var b strings.Builder
	b.WriteString(`<div class="grammar-production"`)
	if id := anchorID(p.Anchor); id != "" {
		b.WriteString(` id="`)
		b.WriteString(html.EscapeString(id))
		b.WriteByte('"')
	}
	b.WriteString(">\n")
	for _, line := range p.Lines {
		class := "grammar-rule"
		if line.Continuation {
			class = "grammar-alternative"
		}
		b.WriteString(`  <p class="` + class + `">`)
		for j, s := range line.Segments {
			if j > 0 && s.Kind != SegOpt {
				b.WriteByte(' ')
			}
			b.WriteString(htmlSegment(s))
		}
		b.WriteString("</p>\n")
	}
	b.WriteString("</div>")
	return b.String()
}

func htmlSegment(s Segment) string {
	text := html.EscapeString(s.Text)
	switch s.Kind {
	case SegLiteral:
		return "<strong>" + text + "</strong>"
	case SegCategory:
		if s.Href != "" {
			return `<a href="` + html.EscapeString(s.Href) + `"><em>` + text + "</em></a>"
		}
		return "<em>" + text + "</em>"
	case SegName:
		return "<em>" + text + "</em>"
	case SegOpt:
		return "<sub>opt</sub>"
	default:
		return text
	}
}

func anchorID(anchor string) string {
	if i := strings.LastIndexByte(anchor, '#'); i >= 0 {
		return anchor[i+1:]
	}
	return anchor
}
