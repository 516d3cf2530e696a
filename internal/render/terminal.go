package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TerminalStyles configures the Terminal backend.
type TerminalStyles struct {
	Name     lipgloss.Style
	Category lipgloss.Style
	Linked   lipgloss.Style
	Literal  lipgloss.Style
	Opt      lipgloss.Style
	Punct    lipgloss.Style
}

// DefaultTerminalStyles mirrors the book typography on a terminal.
func DefaultTerminalStyles() TerminalStyles {
	return TerminalStyles{
		Name:     lipgloss.NewStyle().Italic(true).Bold(true),
		Category: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("1")),
		Linked:   lipgloss.NewStyle().Italic(true).Underline(true).Foreground(lipgloss.Color("6")),
		Literal:  lipgloss.NewStyle().Bold(true),
		Opt:      lipgloss.NewStyle().Faint(true),
		Punct:    lipgloss.NewStyle(),
	}
}

// Terminal prints the production for a terminal. Unresolved categories use
// Category, resolved ones Linked.
func Terminal(p Production, st TerminalStyles) string {
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
			b.WriteString(terminalSegment(s, st))
		}
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}

func terminalSegment(s Segment, st TerminalStyles) string {
	switch s.Kind {
	case SegName:
		return st.Name.Render(s.Text)
	case SegCategory:
		if s.Href != "" {
			return st.Linked.Render(s.Text)
		}
		return st.Category.Render(s.Text)
	case SegLiteral:
		return st.Literal.Render(s.Text)
	case SegOpt:
		return st.Opt.Render("opt")
	default:
		return st.Punct.Render(s.Text)
	}
}
