package render

import "github.com/mattn/go-runewidth"

// LineWidth is the display width of a line as the plain backend prints it,
// counting East Asian wide runes as two columns.
func LineWidth(line Line) int {
	width := 0
	for i, s := range line.Segments {
		if i > 0 && s.Kind != SegOpt {
			width++
		}
		width += segmentWidth(s)
	}
	return width
}

func segmentWidth(s Segment) int {
	switch s.Kind {
	case SegOpt:
		return runewidth.StringWidth("_opt")
	default:
		return runewidth.StringWidth(s.Text)
	}
}
