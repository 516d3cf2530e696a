package render

import (
	"fmt"
	"strings"

	"grammarref/internal/grammar"
)

// SegmentKind classifies one display segment.
type SegmentKind uint8

const (
	SegLiteral SegmentKind = iota
	SegCategory
	SegOpt
	SegBar
	SegArrow
	SegName
)

func (k SegmentKind) String() string {
	switch k {
	case SegLiteral:
		return "literal"
	case SegCategory:
		return "category"
	case SegOpt:
		return "opt"
	case SegBar:
		return "bar"
	case SegArrow:
		return "arrow"
	case SegName:
		return "name"
	default:
		return fmt.Sprintf("SegmentKind(%d)", k)
	}
}

// Segment is one styled piece of a displayed rule. Href is set for linked
// categories and for the rule name.
type Segment struct {
	Kind SegmentKind
	Text string
	Href string
}

// Line is a displayed line. Continuation lines hold one stacked alternative.
type Line struct {
	Segments     []Segment
	Continuation bool
}

// Production is the display structure of one rule.
type Production struct {
	Name         string
	Anchor       string
	Layout       Layout
	Lines        []Line
	Alternatives []grammar.Alternative
}

// Layout selects how alternatives are arranged.
type Layout uint8

const (
	// LayoutAuto stacks alternatives only when the inline form is too wide.
	LayoutAuto Layout = iota
	// LayoutInline joins alternatives with a bar on one line.
	LayoutInline
	// LayoutStacked puts every alternative on its own line.
	LayoutStacked
)

func (l Layout) String() string {
	switch l {
	case LayoutAuto:
		return "auto"
	case LayoutInline:
		return "inline"
	case LayoutStacked:
		return "stacked"
	default:
		return fmt.Sprintf("Layout(%d)", l)
	}
}

// ParseLayout parses "auto", "inline" or "stacked".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return LayoutAuto, nil
	case "inline":
		return LayoutInline, nil
	case "stacked", "stack":
		return LayoutStacked, nil
	default:
		return LayoutAuto, fmt.Errorf("unknown layout %q (want auto, inline or stacked)", s)
	}
}

// ResolveFunc maps a category name to its anchor.
type ResolveFunc func(name string) (anchor string, ok bool)

// Options control Render.
type Options struct {
	Layout Layout
	// MaxWidth is the display width above which LayoutAuto stacks; 0 never stacks.
	MaxWidth int
	// LinkPrefix is prepended to every resolved anchor.
	LinkPrefix string
	// Anchor is the rule's own anchor, used as the href of the name segment.
	Anchor string
	// Page is the document part of anchors defined on the page being
	// rendered. Links into it stay bare fragments unless LinkPrefix is set.
	Page string
	// PageURL maps the document part of an anchor to the href of its page.
	// Nil keeps the document part as is.
	PageURL func(doc string) string
}

// Render builds the display structure of rule. Unresolved categories keep
// their italic category segment but carry no Href.
func Render(rule *grammar.Rule, resolve ResolveFunc, opts Options) Production {
	p := Production{Layout: opts.Layout}
	if rule == nil {
		return p
	}
	p.Name = rule.Name
	p.Anchor = opts.Anchor
	if p.Anchor == "" {
		p.Anchor = rule.Anchor
	}
	p.Alternatives = rule.Alternatives

	head := []Segment{
		{Kind: SegName, Text: rule.Name, Href: opts.linkTo(p.Anchor)},
		{Kind: SegArrow, Text: "→"},
	}
	alts := make([][]Segment, len(rule.Alternatives))
	for i, alt := range rule.Alternatives {
		alts[i] = alternativeSegments(alt, resolve, opts)
	}

	inline := Line{Segments: append([]Segment(nil), head...)}
	for i, segs := range alts {
		if i > 0 {
			inline.Segments = append(inline.Segments, Segment{Kind: SegBar, Text: "|"})
		}
		inline.Segments = append(inline.Segments, segs...)
	}

	layout := opts.Layout
	if layout == LayoutAuto {
		layout = LayoutInline
		if opts.MaxWidth > 0 && len(alts) > 1 && LineWidth(inline) > opts.MaxWidth {
			layout = LayoutStacked
		}
	}
	p.Layout = layout

	if layout == LayoutInline {
		p.Lines = []Line{inline}
		return p
	}
	p.Lines = make([]Line, 0, len(alts)+1)
	p.Lines = append(p.Lines, Line{Segments: head})
	for _, segs := range alts {
		p.Lines = append(p.Lines, Line{Segments: segs, Continuation: true})
	}
	return p
}

func alternativeSegments(alt grammar.Alternative, resolve ResolveFunc, opts Options) []Segment {
	out := make([]Segment, 0, len(alt.Elements))
	for _, e := range alt.Elements {
		switch {
		case e.IsTerminal():
			out = append(out, Segment{Kind: SegLiteral, Text: e.Text})
		case e.IsNonterminal():
			seg := Segment{Kind: SegCategory, Text: e.Text}
			if resolve != nil {
				if anchor, ok := resolve(e.Text); ok {
					seg.Href = opts.linkTo(anchor)
				}
			}
			out = append(out, seg)
			if e.Optional {
				out = append(out, Segment{Kind: SegOpt, Text: "opt"})
			}
		}
	}
	return out
}

// linkTo turns an anchor of the form doc#fragment into an href. An anchor
// without '#' is a fragment on the current page.
func (o Options) linkTo(anchor string) string {
	if anchor == "" {
		return ""
	}
	doc, frag, ok := strings.Cut(anchor, "#")
	if !ok {
		doc, frag = "", anchor
	}
	if doc == "" || (doc == o.Page && o.LinkPrefix == "") {
		return o.LinkPrefix + "#" + frag
	}
	if o.PageURL != nil {
		doc = o.PageURL(doc)
	}
	return o.LinkPrefix + doc + "#" + frag
}

// Links returns every category segment with a link, in display order.
func (p Production) Links() []Segment {
	var out []Segment
	for _, line := range p.Lines {
		for _, s := range line.Segments {
			if s.Kind == SegCategory && s.Href != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
