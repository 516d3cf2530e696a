package grammar

import (
	"grammarref/internal/source"
)

// ElementKind tags an Element.
type ElementKind uint8

const (
	ElemInvalid ElementKind = iota
	ElemTerminal
	ElemNonterminal
)

func (k ElementKind) String() string {
	switch k {
	case ElemTerminal:
		return "terminal"
	case ElemNonterminal:
		return "nonterminal"
	default:
		return "invalid"
	}
}

// Element is one item of an alternative. Text is the literal for terminals and
// the normalised symbol name for nonterminals.
type Element struct {
	Kind     ElementKind
	Text     string
	Optional bool
	Span     source.Span
}

// Terminal builds a literal element.
func Terminal(text string) Element {
	return Element{Kind: ElemTerminal, Text: text}
}

// Nonterminal builds a category reference.
func Nonterminal(name string, optional bool) Element {
	return Element{Kind: ElemNonterminal, Text: NormalizeName(name), Optional: optional}
}

func (e Element) IsTerminal() bool    { return e.Kind == ElemTerminal }
func (e Element) IsNonterminal() bool { return e.Kind == ElemNonterminal }

// Equal compares structure only; spans are ignored.
func (e Element) Equal(other Element) bool {
	return e.Kind == other.Kind && e.Text == other.Text && e.Optional == other.Optional
}

// Alternative is a non-empty ordered sequence of elements.
type Alternative struct {
	Elements []Element
	Span     source.Span
}

func (a Alternative) Equal(other Alternative) bool {
	if len(a.Elements) != len(other.Elements) {
		return false
	}
	for i := range a.Elements {
		if !a.Elements[i].Equal(other.Elements[i]) {
			return false
		}
	}
	return true
}

// Rule is one parsed rule line. Anchor is filled in by whoever knows where the
// line lives (the document extractor); the parser leaves it empty.
type Rule struct {
	Name         string
	NameSpan     source.Span
	Anchor       string
	Alternatives []Alternative
	Span         source.Span
}

// Equal compares name and alternatives structurally. Anchors and spans are ignored.
func (r *Rule) Equal(other *Rule) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Name == other.Name && EqualAlternatives(r.Alternatives, other.Alternatives)
}

// EqualAlternatives compares two alternative lists in order.
func EqualAlternatives(a, b []Alternative) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// References calls fn for every nonterminal element, in order, with its
// alternative and element indices.
func (r *Rule) References(fn func(alt, elem int, e Element)) {
	if r == nil {
		return
	}
	for ai, alt := range r.Alternatives {
		for ei, e := range alt.Elements {
			if e.IsNonterminal() {
				fn(ai, ei, e)
			}
		}
	}
}
