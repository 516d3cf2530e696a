package symbols

import (
	"grammarref/internal/grammar"
	"grammarref/internal/source"
)

// Definition is one registration of a rule for a symbol.
type Definition struct {
	Anchor string
	Rule   *grammar.Rule
}

// Symbol is a grammar category with its canonical anchor and all rules that
// define it. Rules registered under a conflicting anchor are still merged into
// Rules; Definitions keeps the anchor each one arrived with.
type Symbol struct {
	Name        source.StringID
	Anchor      string
	Document    source.FileID
	Span        source.Span
	Rules       []*grammar.Rule
	Definitions []Definition
}

// Alternatives flattens the alternatives of every rule in registration order.
func (s *Symbol) Alternatives() []grammar.Alternative {
	if s == nil {
		return nil
	}
	var out []grammar.Alternative
	for _, r := range s.Rules {
		if r != nil {
			out = append(out, r.Alternatives...)
		}
	}
	return out
}

// ConflictingAnchors returns the distinct non-canonical anchors seen for the symbol.
func (s *Symbol) ConflictingAnchors() []string {
	if s == nil {
		return nil
	}
	seen := map[string]bool{s.Anchor: true}
	var out []string
	for _, d := range s.Definitions {
		if !seen[d.Anchor] {
			seen[d.Anchor] = true
			out = append(out, d.Anchor)
		}
	}
	return out
}
