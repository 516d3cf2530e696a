// Package testkit holds structural checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"grammarref/internal/document"
	"grammarref/internal/grammar"
	"grammarref/internal/source"
)

// CheckRuleInvariants runs a minimal set of invariants on a parsed rule:
// 1) the name is non-empty and NameSpan lies inside Span
// 2) there is at least one alternative and none is empty
// 3) every element has a known kind, non-empty text, and a span inside Span
// 4) only nonterminals carry the optional marker
func CheckRuleInvariants(r *grammar.Rule) error {
	if r == nil {
		return fmt.Errorf("nil rule")
	}
	if r.Name == "" {
		return fmt.Errorf("rule has empty name")
	}
	if !within(r.NameSpan, r.Span) {
		return fmt.Errorf("name span %v outside rule span %v", r.NameSpan, r.Span)
	}
	if len(r.Alternatives) == 0 {
		return fmt.Errorf("rule %q has no alternatives", r.Name)
	}
	for ai, alt := range r.Alternatives {
		if len(alt.Elements) == 0 {
			return fmt.Errorf("rule %q: alternative %d is empty", r.Name, ai)
		}
		for ei, e := range alt.Elements {
			if e.Kind != grammar.ElemTerminal && e.Kind != grammar.ElemNonterminal {
				return fmt.Errorf("rule %q: element %d.%d has kind %s", r.Name, ai, ei, e.Kind)
			}
			if e.Text == "" {
				return fmt.Errorf("rule %q: element %d.%d has empty text", r.Name, ai, ei)
			}
			if e.Optional && e.IsTerminal() {
				return fmt.Errorf("rule %q: terminal %q marked optional", r.Name, e.Text)
			}
			if !within(e.Span, r.Span) {
				return fmt.Errorf("rule %q: element %q span %v outside %v", r.Name, e.Text, e.Span, r.Span)
			}
		}
	}
	return nil
}

// CheckRecordInvariants verifies that every span in rec points into f.
func CheckRecordInvariants(rec document.Record, f *source.File) error {
	if f == nil {
		return fmt.Errorf("nil file")
	}
	size, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		return fmt.Errorf("file too large: %w", err)
	}
	check := func(what string, sp source.Span) error {
		if sp.File != f.ID {
			return fmt.Errorf("%s span points to file %d, want %d", what, sp.File, f.ID)
		}
		if sp.Start > sp.End || sp.End > size {
			return fmt.Errorf("%s span %v out of bounds (size %d)", what, sp, size)
		}
		return nil
	}
	for _, r := range rec.Rules {
		if err := check("rule", r.Span); err != nil {
			return err
		}
		if r.Text == "" {
			return fmt.Errorf("rule at %v has empty text", r.Span)
		}
	}
	for _, m := range rec.Mentions {
		if err := check("mention", m.Span); err != nil {
			return err
		}
		if m.Name == "" {
			return fmt.Errorf("mention at %v has empty name", m.Span)
		}
	}
	return nil
}

func within(inner, outer source.Span) bool {
	return inner.File == outer.File && inner.Start >= outer.Start && inner.End <= outer.End
}
