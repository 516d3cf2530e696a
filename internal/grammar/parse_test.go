package grammar

import (
	"testing"

	"grammarref/internal/diag"
	"grammarref/internal/source"
)

func parseOK(t *testing.T, raw string) *Rule {
	t.Helper()
	bag := diag.NewBag(0)
	rule, ok := ParseRule(raw, source.Span{End: uint32(len(raw))}, diag.BagReporter{Bag: bag})
	if !ok || rule == nil {
		t.Fatalf("ParseRule(%q) failed: %d diagnostics, first: %+v", raw, bag.Len(), first(bag))
	}
	if bag.Len() != 0 {
		t.Fatalf("ParseRule(%q) succeeded but reported %d diagnostics", raw, bag.Len())
	}
	return rule
}

func parseFail(t *testing.T, raw string) []diag.Diagnostic {
	t.Helper()
	bag := diag.NewBag(0)
	rule, ok := ParseRule(raw, source.Span{End: uint32(len(raw))}, diag.BagReporter{Bag: bag})
	if ok || rule != nil {
		t.Fatalf("ParseRule(%q) unexpectedly succeeded: %s", raw, rule.PlainText())
	}
	if bag.Len() == 0 {
		t.Fatalf("ParseRule(%q) failed without diagnostics", raw)
	}
	return bag.Items()
}

func first(bag *diag.Bag) diag.Diagnostic {
	if bag.Len() == 0 {
		return diag.Diagnostic{}
	}
	return bag.Items()[0]
}

func TestParseRuleGetterSetterBlock(t *testing.T) {
	rule := parseOK(t, "getter-setter-block → { getter-clause setter-clause_opt }")

	if rule.Name != "getter-setter-block" {
		t.Fatalf("name: got %q", rule.Name)
	}
	if len(rule.Alternatives) != 1 {
		t.Fatalf("expected 1 alternative, got %d", len(rule.Alternatives))
	}
	want := []Element{
		Terminal("{"),
		Nonterminal("getter-clause", false),
		Nonterminal("setter-clause", true),
		Terminal("}"),
	}
	got := rule.Alternatives[0].Elements
	if len(got) != len(want) {
		t.Fatalf("expected %d elements, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("element %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseRuleMarkupSpellings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"sub opt", "*getter-setter-block* → **`{`** *getter-clause* *setter-clause*<sub>opt</sub> **`}`**"},
		{"underscore opt", "*getter-setter-block* → **{** *getter-clause* *setter-clause*_opt_ **}**"},
		{"question opt", "*getter-setter-block* → **`{`** *getter-clause* *setter-clause*_?_ **`}`**"},
		{"links", "*getter-setter-block* → { [*getter-clause*](#getter-clause) [*setter-clause*](expressions.md#setter-clause)<sub>opt</sub> }"},
		{"ascii arrow", "getter-setter-block -> `{` getter-clause setter-clause_opt `}`"},
	}
	want := parseOK(t, "getter-setter-block → { getter-clause setter-clause_opt }")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseOK(t, tt.raw)
			if !got.Equal(want) {
				t.Errorf("got %s, want %s", got.PlainText(), want.PlainText())
			}
		})
	}
}

func TestParseRuleAlternativeOrder(t *testing.T) {
	rule := parseOK(t, "access-level-modifier → `private` | `fileprivate` | `internal` | `public` | `open`")
	want := []string{"private", "fileprivate", "internal", "public", "open"}
	if len(rule.Alternatives) != len(want) {
		t.Fatalf("expected %d alternatives, got %d", len(want), len(rule.Alternatives))
	}
	for i, w := range want {
		e := rule.Alternatives[i].Elements[0]
		if !e.IsTerminal() || e.Text != w {
			t.Errorf("alternative %d: got %+v, want terminal %q", i, e, w)
		}
	}
}

func TestParseRuleBarInsideTerminal(t *testing.T) {
	rule := parseOK(t, "*infix-operator* → **`|`** | **`||`** *operator-tail*_opt_")
	if len(rule.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(rule.Alternatives))
	}
	if rule.Alternatives[0].Elements[0].Text != "|" {
		t.Errorf("expected literal bar, got %+v", rule.Alternatives[0].Elements[0])
	}
}

func TestParseRuleLaterArrowIsTerminal(t *testing.T) {
	rule := parseOK(t, "function-result → -> attributes_opt type")
	elems := rule.Alternatives[0].Elements
	if len(elems) != 3 || !elems[0].IsTerminal() || elems[0].Text != "->" {
		t.Fatalf("unexpected elements %+v", elems)
	}
}

func TestParseRuleTranslatedName(t *testing.T) {
	rule := parseOK(t, "*getter-setter 块* → { *getter 子句* }")
	if rule.Name != "getter-setter 块" {
		t.Fatalf("name: got %q", rule.Name)
	}
	if rule.Alternatives[0].Elements[1].Text != "getter 子句" {
		t.Fatalf("element: got %+v", rule.Alternatives[0].Elements[1])
	}
}

func TestParseRuleEmptyAlternative(t *testing.T) {
	ds := parseFail(t, "name → | b")
	if len(ds) != 1 || ds[0].Code != diag.RuleEmptyAlternative {
		t.Fatalf("expected one EmptyAlternative, got %+v", ds)
	}

	ds = parseFail(t, "name → a || b |")
	if len(ds) != 2 {
		t.Fatalf("expected two EmptyAlternative diagnostics, got %d", len(ds))
	}
}

// нулевой span: все под-спаны совпадают, различаются только сообщения
func TestParseRuleEmptyAlternativesWithoutSpan(t *testing.T) {
	bag := diag.NewBag(0)
	if _, ok := ParseRule("a → | | b", source.Span{}, diag.BagReporter{Bag: bag}); ok {
		t.Fatalf("expected failure")
	}
	var c diag.Collector
	c.Collect(bag)
	ds := c.Diagnostics()
	if len(ds) != 2 {
		t.Fatalf("expected 2 EmptyAlternative diagnostics, got %+v", ds)
	}
	if ds[0].Message != "alternative 1 is empty" || ds[1].Message != "alternative 2 is empty" {
		t.Errorf("messages: %q %q", ds[0].Message, ds[1].Message)
	}
}

func TestParseRuleMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		code diag.Code
	}{
		{"no arrow", "name a b", diag.RuleMissingArrow},
		{"no name", "→ a", diag.RuleMissingName},
		{"two names", "*a* *b* → c", diag.RuleMissingName},
		{"optional terminal", "a → `x`_opt", diag.RuleOptionalTerminal},
		{"dangling optional", "a → _opt_ b", diag.RuleDanglingOptional},
		{"unterminated bold", "a → **x b", diag.RuleUnterminatedSpan},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := parseFail(t, tt.raw)
			found := false
			for _, d := range ds {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s, got %+v", tt.code.ID(), ds)
			}
		})
	}
}

func TestParseRuleDiagnosticSpan(t *testing.T) {
	raw := "name → | b"
	base := source.Span{File: 4, Start: 100, End: 100 + uint32(len(raw))}
	bag := diag.NewBag(0)
	ParseRule(raw, base, diag.BagReporter{Bag: bag})
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	sp := bag.Items()[0].Primary
	if sp.File != 4 || sp.Start < base.Start || sp.End > base.End {
		t.Fatalf("span %v outside rule span %v", sp, base)
	}
}

func TestParseRuleDeterministic(t *testing.T) {
	raw := "*pattern* → *wildcard-pattern* *type-annotation*_opt_ | *identifier-pattern* | `(` *tuple-pattern-element-list*_opt `)`"
	a := parseOK(t, raw)
	b := parseOK(t, raw)
	if !a.Equal(b) {
		t.Fatalf("parsing is not deterministic: %s vs %s", a.PlainText(), b.PlainText())
	}
}
