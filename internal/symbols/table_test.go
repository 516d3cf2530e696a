package symbols

import (
	"strings"
	"testing"

	"grammarref/internal/diag"
	"grammarref/internal/grammar"
	"grammarref/internal/source"
)

func mustRule(t *testing.T, file source.FileID, raw string) *grammar.Rule {
	t.Helper()
	bag := diag.NewBag(0)
	rule, ok := grammar.ParseRule(raw, source.Span{File: file, End: uint32(len(raw))}, diag.BagReporter{Bag: bag})
	if !ok {
		t.Fatalf("ParseRule(%q): %d diagnostics", raw, bag.Len())
	}
	return rule
}

func newTestTable() (*Table, *diag.Bag) {
	bag := diag.NewBag(0)
	return NewTable(Hints{}, nil, diag.BagReporter{Bag: bag}), bag
}

func TestRegisterAndLookup(t *testing.T) {
	table, bag := newTestTable()
	rule := mustRule(t, 1, "getter-clause → get code-block")
	id := table.Register("getter-clause", "declarations#getter-clause", rule)

	if !id.IsValid() {
		t.Fatalf("expected valid symbol ID")
	}
	sym, ok := table.Lookup("getter-clause")
	if !ok {
		t.Fatalf("lookup failed")
	}
	if sym.Anchor != "declarations#getter-clause" {
		t.Errorf("anchor: got %q", sym.Anchor)
	}
	if len(sym.Rules) != 1 || sym.Rules[0] != rule {
		t.Errorf("rules: got %v", sym.Rules)
	}
	if sym.Document != 1 {
		t.Errorf("document: got %d", sym.Document)
	}
	if _, ok := table.Lookup("setter-clause"); ok {
		t.Errorf("unexpected symbol setter-clause")
	}
	if bag.Len() != 0 {
		t.Errorf("unexpected diagnostics: %d", bag.Len())
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

// Сценарий: одно имя определено на двух разных якорях.
func TestRegisterConflictingAnchor(t *testing.T) {
	table, bag := newTestTable()
	table.Register("X", "P1", mustRule(t, 1, "X → a"))
	table.Register("X", "P2", mustRule(t, 2, "X → b"))

	sym, ok := table.Lookup("X")
	if !ok {
		t.Fatalf("lookup failed")
	}
	if sym.Anchor != "P1" {
		t.Fatalf("canonical anchor: got %q, want P1", sym.Anchor)
	}
	alts := sym.Alternatives()
	if len(alts) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(alts))
	}
	if alts[0].PlainText() != "a" || alts[1].PlainText() != "b" {
		t.Errorf("alternatives: got %q, %q", alts[0].PlainText(), alts[1].PlainText())
	}
	if got := sym.ConflictingAnchors(); len(got) != 1 || got[0] != "P2" {
		t.Errorf("conflicting anchors: got %v", got)
	}

	items := bag.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(items))
	}
	d := items[0]
	if d.Code != diag.RefDuplicateDefinition || d.Severity != diag.SevError {
		t.Errorf("diagnostic: got %s %s", d.Severity, d.Code.ID())
	}
	if d.Subject != "X" {
		t.Errorf("subject: got %q", d.Subject)
	}
	if len(d.Anchors) != 2 || d.Anchors[0] != "P1" || d.Anchors[1] != "P2" {
		t.Errorf("anchors: got %v", d.Anchors)
	}
	if d.Primary.File != 2 {
		t.Errorf("primary should point at the later definition, got file %d", d.Primary.File)
	}
	if len(d.Notes) != 1 || d.Notes[0].Span.File != 1 {
		t.Errorf("expected a note at the first definition, got %+v", d.Notes)
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRegisterSameAnchorMergesRules(t *testing.T) {
	table, bag := newTestTable()
	table.Register("X", "P1", mustRule(t, 1, "X → a"))
	table.Register("X", "P1", mustRule(t, 1, "X → b c"))

	sym, _ := table.Lookup("X")
	if len(sym.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(sym.Rules))
	}
	if bag.Len() != 0 {
		t.Fatalf("same anchor must not report duplicates, got %d", bag.Len())
	}
}

func TestRegisterIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		anchor string
		diags  int
	}{
		{"canonical", "P1", 0},
		{"conflicting", "P2", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, bag := newTestTable()
			table.Register("X", "P1", mustRule(t, 1, "X → a"))
			table.Register("X", tt.anchor, mustRule(t, 2, "X → b"))
			before := bag.Len()
			sym, _ := table.Lookup("X")
			rules := len(sym.Rules)

			// повторная регистрация той же тройки ничего не меняет
			table.Register("X", tt.anchor, mustRule(t, 3, "X → b"))

			sym, _ = table.Lookup("X")
			if len(sym.Rules) != rules {
				t.Errorf("rules changed: %d -> %d", rules, len(sym.Rules))
			}
			if bag.Len() != before || before != tt.diags {
				t.Errorf("diagnostics: before %d after %d, want %d", before, bag.Len(), tt.diags)
			}
			if table.Len() != 1 {
				t.Errorf("expected 1 symbol, got %d", table.Len())
			}
		})
	}
}

func TestLookupNormalizesName(t *testing.T) {
	table, _ := newTestTable()
	table.Register("объявление  переменной", "decl#var", mustRule(t, 1, "*объявление переменной* → var"))

	if _, ok := table.Lookup("объявление переменной"); !ok {
		t.Fatalf("lookup with single space failed")
	}
	if _, ok := table.Lookup(" объявление\tпеременной "); !ok {
		t.Fatalf("lookup with irregular whitespace failed")
	}
}

func TestAllIsDeterministic(t *testing.T) {
	table, _ := newTestTable()
	names := []string{"c", "a", "b"}
	for _, n := range names {
		table.Register(n, "doc#"+n, mustRule(t, 1, n+" → x"))
	}
	all := table.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 symbols, got %d", len(all))
	}
	var got []string
	for _, sym := range all {
		got = append(got, table.Name(sym))
	}
	if strings.Join(got, ",") != "c,a,b" {
		t.Errorf("order: got %v", got)
	}
}

func TestValidateDetectsBrokenIndex(t *testing.T) {
	table, _ := newTestTable()
	table.Register("a", "doc#a", mustRule(t, 1, "a → x"))
	table.Symbols.Get(1).Anchor = ""

	err := table.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if !strings.Contains(err.Error(), "empty anchor") {
		t.Errorf("unexpected error: %v", err)
	}
}
