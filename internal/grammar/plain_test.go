package grammar

import (
	"testing"
)

func TestPlainTextRoundTrip(t *testing.T) {
	rules := []string{
		"getter-setter-block → { getter-clause setter-clause_opt }",
		"*infix-operator* → **`|`** | **`||`** *operator-tail*_opt_",
		"function-result → -> attributes_opt type",
		"*getter-setter 块* → { *getter 子句*<sub>opt</sub> }",
		"wildcard-pattern → _",
		"keyword → **`class`** | **`*`** | `a b` | **[** | **<**",
		"array-type → [ type ] | [ type : type ]",
		"closure-expression → { attributes_opt closure-signature_opt statements_opt }",
	}
	for _, raw := range rules {
		t.Run(raw, func(t *testing.T) {
			original := parseOK(t, raw)
			plain := original.PlainText()
			reparsed := parseOK(t, plain)
			if !EqualAlternatives(original.Alternatives, reparsed.Alternatives) {
				t.Fatalf("round trip changed structure:\n  raw:   %s\n  plain: %s\n  again: %s", raw, plain, reparsed.PlainText())
			}
			if original.Name != reparsed.Name {
				t.Fatalf("name changed: %q -> %q", original.Name, reparsed.Name)
			}
		})
	}
}

func TestPlainTextQuotesWordLikeTerminals(t *testing.T) {
	rule := &Rule{
		Name: "class-declaration",
		Alternatives: []Alternative{{Elements: []Element{
			Terminal("class"),
			Nonterminal("class-name", false),
			Terminal("{"),
			Terminal("|"),
		}}},
	}
	want := "class-declaration → `class` class-name { `|`"
	if got := rule.PlainText(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReferencesVisitsEveryNonterminal(t *testing.T) {
	rule := parseOK(t, "a → b `x` c_opt | a | `y`")
	var names []string
	rule.References(func(alt, elem int, e Element) {
		names = append(names, e.Text)
	})
	want := []string{"b", "c", "a"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"getter-setter-block", "getter-setter-block"},
		{"Getter Setter  Block", "getter-setter-block"},
		{"getter-setter 块", "getter-setter-块"},
		{"a.b(c)", "abc"},
		{" -x- ", "x"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeNameNFC(t *testing.T) {
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"
	if NormalizeName(decomposed) != NormalizeName(composed) {
		t.Fatal("expected NFC normalisation to unify the two spellings")
	}
	if got := NormalizeName("  getter \t clause "); got != "getter clause" {
		t.Fatalf("got %q", got)
	}
}
