package document

import (
	"testing"

	"grammarref/internal/source"
)

const chapter = `# Declarations

Getters are described by [*getter-clause*](#getter-clause) and friends.

## Grammar of a getter-setter block {#grammar-gsb}

> *getter-setter-block* → **` + "`{`" + `** *getter-clause* *setter-clause*<sub>opt</sub> **` + "`}`" + `**
> getter-clause → ` + "`get`" + ` code-block {#getter}

` + "```swift" + `
fake-rule → not a rule
` + "```" + `

## Patterns

> pattern -> wildcard-pattern | identifier-pattern
A sentence with an arrow -> that is prose.
Devuelve → valor
*tuple-pattern* → ( tuple-pattern-element-list_opt ) {#tuple}
See also [*pattern*](patterns.md#pattern).
`

func extractChapter(t *testing.T) (*source.FileSet, Record) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("book/Declarations.md", []byte(chapter))
	return fs, Extract(fs.Get(id))
}

func TestExtractRules(t *testing.T) {
	fs, rec := extractChapter(t)

	if rec.Slug != "declarations" {
		t.Errorf("slug: got %q", rec.Slug)
	}
	want := []struct {
		prefix string
		anchor string
	}{
		{"*getter-setter-block* →", "declarations#getter-setter-block"},
		{"getter-clause →", "declarations#getter"},
		{"pattern ->", "declarations#pattern"},
		{"*tuple-pattern* →", "declarations#tuple"},
	}
	if len(rec.Rules) != len(want) {
		for _, r := range rec.Rules {
			t.Logf("rule: %q", r.Text)
		}
		t.Fatalf("expected %d rules, got %d", len(want), len(rec.Rules))
	}
	for i, w := range want {
		r := rec.Rules[i]
		if len(r.Text) < len(w.prefix) || r.Text[:len(w.prefix)] != w.prefix {
			t.Errorf("rule %d text: got %q", i, r.Text)
		}
		if r.Anchor != w.anchor {
			t.Errorf("rule %d anchor: got %q, want %q", i, r.Anchor, w.anchor)
		}
		if got := fs.Text(r.Span); got != r.Text {
			t.Errorf("rule %d span covers %q, want %q", i, got, r.Text)
		}
	}
	if rec.Rules[1].Text != "getter-clause → `get` code-block" {
		t.Errorf("trailing anchor not stripped: %q", rec.Rules[1].Text)
	}
}

func TestExtractMentions(t *testing.T) {
	fs, rec := extractChapter(t)

	if len(rec.Mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d", len(rec.Mentions))
	}
	if rec.Mentions[0].Name != "getter-clause" || rec.Mentions[0].Target != "#getter-clause" {
		t.Errorf("mention 0: %+v", rec.Mentions[0])
	}
	if rec.Mentions[1].Name != "pattern" || rec.Mentions[1].Target != "patterns.md#pattern" {
		t.Errorf("mention 1: %+v", rec.Mentions[1])
	}
	if got := fs.Text(rec.Mentions[1].Span); got != "[*pattern*](patterns.md#pattern)" {
		t.Errorf("mention span: %q", got)
	}
}

func TestExtractSkipsFences(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		rules int
	}{
		{"backticks", "```\n> a → b\n```\n> c → d\n", 1},
		{"tildes", "~~~\n> a → b\n~~~\n", 0},
		{"mixed markers", "~~~\n```\n> a → b\n~~~\n> c → d\n", 1},
		{"unterminated", "```\n> a → b\n", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			rec := Extract(fs.Get(fs.AddVirtual("x.md", []byte(tt.text))))
			if len(rec.Rules) != tt.rules {
				t.Errorf("rules: got %d, want %d", len(rec.Rules), tt.rules)
			}
		})
	}
}

func TestExtractRuleDetection(t *testing.T) {
	tests := []struct {
		name string
		text string
		rule bool
	}{
		{"quoted bare name", "> statement → expression\n", true},
		{"nested quote", "> > statement → expression\n", true},
		{"italic name", "*statement* → expression\n", true},
		{"linked name", "[*statement*](#statement) → expression\n", true},
		{"plain prose", "Devuelve → valor\n", false},
		{"indented prose", "  statement → expression\n", false},
		{"heading", "## statement → expression\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			rec := Extract(fs.Get(fs.AddVirtual("x.md", []byte(tt.text))))
			if got := len(rec.Rules) == 1; got != tt.rule {
				t.Errorf("rule detected: got %v, want %v", got, tt.rule)
			}
		})
	}
}

// якорь заголовка не становится якорем правил под ним
func TestExtractAnchorsQualified(t *testing.T) {
	text := "## Getters {#getters}\n\n" +
		"> getter-clause → `get` code-block\n" +
		"> setter-clause → `set` code-block {#setter}\n" +
		"> other → x {#types#other}\n"
	fs := source.NewFileSet()
	rec := Extract(fs.Get(fs.AddVirtual("book/declarations.md", []byte(text))))
	want := []string{"declarations#getter-clause", "declarations#setter", "types#other"}
	if len(rec.Rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rec.Rules))
	}
	for i, w := range want {
		if rec.Rules[i].Anchor != w {
			t.Errorf("rule %d anchor: got %q, want %q", i, rec.Rules[i].Anchor, w)
		}
	}
}

func TestExtractMultiWordName(t *testing.T) {
	fs := source.NewFileSet()
	text := "> *объявление переменной* → var *имя*\n"
	rec := Extract(fs.Get(fs.AddVirtual("Объявления.md", []byte(text))))
	if len(rec.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rec.Rules))
	}
	if rec.Rules[0].Anchor != "объявления#объявление-переменной" {
		t.Errorf("anchor: got %q", rec.Rules[0].Anchor)
	}
}

func TestRecordWithFile(t *testing.T) {
	_, rec := extractChapter(t)
	moved := rec.WithFile(9)
	if moved.FileID != 9 || moved.Rules[0].Span.File != 9 || moved.Mentions[0].Span.File != 9 {
		t.Errorf("spans not rebound: %+v", moved)
	}
	if rec.Rules[0].Span.File == 9 {
		t.Errorf("original record mutated")
	}
}
