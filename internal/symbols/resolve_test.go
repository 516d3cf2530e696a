package symbols

import (
	"context"
	"fmt"
	"reflect"
	"testing"

	"grammarref/internal/diag"
	"grammarref/internal/source"
)

func TestResolveAllLinksEveryReference(t *testing.T) {
	table, _ := newTestTable()
	table.Register("getter-setter-block", "decl#gsb", mustRule(t, 1, "getter-setter-block → { getter-clause setter-clause_opt }"))
	table.Register("getter-clause", "decl#getter", mustRule(t, 1, "getter-clause → get"))
	table.Register("setter-clause", "decl#setter", mustRule(t, 1, "setter-clause → set"))

	res, err := ResolveAll(context.Background(), table, nil, ResolveOptions{})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if len(res.Links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(res.Links))
	}
	anchors := map[string]string{}
	for _, l := range res.Links {
		anchors[l.Name] = l.Anchor
	}
	if anchors["getter-clause"] != "decl#getter" || anchors["setter-clause"] != "decl#setter" {
		t.Errorf("anchors: %v", anchors)
	}
	if a, ok := res.Resolve("setter-clause"); !ok || a != "decl#setter" {
		t.Errorf("Resolve: got %q %v", a, ok)
	}
}

func TestResolveAllUnresolved(t *testing.T) {
	table, _ := newTestTable()
	rule := mustRule(t, 1, "Y → Z")
	table.Register("Y", "doc#Y", rule)

	res, err := ResolveAll(context.Background(), table, nil, ResolveOptions{})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(res.Diagnostics))
	}
	d := res.Diagnostics[0]
	if d.Code != diag.RefUnresolvedReference || d.Severity != diag.SevError {
		t.Errorf("diagnostic: %s %s", d.Severity, d.Code.ID())
	}
	if d.Subject != "Z" {
		t.Errorf("subject: got %q", d.Subject)
	}
	if d.Primary != rule.Alternatives[0].Elements[0].Span {
		t.Errorf("primary span: got %v", d.Primary)
	}
	if len(res.Unresolved) != 1 || len(res.Links) != 0 {
		t.Errorf("unresolved %d links %d", len(res.Unresolved), len(res.Links))
	}
	if _, ok := res.Resolve("Z"); ok {
		t.Errorf("Z must not resolve")
	}
}

func TestResolveAllRecursion(t *testing.T) {
	table, _ := newTestTable()
	table.Register("list", "doc#list", mustRule(t, 1, "list → item | item , list"))
	table.Register("item", "doc#item", mustRule(t, 1, "item → x"))

	res, err := ResolveAll(context.Background(), table, nil, ResolveOptions{ReportUnused: true, Roots: []string{"list"}})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", res.Diagnostics)
	}
	if len(res.Links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(res.Links))
	}
	listID, _ := table.LookupID("list")
	if res.Uses(listID) != 0 {
		t.Errorf("self references must not count as uses, got %d", res.Uses(listID))
	}
}

func TestResolveAllMentions(t *testing.T) {
	table, _ := newTestTable()
	table.Register("pattern", "patterns#pattern", mustRule(t, 1, "pattern → _"))
	mentions := []Mention{
		{Name: "pattern", Span: source.Span{File: 2, Start: 10, End: 17}},
		{Name: "patern", Span: source.Span{File: 2, Start: 30, End: 36}},
	}

	res, err := ResolveAll(context.Background(), table, mentions, ResolveOptions{Suggest: true, ReportUnused: true})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	site := RefSite{Kind: SiteMention, Rule: -1, Alt: -1, Elem: -1, Mention: 0, Span: mentions[0].Span}
	l, ok := res.LinkAt(site)
	if !ok || l.Anchor != "patterns#pattern" {
		t.Fatalf("mention link: %+v %v", l, ok)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %+v", res.Diagnostics)
	}
	d := res.Diagnostics[0]
	if len(d.Notes) != 1 || d.Notes[0].Msg != `did you mean "pattern"?` {
		t.Errorf("suggestion note: %+v", d.Notes)
	}
}

func TestResolveAllReportUnused(t *testing.T) {
	table, _ := newTestTable()
	table.Register("a", "doc#a", mustRule(t, 1, "a → b"))
	table.Register("b", "doc#b", mustRule(t, 1, "b → x"))
	table.Register("c", "doc#c", mustRule(t, 1, "c → x"))

	res, err := ResolveAll(context.Background(), table, nil, ResolveOptions{ReportUnused: true, Roots: []string{"a"}})
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(res.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(res.Diagnostics))
	}
	d := res.Diagnostics[0]
	if d.Code != diag.RefUnusedSymbol || d.Severity != diag.SevInfo || d.Subject != "c" {
		t.Errorf("diagnostic: %s %s %q", d.Severity, d.Code.ID(), d.Subject)
	}
}

func TestResolveAllParallelMatchesSequential(t *testing.T) {
	table, _ := newTestTable()
	for i := range 40 {
		raw := fmt.Sprintf("n%d → n%d missing%d | tail", i, (i+1)%40, i%3)
		table.Register(fmt.Sprintf("n%d", i), fmt.Sprintf("doc#n%d", i), mustRule(t, 1, raw))
	}

	seq, err := ResolveAll(context.Background(), table, nil, ResolveOptions{Jobs: 1})
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	for _, jobs := range []int{2, 3, 8, 100} {
		par, err := ResolveAll(context.Background(), table, nil, ResolveOptions{Jobs: jobs})
		if err != nil {
			t.Fatalf("jobs=%d: %v", jobs, err)
		}
		if !reflect.DeepEqual(seq.Links, par.Links) {
			t.Errorf("jobs=%d: links differ", jobs)
		}
		if !reflect.DeepEqual(seq.Diagnostics, par.Diagnostics) {
			t.Errorf("jobs=%d: diagnostics differ", jobs)
		}
	}
}

func TestResolveAllCancelled(t *testing.T) {
	table, _ := newTestTable()
	table.Register("a", "doc#a", mustRule(t, 1, "a → a"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ResolveAll(ctx, table, nil, ResolveOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestClosestName(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		want       string
	}{
		{"patern", []string{"pattern", "expression"}, "pattern"},
		{"expresion", []string{"pattern", "expression"}, "expression"},
		{"statement", []string{"pattern", "expression"}, ""},
		{"ab", []string{"ac", "xyz"}, "ac"},
	}
	for _, tt := range tests {
		if got := closestName(tt.name, tt.candidates); got != tt.want {
			t.Errorf("closestName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
