package driver

import (
	"strings"

	"grammarref/internal/diag"
	"grammarref/internal/source"
	"grammarref/internal/store"
	"grammarref/internal/symbols"
)

// Graph flattens the result into rows for store.ExportSQLite and
// store.WriteJSON. Row ids follow symbol registration order.
func (r *Result) Graph(book string) store.Graph {
	g := store.Graph{
		Book:        book,
		Documents:   make([]store.DocumentRow, 0, len(r.Documents)),
		Diagnostics: []store.DiagnosticRow{},
		References:  []store.ReferenceRow{},
	}
	for _, d := range r.Documents {
		g.Documents = append(g.Documents, store.DocumentRow{
			ID:   int(d.FileID),
			Path: r.relPath(d.FileID),
			Slug: d.Record.Slug,
		})
	}

	ids := r.Table.Symbols.IDs()
	g.Symbols = make([]store.SymbolRow, 0, len(ids))
	g.Rules = []store.RuleRow{}
	for _, id := range ids {
		sym := r.Table.Symbols.Get(id)
		g.Symbols = append(g.Symbols, store.SymbolRow{
			ID:         int(id),
			Name:       r.Table.Name(sym),
			Anchor:     sym.Anchor,
			DocumentID: int(sym.Document),
			Uses:       r.Resolution.Uses(id),
		})
		for ri, rule := range sym.Rules {
			ruleID := len(g.Rules) + 1
			anchor := rule.Anchor
			if anchor == "" {
				anchor = sym.Anchor
			}
			start, _ := r.FileSet.Resolve(rule.Span)
			g.Rules = append(g.Rules, store.RuleRow{
				ID:         ruleID,
				SymbolID:   int(id),
				DocumentID: int(rule.Span.File),
				Anchor:     anchor,
				Line:       start.Line,
				Plain:      rule.PlainText(),
			})
			for ai, alt := range rule.Alternatives {
				for ei, e := range alt.Elements {
					if !e.IsNonterminal() {
						continue
					}
					row := store.ReferenceRow{
						RuleID:      ruleID,
						Alternative: ai,
						Element:     ei,
						Name:        e.Text,
						Optional:    e.Optional,
					}
					site := symbols.RefSite{Kind: symbols.SiteRule, Owner: id, Rule: ri, Alt: ai, Elem: ei, Span: e.Span}
					if link, ok := r.Resolution.LinkAt(site); ok {
						row.TargetID = int(link.Target)
						row.Anchor = link.Anchor
					}
					g.References = append(g.References, row)
				}
			}
		}
	}

	for _, d := range r.Collector.Diagnostics() {
		g.Diagnostics = append(g.Diagnostics, r.diagnosticRow(d))
	}
	return g
}

func (r *Result) diagnosticRow(d diag.Diagnostic) store.DiagnosticRow {
	row := store.DiagnosticRow{
		Code:     d.Code.ID(),
		Severity: strings.ToLower(d.Severity.String()),
		Kind:     d.Code.Kind().String(),
		Subject:  d.Subject,
		Message:  d.Message,
	}
	if f := r.FileSet.Get(d.Primary.File); f != nil {
		start, _ := r.FileSet.Resolve(d.Primary)
		row.Path = r.relPath(d.Primary.File)
		row.Line = start.Line
		row.Col = start.Col
	}
	return row
}

func (r *Result) relPath(id source.FileID) string {
	f := r.FileSet.Get(id)
	if f == nil {
		return ""
	}
	return f.FormatPath("relative", r.FileSet.BaseDir())
}
