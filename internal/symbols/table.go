package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"grammarref/internal/diag"
	"grammarref/internal/grammar"
	"grammarref/internal/source"
)

// Hints provide optional capacity suggestions for the symbol table arena.
type Hints struct{ Symbols uint }

// Table is the canonical registry of grammar symbols across all documents.
//
// Registration is single-writer: the driver calls Register from one goroutine
// after every document has been parsed. Once registration is over, Lookup and
// All are safe for concurrent readers.
type Table struct {
	Symbols  *Symbols
	Strings  *source.Interner
	byName   map[source.StringID]SymbolID
	reporter diag.Reporter
}

// NewTable builds a fresh table. If strings is nil, a fresh interner is
// allocated; if r is nil, duplicate definitions are dropped silently.
func NewTable(h Hints, strings *source.Interner, r diag.Reporter) *Table {
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	if r == nil {
		r = diag.NopReporter{}
	}
	return &Table{
		Symbols:  NewSymbols(symCap),
		Strings:  strings,
		byName:   make(map[source.StringID]SymbolID, symCap),
		reporter: r,
	}
}

// Register adds rule to the symbol called name.
//
// The first anchor seen for a name becomes canonical. A later registration
// with a different anchor emits RefDuplicateDefinition and is merged under the
// canonical anchor. Registering an identical (name, anchor, rule) again is a
// no-op.
func (t *Table) Register(name, anchor string, rule *grammar.Rule) SymbolID {
	name = grammar.NormalizeName(name)
	nameID := t.Strings.Intern(name)

	id, exists := t.byName[nameID]
	if !exists {
		sym := Symbol{
			Name:        nameID,
			Anchor:      anchor,
			Rules:       []*grammar.Rule{rule},
			Definitions: []Definition{{Anchor: anchor, Rule: rule}},
		}
		if rule != nil {
			sym.Document = rule.Span.File
			sym.Span = ruleNameSpan(rule)
		}
		id = t.Symbols.New(&sym)
		t.byName[nameID] = id
		return id
	}

	sym := t.Symbols.Get(id)
	for _, def := range sym.Definitions {
		if def.Anchor == anchor && def.Rule.Equal(rule) {
			return id
		}
	}
	sym.Definitions = append(sym.Definitions, Definition{Anchor: anchor, Rule: rule})
	sym.Rules = append(sym.Rules, rule)

	if anchor != sym.Anchor {
		var primary source.Span
		if rule != nil {
			primary = ruleNameSpan(rule)
		}
		diag.ReportError(t.reporter, diag.RefDuplicateDefinition, primary,
			fmt.Sprintf("%q is already defined at %q; keeping it and ignoring anchor %q", name, sym.Anchor, anchor)).
			WithSubject(name).
			WithAnchors(sym.Anchor, anchor).
			WithNote(sym.Span, "first defined here").
			Emit()
	}
	return id
}

func ruleNameSpan(rule *grammar.Rule) source.Span {
	if !rule.NameSpan.Empty() {
		return rule.NameSpan
	}
	return rule.Span
}

// Lookup finds a symbol by exact name. The name is normalised the same way
// Register normalises it. Lookup never mutates the table.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	id, ok := t.LookupID(name)
	if !ok {
		return nil, false
	}
	return t.Symbols.Get(id), true
}

// LookupID is Lookup returning the arena ID.
func (t *Table) LookupID(name string) (SymbolID, bool) {
	nameID, ok := t.Strings.Find(grammar.NormalizeName(name))
	if !ok {
		return NoSymbolID, false
	}
	id, ok := t.byName[nameID]
	return id, ok
}

// All returns every symbol. The slice is in registration order, which callers
// should not rely on beyond determinism.
func (t *Table) All() []*Symbol {
	out := make([]*Symbol, 0, t.Symbols.Len())
	for _, id := range t.Symbols.IDs() {
		out = append(out, t.Symbols.Get(id))
	}
	return out
}

// Name returns the textual name of sym.
func (t *Table) Name(sym *Symbol) string {
	if sym == nil {
		return ""
	}
	return t.Strings.MustLookup(sym.Name)
}

// Len reports the number of distinct symbols.
func (t *Table) Len() int { return t.Symbols.Len() }
