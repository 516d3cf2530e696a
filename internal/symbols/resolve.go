package symbols

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"grammarref/internal/diag"
	"grammarref/internal/grammar"
	"grammarref/internal/source"
)

// SiteKind distinguishes where a reference was found.
type SiteKind uint8

const (
	// SiteRule is a nonterminal element inside a registered rule.
	SiteRule SiteKind = iota
	// SiteMention is a name mentioned in prose.
	SiteMention
)

// RefSite identifies one reference occurrence. It is comparable and used as a
// map key.
type RefSite struct {
	Kind SiteKind
	// Owner is the symbol whose rule contains the reference (SiteRule only).
	Owner SymbolID
	// Rule indexes Owner.Rules; Mention indexes the mentions slice.
	Rule    int
	Alt     int
	Elem    int
	Mention int
	Span    source.Span
}

// Mention is a name referenced from prose rather than from a rule.
type Mention struct {
	Name string
	Span source.Span
}

// Link is a resolved reference.
type Link struct {
	Site   RefSite
	Name   string
	Target SymbolID
	Anchor string
}

// ResolveOptions tune ResolveAll.
type ResolveOptions struct {
	// Jobs bounds the number of concurrent resolution workers; <=1 is sequential.
	Jobs int
	// ReportUnused emits RefUnusedSymbol for symbols nothing references.
	ReportUnused bool
	// Roots are excluded from the unused check.
	Roots []string
	// Suggest adds a "did you mean" note to unresolved references.
	Suggest bool
}

// Resolution is the outcome of ResolveAll.
type Resolution struct {
	Links       map[RefSite]Link
	Unresolved  []RefSite
	Diagnostics []diag.Diagnostic

	table *Table
	uses  map[SymbolID]int
}

// Resolve maps a referenced name to the canonical anchor of its symbol.
func (r *Resolution) Resolve(name string) (string, bool) {
	if r == nil || r.table == nil {
		return "", false
	}
	sym, ok := r.table.Lookup(name)
	if !ok {
		return "", false
	}
	return sym.Anchor, true
}

// LinkAt returns the link recorded for site.
func (r *Resolution) LinkAt(site RefSite) (Link, bool) {
	if r == nil {
		return Link{}, false
	}
	l, ok := r.Links[site]
	return l, ok
}

// Uses reports how many references from other symbols or prose point at id.
func (r *Resolution) Uses(id SymbolID) int {
	if r == nil {
		return 0
	}
	return r.uses[id]
}

type pendingRef struct {
	site RefSite
	name string
}

type chunkResult struct {
	links      []Link
	unresolved []RefSite
	diags      []diag.Diagnostic
}

// ResolveAll binds every nonterminal in every registered rule, plus every
// prose mention, to its symbol. The table is only read. Results do not depend
// on opts.Jobs.
func ResolveAll(ctx context.Context, t *Table, mentions []Mention, opts ResolveOptions) (*Resolution, error) {
	refs := collectRefs(t, mentions)

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	if jobs > len(refs) {
		jobs = max(len(refs), 1)
	}
	chunk := (len(refs) + jobs - 1) / jobs
	results := make([]chunkResult, jobs)

	var names []string
	if opts.Suggest {
		names = allNames(t)
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := range jobs {
		lo := min(w*chunk, len(refs))
		hi := min(lo+chunk, len(refs))
		g.Go(func() error {
			for _, ref := range refs[lo:hi] {
				if err := gctx.Err(); err != nil {
					return err
				}
				resolveOne(t, ref, names, &results[w])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Resolution{
		Links: make(map[RefSite]Link, len(refs)),
		table: t,
		uses:  make(map[SymbolID]int),
	}
	for _, part := range results {
		for _, l := range part.links {
			res.Links[l.Site] = l
			if l.Site.Kind == SiteMention || l.Site.Owner != l.Target {
				res.uses[l.Target]++
			}
		}
		res.Unresolved = append(res.Unresolved, part.unresolved...)
		res.Diagnostics = append(res.Diagnostics, part.diags...)
	}

	if opts.ReportUnused {
		res.reportUnused(opts.Roots)
	}
	return res, nil
}

func collectRefs(t *Table, mentions []Mention) []pendingRef {
	var refs []pendingRef
	for _, id := range t.Symbols.IDs() {
		sym := t.Symbols.Get(id)
		for ri, rule := range sym.Rules {
			rule.References(func(alt, elem int, e grammar.Element) {
				refs = append(refs, pendingRef{
					site: RefSite{Kind: SiteRule, Owner: id, Rule: ri, Alt: alt, Elem: elem, Span: e.Span},
					name: e.Text,
				})
			})
		}
	}
	for i, m := range mentions {
		refs = append(refs, pendingRef{
			site: RefSite{Kind: SiteMention, Rule: -1, Alt: -1, Elem: -1, Mention: i, Span: m.Span},
			name: m.Name,
		})
	}
	return refs
}

func resolveOne(t *Table, ref pendingRef, names []string, out *chunkResult) {
	id, ok := t.LookupID(ref.name)
	if ok {
		out.links = append(out.links, Link{
			Site:   ref.site,
			Name:   grammar.NormalizeName(ref.name),
			Target: id,
			Anchor: t.Symbols.Get(id).Anchor,
		})
		return
	}
	out.unresolved = append(out.unresolved, ref.site)

	b := diag.NewReportBuilder(nil, diag.SevError, diag.RefUnresolvedReference, ref.site.Span,
		fmt.Sprintf("reference to undefined category %q", ref.name)).
		WithSubject(grammar.NormalizeName(ref.name))
	if ref.site.Kind == SiteRule {
		owner := t.Symbols.Get(ref.site.Owner)
		b = b.WithNote(owner.Span, fmt.Sprintf("used in the definition of %q", t.Name(owner)))
	}
	if guess := closestName(ref.name, names); guess != "" {
		if sym, ok := t.Lookup(guess); ok {
			b = b.WithNote(sym.Span, fmt.Sprintf("did you mean %q?", guess))
		}
	}
	out.diags = append(out.diags, b.Diagnostic())
}

func (r *Resolution) reportUnused(roots []string) {
	skip := make(map[SymbolID]bool, len(roots))
	for _, name := range roots {
		if id, ok := r.table.LookupID(name); ok {
			skip[id] = true
		}
	}
	for _, id := range r.table.Symbols.IDs() {
		if skip[id] || r.uses[id] > 0 {
			continue
		}
		sym := r.table.Symbols.Get(id)
		name := r.table.Name(sym)
		r.Diagnostics = append(r.Diagnostics, diag.NewReportBuilder(nil, diag.SevInfo, diag.RefUnusedSymbol, sym.Span,
			fmt.Sprintf("category %q is never referenced", name)).
			WithSubject(name).
			WithAnchors(sym.Anchor).
			Diagnostic())
	}
}

func allNames(t *Table) []string {
	out := make([]string, 0, t.Len())
	for _, sym := range t.All() {
		out = append(out, t.Name(sym))
	}
	return out
}
