package driver

import (
	"fmt"
	"path/filepath"
	"strings"

	"grammarref/internal/render"
	"grammarref/internal/symbols"
)

// Format selects a render backend.
type Format uint8

const (
	FormatMarkdown Format = iota
	FormatPlain
	FormatHTML
	FormatTerminal
)

// ParseFormat accepts "markdown", "plain", "html" or "terminal".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "plain", "text":
		return FormatPlain, nil
	case "html":
		return FormatHTML, nil
	case "terminal", "term":
		return FormatTerminal, nil
	default:
		return FormatMarkdown, fmt.Errorf("unknown format %q (want markdown, plain, html or terminal)", s)
	}
}

// Ext is the file extension used when writing pages in this format.
func (f Format) Ext() string {
	switch f {
	case FormatPlain, FormatTerminal:
		return ".txt"
	case FormatHTML:
		return ".html"
	default:
		return ".md"
	}
}

// Productions renders every parsed rule of d in document order.
func (r *Result) Productions(d *Document, opts render.Options) []render.Production {
	out := make([]render.Production, 0, len(d.Rules))
	for _, pr := range d.Rules {
		o := opts
		o.Anchor = pr.Raw.Anchor
		out = append(out, render.Render(pr.Rule, r.Resolution.Resolve, o))
	}
	return out
}

// PagePath is where the page of d is written in format f, relative to the
// output directory: the chapter path under the book root with f's extension.
func (r *Result) PagePath(d *Document, f Format) string {
	rel := filepath.Base(d.Path)
	if base := r.FileSet.BaseDir(); base != "" {
		if p, err := filepath.Rel(absPath(base), absPath(d.Path)); err == nil && !strings.HasPrefix(p, "..") {
			rel = p
		}
	}
	return strings.TrimSuffix(rel, filepath.Ext(rel)) + f.Ext()
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// pageOptions points links at the pages PagePath names. Anchors defined on d
// itself stay fragments; a document slug with no chapter keeps its name.
func (r *Result) pageOptions(d *Document, f Format, opts render.Options) render.Options {
	opts.Page = d.Record.Slug
	if opts.PageURL != nil {
		return opts
	}
	pages := make(map[string]string, len(r.Documents))
	for i := range r.Documents {
		doc := &r.Documents[i]
		if _, seen := pages[doc.Record.Slug]; !seen {
			pages[doc.Record.Slug] = r.PagePath(doc, f)
		}
	}
	from := filepath.Dir(r.PagePath(d, f))
	opts.PageURL = func(slug string) string {
		page, ok := pages[slug]
		if !ok {
			return slug
		}
		if rel, err := filepath.Rel(from, page); err == nil {
			page = rel
		}
		return filepath.ToSlash(page)
	}
	return opts
}

// RenderPage prints all productions of d with the chosen backend, separated
// by blank lines. Cross-document links name the pages PagePath produces.
func (r *Result) RenderPage(d *Document, f Format, opts render.Options) string {
	prods := r.Productions(d, r.pageOptions(d, f, opts))
	parts := make([]string, len(prods))
	styles := render.DefaultTerminalStyles()
	for i, p := range prods {
		switch f {
		case FormatPlain:
			parts[i] = render.Plain(p)
		case FormatHTML:
			parts[i] = render.HTML(p)
		case FormatTerminal:
			parts[i] = render.Terminal(p, styles)
		default:
			parts[i] = render.Markdown(p)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// EBNFProductions returns one production per symbol in registration order.
func (r *Result) EBNFProductions() []render.EBNFProduction {
	all := r.Table.All()
	out := make([]render.EBNFProduction, 0, len(all))
	for _, sym := range all {
		out = append(out, render.EBNFProduction{Name: r.Table.Name(sym), Alternatives: sym.Alternatives()})
	}
	return out
}

// SymbolStat summarises one symbol for listings.
type SymbolStat struct {
	ID           symbols.SymbolID
	Name         string
	Anchor       string
	Document     string
	Rules        int
	Alternatives int
	Uses         int
	Conflicts    []string
}

// SymbolStats lists every symbol with its rule and reference counts.
func (r *Result) SymbolStats() []SymbolStat {
	ids := r.Table.Symbols.IDs()
	out := make([]SymbolStat, 0, len(ids))
	for _, id := range ids {
		sym := r.Table.Symbols.Get(id)
		stat := SymbolStat{
			ID:           id,
			Name:         r.Table.Name(sym),
			Anchor:       sym.Anchor,
			Rules:        len(sym.Rules),
			Alternatives: len(sym.Alternatives()),
			Uses:         r.Resolution.Uses(id),
			Conflicts:    sym.ConflictingAnchors(),
		}
		if f := r.FileSet.Get(sym.Document); f != nil {
			stat.Document = f.FormatPath("relative", r.FileSet.BaseDir())
		}
		out = append(out, stat)
	}
	return out
}
