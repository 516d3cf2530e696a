package driver

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync/atomic"

	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"grammarref/internal/diag"
	"grammarref/internal/document"
	"grammarref/internal/grammar"
	"grammarref/internal/observ"
	"grammarref/internal/source"
	"grammarref/internal/symbols"
)

var log = commonlog.GetLogger("grammarref.driver")

// Options tune Check.
type Options struct {
	// Jobs bounds parallel document workers; <=0 means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps each per-document bag; 0 is unlimited.
	MaxDiagnostics int
	// BaseDir is used for relative paths in reports.
	BaseDir string
	Cache   *DiskCache

	ReportUnused bool
	Roots        []string
	Suggest      bool
	// Validate runs the symbol table self-check after registration.
	Validate bool
	// Timings appends an OBS9001 diagnostic with phase durations.
	Timings bool

	Observer PhaseObserver
}

// ParsedRule is a rule line that parsed successfully.
type ParsedRule struct {
	Raw    document.RawRule
	Rule   *grammar.Rule
	Symbol symbols.SymbolID
}

// Document is one chapter after extraction and parsing.
type Document struct {
	Path   string
	FileID source.FileID
	Record document.Record
	Rules  []ParsedRule
	Bag    *diag.Bag
	Cached bool
}

// Result is everything Check produced.
type Result struct {
	FileSet    *source.FileSet
	Documents  []Document
	Table      *symbols.Table
	Resolution *symbols.Resolution
	Mentions   []symbols.Mention
	Collector  *diag.Collector
	Timer      *observ.Timer
}

// Check loads, extracts, parses, registers and resolves the given chapters.
// Grammar problems end up in Result.Collector; the returned error is reserved
// for cancellation and internal inconsistencies.
func Check(ctx context.Context, paths []string, opts Options) (*Result, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	res := &Result{
		FileSet:   source.NewFileSetWithBase(opts.BaseDir),
		Collector: &diag.Collector{},
		Timer:     observ.NewTimer(),
	}
	ioBag := diag.NewBag(opts.MaxDiagnostics)

	// load: FileSet is not safe for concurrent writers, so files are read up front.
	idx := res.Timer.Begin("load")
	opts.Observer.emit(PhaseEvent{Name: "load", Status: PhaseStart, Total: len(sorted)})
	for _, path := range sorted {
		id, err := res.FileSet.Load(path)
		if err != nil {
			log.Errorf("load %s: %v", path, err)
			diag.ReportError(diag.BagReporter{Bag: ioBag}, diag.IOLoadFileError, source.Span{},
				fmt.Sprintf("failed to load %s: %v", path, err)).
				WithSubject(path).
				Emit()
			continue
		}
		res.Documents = append(res.Documents, Document{Path: path, FileID: id})
	}
	elapsed := res.Timer.End(idx, len(res.Documents), "")
	opts.Observer.emit(PhaseEvent{Name: "load", Status: PhaseEnd, Elapsed: elapsed, Done: len(res.Documents), Total: len(sorted)})

	if err := res.parseDocuments(ctx, jobs, opts); err != nil {
		return nil, err
	}

	tableBag := diag.NewBag(opts.MaxDiagnostics)
	if err := res.register(tableBag, opts); err != nil {
		return nil, err
	}

	idx = res.Timer.Begin("resolve")
	opts.Observer.emit(PhaseEvent{Name: "resolve", Status: PhaseStart})
	for _, d := range res.Documents {
		for _, m := range d.Record.Mentions {
			res.Mentions = append(res.Mentions, symbols.Mention{Name: m.Name, Span: m.Span})
		}
	}
	resolution, err := symbols.ResolveAll(ctx, res.Table, res.Mentions, symbols.ResolveOptions{
		Jobs:         jobs,
		ReportUnused: opts.ReportUnused,
		Roots:        opts.Roots,
		Suggest:      opts.Suggest,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	res.Resolution = resolution
	elapsed = res.Timer.End(idx, len(resolution.Links)+len(resolution.Unresolved), "")
	opts.Observer.emit(PhaseEvent{Name: "resolve", Status: PhaseEnd, Elapsed: elapsed})

	res.Collector.Collect(ioBag)
	for _, d := range res.Documents {
		res.Collector.Collect(d.Bag)
	}
	res.Collector.Collect(tableBag, diag.List(resolution.Diagnostics))

	if opts.Timings {
		timingBag := diag.NewBag(0)
		appendTimingDiagnostic(timingBag, timingPayload{Kind: "check", Report: res.Timer.Report()})
		res.Collector.Collect(timingBag)
	}
	log.Infof("checked %d documents, %d symbols, %d diagnostics", len(res.Documents), res.Table.Len(), res.Collector.Len())
	return res, nil
}

func (r *Result) parseDocuments(ctx context.Context, jobs int, opts Options) error {
	idx := r.Timer.Begin("parse")
	total := len(r.Documents)
	opts.Observer.emit(PhaseEvent{Name: "parse", Status: PhaseStart, Total: total})

	var done, cached, rules atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(jobs, total), 1))
	for i := range r.Documents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// индекс i уникален для горутины, мьютекс не нужен
			d := &r.Documents[i]
			d.Bag = diag.NewBag(opts.MaxDiagnostics)
			file := r.FileSet.Get(d.FileID)
			d.Record, d.Cached = extractCached(opts.Cache, file, diag.BagReporter{Bag: d.Bag})
			if d.Cached {
				cached.Add(1)
			}
			reporter := diag.BagReporter{Bag: d.Bag}
			for _, raw := range d.Record.Rules {
				rule, ok := grammar.ParseRule(raw.Text, raw.Span, reporter)
				if !ok {
					continue
				}
				rule.Anchor = raw.Anchor
				d.Rules = append(d.Rules, ParsedRule{Raw: raw, Rule: rule})
			}
			rules.Add(int64(len(d.Rules)))
			n := done.Add(1)
			opts.Observer.emit(PhaseEvent{Name: "parse", Status: PhaseProgress, Done: int(n), Total: total})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	note := ""
	if c := cached.Load(); c > 0 {
		note = fmt.Sprintf("%d cached", c)
	}
	elapsed := r.Timer.End(idx, int(rules.Load()), note)
	opts.Observer.emit(PhaseEvent{Name: "parse", Status: PhaseEnd, Elapsed: elapsed, Done: total, Total: total})
	return nil
}

// register runs on one goroutine in sorted path order so first-writer-wins
// does not depend on which worker finished first.
func (r *Result) register(bag *diag.Bag, opts Options) error {
	idx := r.Timer.Begin("register")
	opts.Observer.emit(PhaseEvent{Name: "register", Status: PhaseStart})
	count := 0
	for _, d := range r.Documents {
		count += len(d.Rules)
	}
	r.Table = symbols.NewTable(symbols.Hints{Symbols: uint(count)}, nil, diag.NewDedupReporter(diag.BagReporter{Bag: bag}))
	for i := range r.Documents {
		d := &r.Documents[i]
		for j := range d.Rules {
			pr := &d.Rules[j]
			pr.Symbol = r.Table.Register(pr.Rule.Name, pr.Raw.Anchor, pr.Rule)
		}
	}
	if opts.Validate {
		if err := r.Table.Validate(); err != nil {
			return fmt.Errorf("symbol table: %w", err)
		}
	}
	elapsed := r.Timer.End(idx, r.Table.Len(), "")
	opts.Observer.emit(PhaseEvent{Name: "register", Status: PhaseEnd, Elapsed: elapsed})
	return nil
}

func extractCached(cache *DiskCache, file *source.File, r diag.Reporter) (document.Record, bool) {
	if cache == nil {
		return document.Extract(file), false
	}
	key := CacheKey(file.Hash)
	var payload DiskPayload
	hit, err := cache.Get(key, file.Hash, &payload)
	if err != nil {
		log.Warningf("cache read for %s: %v", file.Path, err)
		diag.ReportWarning(r, diag.IOCacheError, source.Span{File: file.ID},
			fmt.Sprintf("ignoring unreadable cache entry: %v", err)).Emit()
	}
	if hit {
		log.Debugf("cache hit for %s", file.Path)
		rec := payload.Record.WithFile(file.ID)
		rec.Path = file.Path
		return rec, true
	}
	rec := document.Extract(file)
	if err := cache.Put(key, &DiskPayload{Schema: diskCacheSchemaVersion, ContentHash: file.Hash, Record: rec}); err != nil {
		log.Warningf("cache write for %s: %v", file.Path, err)
		diag.ReportWarning(r, diag.IOCacheError, source.Span{File: file.ID},
			fmt.Sprintf("failed to write cache entry: %v", err)).Emit()
	}
	return rec, false
}
