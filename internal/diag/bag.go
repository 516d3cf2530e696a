package diag

import (
	"sort"
	"strings"

	"grammarref/internal/source"
)

// Bag is a bounded, ordered store of diagnostics. It is not safe for concurrent
// use; the driver gives every worker its own Bag and merges afterwards.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag that keeps at most max diagnostics (0 = unlimited).
func NewBag(max int) *Bag {
	capHint := max
	if capHint <= 0 || capHint > 64 {
		capHint = 16
	}
	return &Bag{
		items: make([]Diagnostic, 0, capHint),
		max:   max,
	}
}

// Add добавляет диагностику, учитывая лимит.
// Возвращает false, если диагностика не добавлена (достигнут лимит).
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// HasErrors возвращает true, если есть хотя бы одна диагностика с Severity >= Error
func (b *Bag) HasErrors() bool {
	return b.HasAtLeast(SevError)
}

// HasWarnings возвращает true, если есть хотя бы одна диагностика с Severity >= Warning
func (b *Bag) HasWarnings() bool {
	return b.HasAtLeast(SevWarning)
}

// HasAtLeast reports whether any diagnostic reaches sev.
func (b *Bag) HasAtLeast(sev Severity) bool {
	for i := range b.items {
		if b.items[i].Severity >= sev {
			return true
		}
	}
	return false
}

func (b *Bag) Len() int {
	return len(b.items)
}

// Items возвращает read-only slice диагностик.
// ВАЖНО: не модифицируйте возвращаемый срез! (он указывает на внутренний массив Bag)
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Diagnostics returns a copy of the stored diagnostics.
func (b *Bag) Diagnostics() []Diagnostic {
	if b == nil {
		return nil
	}
	return append([]Diagnostic(nil), b.items...)
}

// SortDiagnostics orders ds in place.
func SortDiagnostics(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		di, dj := ds[i], ds[j]
		if di.Primary != dj.Primary {
			return di.Primary.Less(dj.Primary)
		}
		// по severity по убыванию: Error > Warning > Info
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		if di.Code != dj.Code {
			return di.Code < dj.Code
		}
		if di.Subject != dj.Subject {
			return di.Subject < dj.Subject
		}
		return di.Message < dj.Message
	})
}

type bagKey struct {
	code    Code
	primary string
	subject string
	msg     string
}

// dedup drops repeated diagnostics. Diagnostics without a file keep their
// duplicates: their spans all collapse to 0:0-0 and cannot tell sites apart.
func dedup(ds []Diagnostic) []Diagnostic {
	seen := make(map[bagKey]bool, len(ds))
	out := make([]Diagnostic, 0, len(ds))
	for _, d := range ds {
		if d.Primary.File == source.NoFileID {
			out = append(out, d)
			continue
		}
		key := bagKey{
			code:    d.Code,
			primary: d.Primary.String(),
			subject: d.Subject,
			msg:     strings.TrimSpace(d.Message),
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}
