package diag

// Source is anything that can hand over accumulated diagnostics.
type Source interface {
	Diagnostics() []Diagnostic
}

// List adapts a plain slice to Source.
type List []Diagnostic

func (l List) Diagnostics() []Diagnostic { return l }

// Policy decides which severity fails a build.
type Policy uint8

const (
	PolicyFailOnError Policy = iota
	PolicyFailOnWarning
	PolicyNever
)

// ParsePolicy accepts "error", "warning" and "never".
func ParsePolicy(s string) (Policy, bool) {
	switch s {
	case "", "error":
		return PolicyFailOnError, true
	case "warning", "warn":
		return PolicyFailOnWarning, true
	case "never", "off":
		return PolicyNever, true
	}
	return PolicyFailOnError, false
}

// Collector aggregates diagnostics from every phase after a full pass.
// The zero value is ready to use.
type Collector struct {
	items  []Diagnostic
	sorted bool
}

// Collect appends diagnostics from the given sources. Nil sources are skipped.
func (c *Collector) Collect(sources ...Source) {
	for _, src := range sources {
		if src == nil {
			continue
		}
		c.items = append(c.items, src.Diagnostics()...)
		c.sorted = false
	}
}

// Diagnostics returns the collected list, sorted and deduplicated.
func (c *Collector) Diagnostics() []Diagnostic {
	if !c.sorted {
		SortDiagnostics(c.items)
		c.items = dedup(c.items)
		c.sorted = true
	}
	return c.items
}

func (c *Collector) Len() int {
	return len(c.Diagnostics())
}

// Group is one section of a report.
type Group struct {
	Kind  Kind
	Items []Diagnostic
}

// Groups partitions diagnostics by kind in a fixed kind order; empty groups are omitted.
func (c *Collector) Groups() []Group {
	byKind := make(map[Kind][]Diagnostic)
	for _, d := range c.Diagnostics() {
		k := d.Code.Kind()
		byKind[k] = append(byKind[k], d)
	}
	order := []Kind{
		KindIO,
		KindEmptyAlternative,
		KindMalformedRule,
		KindDuplicateDefinition,
		KindUnresolvedReference,
		KindUnusedSymbol,
		KindOther,
	}
	groups := make([]Group, 0, len(byKind))
	for _, k := range order {
		if items := byKind[k]; len(items) > 0 {
			groups = append(groups, Group{Kind: k, Items: items})
		}
	}
	return groups
}

// Count returns the number of diagnostics with exactly the given severity.
func (c *Collector) Count(sev Severity) int {
	n := 0
	for _, d := range c.Diagnostics() {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Fails applies the policy to the collected diagnostics.
func (c *Collector) Fails(p Policy) bool {
	switch p {
	case PolicyNever:
		return false
	case PolicyFailOnWarning:
		return c.Count(SevWarning)+c.Count(SevError) > 0
	default:
		return c.Count(SevError) > 0
	}
}
