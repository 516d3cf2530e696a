package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"grammarref/internal/diag"
	"grammarref/internal/source"
)

// Summary prints the collected diagnostics grouped by kind, followed by a
// totals line. An empty collector prints only the totals.
func Summary(w io.Writer, c *diag.Collector, fs *source.FileSet, opts SummaryOpts) {
	pal := newPalette(opts.Color)
	for _, g := range c.Groups() {
		title := strings.ToUpper(g.Kind.String()[:1]) + g.Kind.String()[1:]
		fmt.Fprintf(w, "%s (%d)\n", pal.code.Sprint(title), len(g.Items))
		for i, d := range g.Items {
			if opts.PerKind > 0 && i == opts.PerKind {
				fmt.Fprintf(w, "  ... and %d more\n", len(g.Items)-i)
				break
			}
			fmt.Fprintf(w, "  %s %s %s: %s\n",
				pal.severity(d.Severity).Sprint(d.Code.ID()),
				location(fs, d.Primary, opts.PathMode),
				subjectOf(d),
				d.Message)
		}
	}
	fmt.Fprintln(w, Totals(c))
}

// Totals renders "N errors, N warnings, N infos".
func Totals(c *diag.Collector) string {
	return fmt.Sprintf("%s, %s, %s",
		plural(c.Count(diag.SevError), "error"),
		plural(c.Count(diag.SevWarning), "warning"),
		plural(c.Count(diag.SevInfo), "info"))
}

func subjectOf(d diag.Diagnostic) string {
	if d.Subject == "" {
		return "-"
	}
	return "[" + d.Subject + "]"
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
