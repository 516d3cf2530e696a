package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"grammarref/internal/diag"
	"grammarref/internal/diagfmt"
	"grammarref/internal/driver"
	"grammarref/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [chapter.md|directory]...",
	Short: "Check grammar rules and cross-references",
	Long: `Extract every grammar rule from the book, register each category, resolve
every reference and report duplicates, unresolved references and malformed
rules. With no arguments the chapters come from grammarref.toml.`,
	RunE: runCheckCmd,
}

func init() {
	addCheckFlags(checkCmd)
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|json|summary)")
	checkCmd.Flags().String("fail-on", "error", "lowest severity that fails the check (error|warning|never)")
	checkCmd.Flags().String("path-mode", "relative", "how to print paths (auto|absolute|relative|basename)")
	checkCmd.Flags().Bool("with-notes", true, "include diagnostic notes in output")
	checkCmd.Flags().Bool("progress", false, "show a live progress view on a terminal")
	checkCmd.Flags().Bool("validate", false, "run the symbol table self-check")
	checkCmd.Flags().String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format = strings.ToLower(format)
	switch format {
	case "pretty", "short", "json", "summary":
	default:
		return fmt.Errorf("unknown format %q (must be pretty, short, json or summary)", format)
	}
	pathModeStr, err := cmd.Flags().GetString("path-mode")
	if err != nil {
		return fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	pathMode, ok := diagfmt.ParsePathMode(pathModeStr)
	if !ok {
		return fmt.Errorf("unknown path-mode %q", pathModeStr)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	showProgress, err := cmd.Flags().GetBool("progress")
	if err != nil {
		return fmt.Errorf("failed to get progress flag: %w", err)
	}
	validate, err := cmd.Flags().GetBool("validate")
	if err != nil {
		return fmt.Errorf("failed to get validate flag: %w", err)
	}
	minSevStr, err := cmd.Flags().GetString("min-severity")
	if err != nil {
		return fmt.Errorf("failed to get min-severity flag: %w", err)
	}
	minSev, ok := diag.ParseSeverity(strings.ToLower(minSevStr))
	if !ok {
		return fmt.Errorf("unknown min-severity %q (expected info|warning|error)", minSevStr)
	}

	b, err := loadBook(args)
	if err != nil {
		return err
	}
	policy, err := failPolicy(cmd, b)
	if err != nil {
		return err
	}
	opts, err := checkOptions(cmd, b)
	if err != nil {
		return err
	}
	opts.Validate = validate

	var res *driver.Result
	if showProgress && !global.quiet && format != "json" && isTerminal(os.Stdout) {
		res, err = runCheckWithUI(cmd.Context(), fmt.Sprintf("checking %s", b.name), b.paths, opts)
	} else {
		res, err = driver.Check(cmd.Context(), b.paths, opts)
	}
	if err != nil {
		return err
	}
	if global.timings && !global.quiet && format != "json" {
		fmt.Fprint(os.Stderr, res.Timer.Summary())
	}

	out := cmd.OutOrStdout()
	ds := filterSeverity(res.Collector.Diagnostics(), minSev)
	if err := printDiagnostics(out, format, ds, res.FileSet, pathMode, withNotes); err != nil {
		return err
	}
	if format != "json" && !global.quiet {
		printCheckFooter(out, res)
	}
	if res.Collector.Fails(policy) {
		return errCheckFailed
	}
	return nil
}

// printDiagnostics writes ds in the chosen format. The summary regroups ds
// so it honours --min-severity like the other formats.
func printDiagnostics(out io.Writer, format string, ds []diag.Diagnostic, fs *source.FileSet, pathMode diagfmt.PathMode, withNotes bool) error {
	switch format {
	case "json":
		return diagfmt.JSON(out, ds, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		})
	case "short":
		diagfmt.Short(out, ds, fs, pathMode)
	case "summary":
		shown := &diag.Collector{}
		shown.Collect(diag.List(ds))
		diagfmt.Summary(out, shown, fs, diagfmt.SummaryOpts{Color: global.color, PathMode: pathMode})
	default:
		diagfmt.Pretty(out, ds, fs, diagfmt.PrettyOpts{
			Color:     global.color,
			Context:   1,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
	}
	return nil
}

// filterSeverity only affects what is printed; the fail policy and the
// footer still see every diagnostic.
func filterSeverity(ds []diag.Diagnostic, minSev diag.Severity) []diag.Diagnostic {
	if minSev == diag.SevInfo {
		return ds
	}
	out := make([]diag.Diagnostic, 0, len(ds))
	for _, d := range ds {
		if d.Severity >= minSev {
			out = append(out, d)
		}
	}
	return out
}

func printCheckFooter(out io.Writer, res *driver.Result) {
	fmt.Fprintf(out, "%d documents, %d categories: %s\n",
		len(res.Documents), res.Table.Len(), diagfmt.Totals(res.Collector))
}
