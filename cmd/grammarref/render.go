package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"grammarref/internal/diag"
	"grammarref/internal/diagfmt"
	"grammarref/internal/driver"
	"grammarref/internal/textdiff"
)

var renderCmd = &cobra.Command{
	Use:   "render [flags] [chapter.md|directory]...",
	Short: "Render grammar productions with cross-reference links",
	Long: `Render every grammar rule of every chapter with the chosen backend. Without
--out the pages are printed to stdout. With --out each chapter becomes one page
under that directory; -d prints a unified diff against the existing page
instead of writing it.`,
	RunE: runRender,
}

func init() {
	addCheckFlags(renderCmd)
	renderCmd.Flags().String("format", "markdown", "render backend (markdown|plain|html|terminal)")
	renderCmd.Flags().String("layout", "auto", "production layout (auto|inline|stacked)")
	renderCmd.Flags().Int("max-width", 72, "display width above which auto layout stacks (0=never)")
	renderCmd.Flags().String("link-prefix", "", "prefix for every link target")
	renderCmd.Flags().StringP("out", "o", "", "write pages into this directory")
	renderCmd.Flags().BoolP("diff", "d", false, "show differences against existing pages instead of writing")
}

func runRender(cmd *cobra.Command, args []string) error {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := driver.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	outDir, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}
	showDiff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return fmt.Errorf("failed to get diff flag: %w", err)
	}
	if showDiff && outDir == "" {
		return errors.New("--diff requires --out")
	}

	b, err := loadBook(args)
	if err != nil {
		return err
	}
	ropts, err := renderOptions(cmd, b)
	if err != nil {
		return err
	}
	res, err := runBookCheck(cmd.Context(), cmd, b)
	if err != nil {
		return err
	}
	if !global.quiet && res.Collector.Count(diag.SevError) > 0 {
		diagfmt.Short(os.Stderr, res.Collector.Diagnostics(), res.FileSet, diagfmt.PathModeRelative)
	}

	out := cmd.OutOrStdout()
	differ := 0
	for i := range res.Documents {
		d := &res.Documents[i]
		page := res.RenderPage(d, format, ropts)
		rel := relativeTo(b.baseDir, d.Path)

		if outDir == "" {
			if len(res.Documents) > 1 {
				fmt.Fprintf(out, "==> %s <==\n", rel)
			}
			fmt.Fprint(out, page)
			continue
		}

		target := filepath.Join(outDir, res.PagePath(d, format))
		if showDiff {
			old, err := os.ReadFile(target)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("read %s: %w", target, err)
			}
			patch, err := textdiff.Unified(target, target+" (rendered)", string(old), page, textdiff.DefaultContext)
			if err != nil {
				return fmt.Errorf("diff %s: %w", target, err)
			}
			if patch != "" {
				differ++
				fmt.Fprint(out, patch)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.WriteFile(target, []byte(page), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		log.Infof("wrote %s", target)
	}
	if !global.quiet {
		switch {
		case showDiff:
			fmt.Fprintf(os.Stderr, "%d of %d pages differ\n", differ, len(res.Documents))
		case outDir != "":
			fmt.Fprintf(os.Stderr, "rendered %d pages into %s\n", len(res.Documents), outDir)
		}
	}
	return nil
}

func relativeTo(base, path string) string {
	if base != "" {
		if rel, err := filepath.Rel(base, path); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filepath.Base(path)
}
