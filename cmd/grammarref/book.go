package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"grammarref/internal/diag"
	"grammarref/internal/driver"
	"grammarref/internal/project"
	"grammarref/internal/render"
)

var log = commonlog.GetLogger("grammarref.cli")

// book is what a command works on: the chapter files plus whatever the
// manifest configured.
type book struct {
	name     string
	baseDir  string
	paths    []string
	manifest *project.Manifest
}

// loadBook collects chapters from args (files or directories) or, with no
// args, from [book].root of the nearest grammarref.toml. The manifest is
// loaded in both cases so its settings apply.
func loadBook(args []string) (*book, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	manifest, found, err := project.LoadFromDir(wd)
	if err != nil {
		return nil, err
	}
	b := &book{baseDir: wd}
	include := project.DefaultInclude
	if found {
		b.manifest = manifest
		b.name = manifest.Book.Name
		include = manifest.Book.Include
		log.Debugf("using manifest %s", manifest.Path)
	}

	if len(args) == 0 {
		if !found {
			return nil, fmt.Errorf("no chapters given and no %s found above %s", project.ManifestName, wd)
		}
		root, err := project.ResolveBookRoot(manifest.Dir, manifest.Book.Root)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", manifest.Path, err)
		}
		b.baseDir = root
		if b.paths, err = project.Chapters(root, include); err != nil {
			return nil, err
		}
	} else {
		for _, arg := range args {
			st, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to stat path: %w", err)
			}
			if !st.IsDir() {
				b.paths = append(b.paths, arg)
				continue
			}
			if len(args) == 1 {
				b.baseDir = arg
			}
			chapters, err := project.Chapters(arg, include)
			if err != nil {
				return nil, err
			}
			b.paths = append(b.paths, chapters...)
		}
	}
	if len(b.paths) == 0 {
		return nil, errors.New("no chapter files found")
	}
	if b.name == "" {
		b.name = filepath.Base(b.baseDir)
	}
	return b, nil
}

// checkFlags are shared by every command that runs a full check.
func addCheckFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-cache", false, "do not read or write the document cache")
	cmd.Flags().Bool("report-unused", false, "report categories nothing references")
	cmd.Flags().Bool("no-suggest", false, "omit \"did you mean\" notes")
	cmd.Flags().StringSlice("root", nil, "categories exempt from the unused check (repeatable)")
}

func checkOptions(cmd *cobra.Command, b *book) (driver.Options, error) {
	opts := driver.Options{
		Jobs:           global.jobs,
		MaxDiagnostics: global.maxDiagnostics,
		BaseDir:        b.baseDir,
		Timings:        global.timings,
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return opts, fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	reportUnused, err := cmd.Flags().GetBool("report-unused")
	if err != nil {
		return opts, fmt.Errorf("failed to get report-unused flag: %w", err)
	}
	noSuggest, err := cmd.Flags().GetBool("no-suggest")
	if err != nil {
		return opts, fmt.Errorf("failed to get no-suggest flag: %w", err)
	}
	roots, err := cmd.Flags().GetStringSlice("root")
	if err != nil {
		return opts, fmt.Errorf("failed to get root flag: %w", err)
	}

	opts.Suggest = !noSuggest
	opts.Roots = roots
	opts.ReportUnused = reportUnused
	if b.manifest != nil {
		if !cmd.Flags().Changed("report-unused") && b.manifest.Defined.ReportUnused {
			opts.ReportUnused = b.manifest.Check.ReportUnused
		}
		if len(opts.Roots) == 0 && b.manifest.Book.Start != "" {
			opts.Roots = []string{b.manifest.Book.Start}
		}
	}

	if !noCache {
		cache, err := driver.OpenDiskCache("grammarref")
		if err != nil {
			// кэш необязателен, работаем без него
			log.Warningf("disk cache disabled: %v", err)
		} else {
			opts.Cache = cache
		}
	}
	return opts, nil
}

func runBookCheck(ctx context.Context, cmd *cobra.Command, b *book) (*driver.Result, error) {
	opts, err := checkOptions(cmd, b)
	if err != nil {
		return nil, err
	}
	res, err := driver.Check(ctx, b.paths, opts)
	if err != nil {
		return nil, err
	}
	if global.timings && !global.quiet {
		fmt.Fprint(os.Stderr, res.Timer.Summary())
	}
	return res, nil
}

// renderOptions merges [render] from the manifest with command flags.
func renderOptions(cmd *cobra.Command, b *book) (render.Options, error) {
	var opts render.Options
	layout, maxWidth, prefix := "auto", 72, ""
	if b.manifest != nil {
		if b.manifest.Render.Layout != "" {
			layout = b.manifest.Render.Layout
		}
		if b.manifest.Defined.MaxWidth {
			maxWidth = b.manifest.Render.MaxWidth
		}
		prefix = b.manifest.Render.LinkPrefix
	}
	if cmd.Flags().Changed("layout") {
		v, err := cmd.Flags().GetString("layout")
		if err != nil {
			return opts, fmt.Errorf("failed to get layout flag: %w", err)
		}
		layout = v
	}
	if cmd.Flags().Changed("max-width") {
		v, err := cmd.Flags().GetInt("max-width")
		if err != nil {
			return opts, fmt.Errorf("failed to get max-width flag: %w", err)
		}
		if v < 0 {
			return opts, fmt.Errorf("--max-width must not be negative")
		}
		maxWidth = v
	}
	if cmd.Flags().Changed("link-prefix") {
		v, err := cmd.Flags().GetString("link-prefix")
		if err != nil {
			return opts, fmt.Errorf("failed to get link-prefix flag: %w", err)
		}
		prefix = v
	}
	l, err := render.ParseLayout(layout)
	if err != nil {
		return opts, err
	}
	opts.Layout = l
	opts.MaxWidth = maxWidth
	opts.LinkPrefix = strings.TrimSpace(prefix)
	return opts, nil
}

// failPolicy reads --fail-on, falling back to [check].fail_on.
func failPolicy(cmd *cobra.Command, b *book) (diag.Policy, error) {
	value := ""
	if b.manifest != nil {
		value = b.manifest.Check.FailOn
	}
	if cmd.Flags().Changed("fail-on") {
		v, err := cmd.Flags().GetString("fail-on")
		if err != nil {
			return diag.PolicyFailOnError, fmt.Errorf("failed to get fail-on flag: %w", err)
		}
		value = v
	}
	p, ok := diag.ParsePolicy(strings.ToLower(strings.TrimSpace(value)))
	if !ok {
		return p, fmt.Errorf("unknown fail-on value %q (expected error|warning|never)", value)
	}
	return p, nil
}

// errCheckFailed makes the process exit non-zero after the report is printed.
var errCheckFailed = errors.New("check failed")
