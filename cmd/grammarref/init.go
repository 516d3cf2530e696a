package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"grammarref/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new grammarref book",
	Long: `Initialize a book project by creating a manifest (grammarref.toml) and a
docs/ directory with a sample chapter. If [path|name] is omitted, initializes
the current directory. If a non-existing name is provided, a directory will be
created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit refuses to overwrite an existing grammarref.toml. The sample
// chapter is only written when docs/ has no chapter of that name yet.
func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "grammar-book"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(fmt.Sprintf(project.Template, name, "docs")), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	docs := filepath.Join(target, "docs")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		return fmt.Errorf("failed to create docs directory: %w", err)
	}
	chapter := filepath.Join(docs, "expressions.md")
	createdChapter := false
	if _, err := os.Stat(chapter); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(chapter, []byte(sampleChapter), 0o600); err != nil {
			return fmt.Errorf("failed to write sample chapter: %w", err)
		}
		createdChapter = true
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized grammarref book in %s\n", rel)
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	if createdChapter {
		fmt.Fprintf(out, "  - docs/expressions.md\n")
	} else {
		fmt.Fprintf(out, "  - docs/expressions.md (existing)\n")
	}
	return nil
}

const sampleChapter = `# Expressions

## Grammar of an expression {#grammar-of-an-expression}

> expression → prefix-expression binary-expressions_opt
> prefix-expression → prefix-operator_opt postfix-expression
> binary-expressions → binary-expression binary-expressions_opt
> binary-expression → binary-operator prefix-expression
> postfix-expression → primary-expression | postfix-expression ` + "`(`" + ` ` + "`)`" + `
> primary-expression → literal | ` + "`(`" + ` expression ` + "`)`" + `
> literal → ` + "`0`" + ` | ` + "`1`" + `
> prefix-operator → ` + "`-`" + ` | ` + "`!`" + `
> binary-operator → ` + "`+`" + ` | ` + "`-`" + ` | ` + "`*`" + `

A [*primary-expression*](#grammar-of-an-expression) is the simplest kind of expression.
`
