package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grammarref/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [flags] [chapter.md|directory]...",
	Short: "Export the resolved grammar graph as SQLite or JSON",
	Long: `Export documents, categories, rules, references and diagnostics so page
renderers can consume the resolved graph without re-running the checker.`,
	RunE: runExport,
}

func init() {
	addCheckFlags(exportCmd)
	exportCmd.Flags().String("sqlite", "", "write a SQLite database to this path")
	exportCmd.Flags().String("json", "", "write JSON to this path (- for stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	sqlitePath, err := cmd.Flags().GetString("sqlite")
	if err != nil {
		return fmt.Errorf("failed to get sqlite flag: %w", err)
	}
	jsonPath, err := cmd.Flags().GetString("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	if sqlitePath == "" && jsonPath == "" {
		return errors.New("nothing to do: pass --sqlite and/or --json")
	}

	b, err := loadBook(args)
	if err != nil {
		return err
	}
	res, err := runBookCheck(cmd.Context(), cmd, b)
	if err != nil {
		return err
	}
	g := res.Graph(b.name)

	if sqlitePath != "" {
		if err := store.ExportSQLite(cmd.Context(), sqlitePath, g); err != nil {
			return fmt.Errorf("sqlite export: %w", err)
		}
		if !global.quiet {
			fmt.Fprintf(os.Stderr, "exported %d categories to %s\n", len(g.Symbols), sqlitePath)
		}
	}
	switch jsonPath {
	case "":
	case "-":
		return store.WriteJSON(cmd.OutOrStdout(), g)
	default:
		f, err := os.Create(jsonPath)
		if err != nil {
			return fmt.Errorf("json export: %w", err)
		}
		if err := store.WriteJSON(f, g); err != nil {
			_ = f.Close()
			return fmt.Errorf("json export: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("json export: %w", err)
		}
	}
	return nil
}
