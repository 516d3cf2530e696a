package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"grammarref/internal/driver"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols [flags] [chapter.md|directory]...",
	Short: "List grammar categories with anchors and reference counts",
	RunE:  runSymbols,
}

func init() {
	addCheckFlags(symbolsCmd)
	symbolsCmd.Flags().String("format", "table", "output format (table|json)")
	symbolsCmd.Flags().Bool("unused", false, "list only categories nothing references")
}

type symbolJSON struct {
	Name         string   `json:"name"`
	Anchor       string   `json:"anchor"`
	Document     string   `json:"document,omitempty"`
	Rules        int      `json:"rules"`
	Alternatives int      `json:"alternatives"`
	Uses         int      `json:"uses"`
	Conflicts    []string `json:"conflicting_anchors,omitempty"`
}

func runSymbols(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	onlyUnused, err := cmd.Flags().GetBool("unused")
	if err != nil {
		return fmt.Errorf("failed to get unused flag: %w", err)
	}
	b, err := loadBook(args)
	if err != nil {
		return err
	}
	res, err := runBookCheck(cmd.Context(), cmd, b)
	if err != nil {
		return err
	}

	var stats []driver.SymbolStat
	for _, s := range res.SymbolStats() {
		if onlyUnused && s.Uses > 0 {
			continue
		}
		stats = append(stats, s)
	}

	switch strings.ToLower(format) {
	case "json":
		out := make([]symbolJSON, 0, len(stats))
		for _, s := range stats {
			out = append(out, symbolJSON{
				Name:         s.Name,
				Anchor:       s.Anchor,
				Document:     s.Document,
				Rules:        s.Rules,
				Alternatives: s.Alternatives,
				Uses:         s.Uses,
				Conflicts:    s.Conflicts,
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "table", "":
		printSymbolTable(cmd.OutOrStdout(), stats)
		return nil
	default:
		return fmt.Errorf("unknown format %q (must be table or json)", format)
	}
}

func printSymbolTable(w io.Writer, stats []driver.SymbolStat) {
	nameWidth := len("CATEGORY")
	for _, s := range stats {
		nameWidth = max(nameWidth, runewidth.StringWidth(s.Name))
	}
	header := color.New(color.Bold)
	warn := color.New(color.FgYellow)
	header.Fprintf(w, "%s  %5s %5s %5s  %s\n", runewidth.FillRight("CATEGORY", nameWidth), "RULES", "ALTS", "USES", "ANCHOR")
	for _, s := range stats {
		line := fmt.Sprintf("%s  %5d %5d %5d  %s", runewidth.FillRight(s.Name, nameWidth), s.Rules, s.Alternatives, s.Uses, s.Anchor)
		if len(s.Conflicts) > 0 {
			fmt.Fprint(w, line)
			warn.Fprintf(w, "  (also %s)\n", strings.Join(s.Conflicts, ", "))
			continue
		}
		fmt.Fprintln(w, line)
	}
}
