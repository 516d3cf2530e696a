package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"grammarref/internal/render"
)

var ebnfCmd = &cobra.Command{
	Use:   "ebnf [flags] [chapter.md|directory]...",
	Short: "Print the book grammar as EBNF",
	Long: `Print every category as one EBNF production in registration order. With
--verify the output is parsed back and checked from the start category, which
reports undefined and unreachable productions.`,
	RunE: runEBNF,
}

func init() {
	addCheckFlags(ebnfCmd)
	ebnfCmd.Flags().String("start", "", "start category for --verify (defaults to [book].start)")
	ebnfCmd.Flags().Bool("verify", false, "verify the exported grammar")
	ebnfCmd.Flags().StringP("out", "o", "", "write the grammar to this file instead of stdout")
}

func runEBNF(cmd *cobra.Command, args []string) error {
	start, err := cmd.Flags().GetString("start")
	if err != nil {
		return fmt.Errorf("failed to get start flag: %w", err)
	}
	verify, err := cmd.Flags().GetBool("verify")
	if err != nil {
		return fmt.Errorf("failed to get verify flag: %w", err)
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to get out flag: %w", err)
	}

	b, err := loadBook(args)
	if err != nil {
		return err
	}
	if start == "" && b.manifest != nil {
		start = b.manifest.Book.Start
	}
	if verify && start == "" {
		return errors.New("--verify needs --start or [book].start")
	}
	res, err := runBookCheck(cmd.Context(), cmd, b)
	if err != nil {
		return err
	}

	text := render.EBNF(res.EBNFProductions())
	if outPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
	} else if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}

	if verify {
		name := outPath
		if name == "" {
			name = b.name + ".ebnf"
		}
		if err := render.VerifyEBNF(name, text, start); err != nil {
			return err
		}
		if !global.quiet {
			fmt.Fprintf(os.Stderr, "grammar verified from %s\n", start)
		}
	}
	return nil
}
