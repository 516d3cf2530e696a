// Package store exports the resolved grammar graph for page renderers and
// other tools, either as a SQLite database or as JSON.
package store

import (
	"encoding/json"
	"io"
)

// Graph is the exported form of a checked book.
type Graph struct {
	Book        string          `json:"book,omitempty"`
	Documents   []DocumentRow   `json:"documents"`
	Symbols     []SymbolRow     `json:"symbols"`
	Rules       []RuleRow       `json:"rules"`
	References  []ReferenceRow  `json:"references"`
	Diagnostics []DiagnosticRow `json:"diagnostics"`
}

type DocumentRow struct {
	ID   int    `json:"id"`
	Path string `json:"path"`
	Slug string `json:"slug"`
}

type SymbolRow struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Anchor     string `json:"anchor"`
	DocumentID int    `json:"document_id"`
	Uses       int    `json:"uses"`
}

type RuleRow struct {
	ID         int    `json:"id"`
	SymbolID   int    `json:"symbol_id"`
	DocumentID int    `json:"document_id"`
	Anchor     string `json:"anchor"`
	Line       uint32 `json:"line"`
	Plain      string `json:"plain"`
}

// ReferenceRow is one nonterminal occurrence; TargetID is 0 when unresolved.
type ReferenceRow struct {
	RuleID      int    `json:"rule_id"`
	Alternative int    `json:"alternative"`
	Element     int    `json:"element"`
	Name        string `json:"name"`
	Optional    bool   `json:"optional,omitempty"`
	TargetID    int    `json:"target_id,omitempty"`
	Anchor      string `json:"anchor,omitempty"`
}

type DiagnosticRow struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Kind     string `json:"kind"`
	Subject  string `json:"subject,omitempty"`
	Path     string `json:"path,omitempty"`
	Line     uint32 `json:"line,omitempty"`
	Col      uint32 `json:"col,omitempty"`
	Message  string `json:"message"`
}

// WriteJSON writes g as indented JSON.
func WriteJSON(w io.Writer, g Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(g)
}
