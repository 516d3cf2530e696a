package store

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
)

func sampleGraph() Graph {
	return Graph{
		Book:      "The Book",
		Documents: []DocumentRow{{ID: 1, Path: "declarations.md", Slug: "declarations"}},
		Symbols: []SymbolRow{
			{ID: 1, Name: "getter-setter-block", Anchor: "declarations#getter-setter-block", DocumentID: 1},
			{ID: 2, Name: "getter-clause", Anchor: "declarations#getter-clause", DocumentID: 1, Uses: 1},
		},
		Rules: []RuleRow{
			{ID: 1, SymbolID: 1, DocumentID: 1, Anchor: "declarations#getter-setter-block", Line: 3, Plain: "getter-setter-block → { getter-clause setter-clause_opt }"},
			{ID: 2, SymbolID: 2, DocumentID: 1, Anchor: "declarations#getter-clause", Line: 4, Plain: "getter-clause → `get`"},
		},
		References: []ReferenceRow{
			{RuleID: 1, Alternative: 0, Element: 1, Name: "getter-clause", TargetID: 2, Anchor: "declarations#getter-clause"},
			{RuleID: 1, Alternative: 0, Element: 2, Name: "setter-clause", Optional: true},
		},
		Diagnostics: []DiagnosticRow{
			{Code: "GRM3002", Severity: "error", Kind: "unresolved references", Subject: "setter-clause", Path: "declarations.md", Line: 3, Col: 40, Message: "reference to undefined category"},
		},
	}
}

func TestExportSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grammar.db")
	ctx := context.Background()
	if err := ExportSQLite(ctx, path, sampleGraph()); err != nil {
		t.Fatalf("ExportSQLite: %v", err)
	}
	// повторный экспорт заменяет файл, а не дописывает
	if err := ExportSQLite(ctx, path, sampleGraph()); err != nil {
		t.Fatalf("second ExportSQLite: %v", err)
	}

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	var symbols int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM symbols`).Scan(&symbols); err != nil {
		t.Fatalf("count symbols: %v", err)
	}
	if symbols != 2 {
		t.Errorf("symbols: got %d", symbols)
	}

	var unresolved int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM refs WHERE target_id IS NULL`).Scan(&unresolved); err != nil {
		t.Fatalf("count refs: %v", err)
	}
	if unresolved != 1 {
		t.Errorf("unresolved refs: got %d", unresolved)
	}

	var anchor string
	err = db.QueryRowContext(ctx, `
		SELECT s.anchor FROM refs r JOIN symbols s ON s.id = r.target_id
		WHERE r.rule_id = 1 AND r.element = 1`).Scan(&anchor)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if anchor != "declarations#getter-clause" {
		t.Errorf("anchor: got %q", anchor)
	}

	var book string
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'book'`).Scan(&book); err != nil || book != "The Book" {
		t.Errorf("meta book: %q %v", book, err)
	}
}

func TestExportSQLiteRejectsDuplicateSymbols(t *testing.T) {
	g := sampleGraph()
	g.Symbols = append(g.Symbols, SymbolRow{ID: 3, Name: "getter-clause", Anchor: "x"})
	if err := ExportSQLite(context.Background(), filepath.Join(t.TempDir(), "dup.db"), g); err == nil {
		t.Fatalf("expected unique constraint error")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleGraph()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var back Graph
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(back.References) != 2 || back.References[1].TargetID != 0 || !back.References[1].Optional {
		t.Errorf("references: %+v", back.References)
	}
	if !bytes.Contains(buf.Bytes(), []byte("getter-clause → `get`")) {
		t.Errorf("json should keep arrows unescaped")
	}
}
