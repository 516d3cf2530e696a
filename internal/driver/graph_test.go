package driver

import (
	"context"
	"path/filepath"
	"testing"

	"grammarref/internal/store"
)

func TestResultGraph(t *testing.T) {
	dir, paths := writeChapters(t, book)
	res, err := Check(context.Background(), paths, Options{BaseDir: dir})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	g := res.Graph("Swift")
	if len(g.Documents) != 2 || len(g.Symbols) != 6 || len(g.Rules) != 6 {
		t.Fatalf("documents %d symbols %d rules %d", len(g.Documents), len(g.Symbols), len(g.Rules))
	}
	if g.Documents[0].Path != "declarations.md" || g.Documents[0].Slug != "declarations" {
		t.Errorf("first document: %+v", g.Documents[0])
	}
	if len(g.References) != 9 {
		t.Fatalf("references: %d", len(g.References))
	}
	unresolved := 0
	for _, ref := range g.References {
		if ref.TargetID == 0 {
			unresolved++
			if ref.Anchor != "" {
				t.Errorf("unresolved %s has anchor %q", ref.Name, ref.Anchor)
			}
		}
	}
	if unresolved != 2 {
		t.Errorf("unresolved: %d", unresolved)
	}
	first := g.References[0]
	if first.Name != "getter-clause" || first.Anchor != "declarations#getter-clause" || first.Element != 1 {
		t.Errorf("first reference: %+v", first)
	}
	if len(g.Diagnostics) != 2 || g.Diagnostics[0].Code != "GRM3002" || g.Diagnostics[0].Path != "statements.md" {
		t.Errorf("diagnostics: %+v", g.Diagnostics)
	}

	if err := store.ExportSQLite(context.Background(), filepath.Join(t.TempDir(), "book.db"), g); err != nil {
		t.Fatalf("ExportSQLite: %v", err)
	}
}
