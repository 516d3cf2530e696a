package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"grammarref/internal/diag"
	"grammarref/internal/diagfmt"
	"grammarref/internal/driver"
	"grammarref/internal/render"
	"grammarref/internal/source"
)

func TestReadColorMode(t *testing.T) {
	cases := []struct {
		input string
		want  colorMode
		ok    bool
	}{
		{"", colorAuto, true},
		{"AUTO", colorAuto, true},
		{"on", colorOn, true},
		{"never", colorOff, true},
		{"sometimes", "", false},
	}
	for _, tc := range cases {
		got, err := readColorMode(tc.input)
		if (err == nil) != tc.ok || got != tc.want {
			t.Errorf("readColorMode(%q) = %q, %v", tc.input, got, err)
		}
	}
}

func TestInitThenCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "book")
	var buf bytes.Buffer
	initCmd.SetOut(&buf)
	t.Cleanup(func() { initCmd.SetOut(nil) })
	if err := runInit(initCmd, []string{dir}); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if !strings.Contains(buf.String(), "docs/expressions.md") {
		t.Errorf("init output: %q", buf.String())
	}
	if err := runInit(initCmd, []string{dir}); err == nil {
		t.Fatalf("second init must refuse to overwrite the manifest")
	}

	t.Chdir(dir)
	b, err := loadBook(nil)
	if err != nil {
		t.Fatalf("loadBook: %v", err)
	}
	if b.name != "book" || len(b.paths) != 1 || filepath.Base(b.paths[0]) != "expressions.md" {
		t.Fatalf("book: %+v", b)
	}

	res, err := driver.Check(context.Background(), b.paths, driver.Options{BaseDir: b.baseDir})
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	// пример из init должен проходить проверку без замечаний
	for _, d := range res.Collector.Diagnostics() {
		t.Errorf("unexpected diagnostic %s: %s", d.Code.ID(), d.Message)
	}
	if res.Table.Len() != 9 {
		t.Errorf("categories: %d", res.Table.Len())
	}

	ropts, err := renderOptions(renderCmd, b)
	if err != nil {
		t.Fatalf("renderOptions: %v", err)
	}
	if ropts.Layout != render.LayoutAuto || ropts.MaxWidth != 72 {
		t.Errorf("render options from manifest: %+v", ropts)
	}
	policy, err := failPolicy(checkCmd, b)
	if err != nil || policy != diag.PolicyFailOnError {
		t.Errorf("fail policy: %v %v", policy, err)
	}
}

func TestLoadBookFromArgs(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	chapters := filepath.Join(dir, "chapters")
	if err := os.MkdirAll(filepath.Join(chapters, ".hidden"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.md", "b.md", "notes.txt", ".hidden/c.md"} {
		if err := os.WriteFile(filepath.Join(chapters, name), []byte("x → y\n"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	b, err := loadBook([]string{chapters})
	if err != nil {
		t.Fatalf("loadBook: %v", err)
	}
	if b.manifest != nil || b.baseDir != chapters || len(b.paths) != 2 {
		t.Fatalf("book: %+v", b)
	}
	if _, err := loadBook(nil); err == nil {
		t.Fatalf("expected error without args and manifest")
	}
	if _, err := loadBook([]string{filepath.Join(dir, "missing.md")}); err == nil {
		t.Fatalf("expected error for missing chapter")
	}
}

func TestRelativeTo(t *testing.T) {
	base := filepath.Join("book", "docs")
	if got := relativeTo(base, filepath.Join(base, "part", "ch.md")); got != filepath.Join("part", "ch.md") {
		t.Errorf("inside base: %q", got)
	}
	if got := relativeTo(base, filepath.Join("elsewhere", "ch.md")); got != "ch.md" {
		t.Errorf("outside base: %q", got)
	}
}

func TestFilterSeverity(t *testing.T) {
	ds := []diag.Diagnostic{
		{Severity: diag.SevInfo, Code: diag.RefUnusedSymbol},
		{Severity: diag.SevWarning, Code: diag.IOCacheError},
		{Severity: diag.SevError, Code: diag.RefUnresolvedReference},
	}
	if got := filterSeverity(ds, diag.SevInfo); len(got) != 3 {
		t.Errorf("info: %d", len(got))
	}
	if got := filterSeverity(ds, diag.SevWarning); len(got) != 2 || got[0].Code != diag.IOCacheError {
		t.Errorf("warning: %+v", got)
	}
	if got := filterSeverity(ds, diag.SevError); len(got) != 1 {
		t.Errorf("error: %d", len(got))
	}
}

func TestPrintDiagnosticsHonoursMinSeverity(t *testing.T) {
	ds := []diag.Diagnostic{
		{Severity: diag.SevInfo, Code: diag.RefUnusedSymbol, Subject: "lonely", Message: "category lonely is never referenced"},
		{Severity: diag.SevError, Code: diag.RefUnresolvedReference, Subject: "missing", Message: "unresolved reference to missing"},
	}
	shown := filterSeverity(ds, diag.SevError)
	for _, format := range []string{"summary", "short", "pretty", "json"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := printDiagnostics(&buf, format, shown, source.NewFileSet(), diagfmt.PathModeRelative, true); err != nil {
				t.Fatalf("printDiagnostics: %v", err)
			}
			out := buf.String()
			if strings.Contains(out, "lonely") {
				t.Errorf("filtered diagnostic printed:\n%s", out)
			}
			if !strings.Contains(out, "missing") {
				t.Errorf("kept diagnostic missing:\n%s", out)
			}
		})
	}
}
