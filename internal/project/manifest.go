package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrBookSectionMissing indicates that [book] is missing in the manifest.
	ErrBookSectionMissing = errors.New("missing [book]")
	// ErrBookRootMissing indicates that [book].root is missing in the manifest.
	ErrBookRootMissing = errors.New("missing [book].root")
)

// DefaultInclude is used when [book].include is absent.
var DefaultInclude = []string{"*.md"}

// Manifest is the decoded grammarref.toml.
type Manifest struct {
	Path    string
	Dir     string
	Book    BookConfig
	Render  RenderConfig
	Check   CheckConfig
	Defined Defined
}

// BookConfig is the [book] section.
type BookConfig struct {
	Name    string   `toml:"name"`
	Root    string   `toml:"root"`
	Include []string `toml:"include"`
	Start   string   `toml:"start"`
}

// RenderConfig is the [render] section.
type RenderConfig struct {
	Layout     string `toml:"layout"`
	MaxWidth   int    `toml:"max_width"`
	LinkPrefix string `toml:"link_prefix"`
}

// CheckConfig is the [check] section.
type CheckConfig struct {
	FailOn       string `toml:"fail_on"`
	ReportUnused bool   `toml:"report_unused"`
}

// Defined records which optional keys were present, so CLI flags only
// override what the manifest left unset.
type Defined struct {
	MaxWidth     bool
	ReportUnused bool
}

type manifestFile struct {
	Book   BookConfig   `toml:"book"`
	Render RenderConfig `toml:"render"`
	Check  CheckConfig  `toml:"check"`
}

// LoadManifest parses grammarref.toml at path.
func LoadManifest(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	if !meta.IsDefined("book") {
		return nil, fmt.Errorf("%s: %w", path, ErrBookSectionMissing)
	}
	root := strings.TrimSpace(cfg.Book.Root)
	if !meta.IsDefined("book", "root") || root == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrBookRootMissing)
	}
	m := &Manifest{
		Path:   path,
		Dir:    filepath.Dir(path),
		Book:   cfg.Book,
		Render: cfg.Render,
		Check:  cfg.Check,
		Defined: Defined{
			MaxWidth:     meta.IsDefined("render", "max_width"),
			ReportUnused: meta.IsDefined("check", "report_unused"),
		},
	}
	m.Book.Name = strings.TrimSpace(m.Book.Name)
	m.Book.Root = root
	if len(m.Book.Include) == 0 {
		m.Book.Include = DefaultInclude
	}
	if m.Render.MaxWidth < 0 {
		return nil, fmt.Errorf("%s: [render].max_width must not be negative", path)
	}
	return m, nil
}

// LoadFromDir finds and loads the manifest above startDir.
func LoadFromDir(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := LoadManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// ResolveBookRoot resolves and validates [book].root relative to the manifest.
func ResolveBookRoot(manifestDir, root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", ErrBookRootMissing
	}
	if filepath.IsAbs(root) {
		return "", fmt.Errorf("invalid [book].root %q: must be relative", root)
	}
	clean := filepath.Clean(filepath.FromSlash(root))
	if clean == "." {
		clean = ""
	}
	rootPath := filepath.Join(manifestDir, clean)
	if clean != "" && !pathWithin(manifestDir, rootPath) {
		return "", fmt.Errorf("invalid [book].root %q: escapes project root", root)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("invalid [book].root %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid [book].root %q: not a directory", root)
	}
	return rootPath, nil
}

func pathWithin(root, path string) bool {
	if root == "" || path == "" {
		return false
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return !strings.HasPrefix(rel, "..") && rel != ".."
}

// Template is written by `grammarref init`.
const Template = `[book]
name = %q
root = %q
include = ["*.md"]

[render]
layout = "auto"
max_width = 72
link_prefix = ""

[check]
fail_on = "error"
report_unused = false
`
