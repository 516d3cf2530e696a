package project

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
)

// Chapters lists the files under root whose base name matches any include
// pattern, sorted by path. Hidden directories are skipped.
func Chapters(root string, include []string) ([]string, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, pat := range include {
		if _, err := filepath.Match(pat, ""); err != nil {
			return nil, fmt.Errorf("invalid include pattern %q: %w", pat, err)
		}
	}
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && len(d.Name()) > 1 && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		for _, pat := range include {
			if ok, _ := filepath.Match(pat, d.Name()); ok {
				out = append(out, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list chapters in %s: %w", root, err)
	}
	slices.Sort(out)
	return out, nil
}
