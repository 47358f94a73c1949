package notebook

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Discover lists .ipynb files under root, skipping directories and files
// whose base name matches an exclude pattern.
func Discover(root string, excludeDirs, excludeFiles []string) ([]string, error) {
	dirGlobs, err := compile(excludeDirs)
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compile(excludeFiles)
	if err != nil {
		return nil, err
	}

	var found []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		base := d.Name()
		if d.IsDir() {
			if path != root && matchAny(dirGlobs, base) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(base), ".ipynb") || matchAny(fileGlobs, base) {
			return nil
		}
		found = append(found, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
