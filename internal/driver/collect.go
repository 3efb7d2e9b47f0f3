package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"passfmt/internal/syntax"
)

// ErrNoFiles is returned when the given paths contain nothing to format.
var ErrNoFiles = errors.New("no source files found")

// Directories never worth formatting: dependency trees and hidden ones.
var skipDirs = []string{"vendor", "node_modules", "testdata"}

// Collector expands command line paths into source files.
type Collector struct {
	Registry *syntax.Registry
	// Exclude holds path.Match patterns; see config.Files.
	Exclude []string
}

// Collect returns the sorted, deduplicated files under paths. Directories are
// walked for extensions the registry knows. A file named explicitly is kept
// even with an unknown extension so the engine can report it.
func (c Collector) Collect(ctx context.Context, paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		walk := func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if p == root {
				return nil
			}
			if c.excluded(root, p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			switch {
			case d.IsDir():
				if hidden(d.Name()) || slices.Contains(skipDirs, d.Name()) {
					return filepath.SkipDir
				}
			case d.Type().IsRegular():
				if _, err := c.Registry.ForPath(p); err == nil {
					add(p)
				}
			}
			return nil
		}
		if err := filepath.WalkDir(root, walk); err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	return files, nil
}

func (c Collector) excluded(root, p string) bool {
	if len(c.Exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	for _, pat := range c.Exclude {
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
		if ok, _ := path.Match(pat, base); ok {
			return true
		}
	}
	return false
}

func hidden(name string) bool {
	return len(name) > 1 && strings.HasPrefix(name, ".") && name != ".."
}

// CollectFiles is Collector{Registry: registry}.Collect.
func CollectFiles(ctx context.Context, paths []string, registry *syntax.Registry) ([]string, error) {
	return Collector{Registry: registry}.Collect(ctx, paths)
}
