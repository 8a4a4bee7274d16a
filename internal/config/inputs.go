package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ResolveInputs expands the configured inputs into a list of source files.
// Plain paths are taken as they are; patterns containing glob syntax are
// matched against every .cy file under the include paths. The result keeps
// input order and drops duplicates.
func ResolveInputs(cfg *Config) ([]string, error) {
	files := make([]string, 0)
	seen := make(map[string]bool)

	add := func(path string) {
		clean := filepath.Clean(path)
		if seen[clean] {
			return
		}
		seen[clean] = true
		files = append(files, clean)
	}

	var candidates []string
	for _, input := range cfg.Inputs {
		if !isPattern(input) {
			if _, err := os.Stat(input); err != nil {
				return nil, fmt.Errorf("input %s: %w", input, err)
			}
			add(input)
			continue
		}

		g, err := glob.Compile(filepath.ToSlash(input), '/')
		if err != nil {
			return nil, fmt.Errorf("input pattern %q: %w", input, err)
		}

		if candidates == nil {
			if candidates, err = sourceFiles(cfg.IncludePaths); err != nil {
				return nil, err
			}
		}

		matched := false
		for _, candidate := range candidates {
			if g.Match(filepath.ToSlash(candidate)) {
				add(candidate)
				matched = true
			}
		}
		if !matched {
			return nil, fmt.Errorf("input pattern %q matched no files", input)
		}
	}

	return files, nil
}

func isPattern(input string) bool {
	return strings.ContainsAny(input, "*?[{")
}

func sourceFiles(roots []string) ([]string, error) {
	files := make([]string, 0)

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == SourceExtension {
				files = append(files, filepath.Clean(path))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("include path %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
