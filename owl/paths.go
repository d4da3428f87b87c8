package owl

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolvePaths expands glob patterns to ontology document files.
// Supports single-level (*) and recursive (**) wildcards.
//
// Examples:
//   - "./ontologies/*.jsonl" → every document in the directory
//   - "./vendor/**/*.jsonl" → documents at any depth
//   - "./go.jsonl" → ["<abs>/go.jsonl"]
//
// Directories are skipped. A pattern without glob characters must name an
// existing file.
func ResolvePaths(patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}
		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

func resolvePattern(pattern string) ([]string, error) {
	absPattern, err := filepath.Abs(pattern)
	if err != nil {
		return nil, err
	}

	if !strings.ContainsAny(pattern, "*?[{") {
		info, err := os.Stat(absPattern)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("path is a directory: %s", absPattern)
		}
		return []string{absPattern}, nil
	}

	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, match)
	}
	sort.Strings(files)
	return files, nil
}
