// Package ignore parses gitignore-style files into exclude patterns for the
// content fetcher.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIgnoreFiles are the ignore files consulted at a target's root, in
// order.
var DefaultIgnoreFiles = []string{".gitignore", ".repodigestignore"}

// Patterns reads the ignore files at root and returns combined exclude
// patterns in a form the fetcher's glob matcher understands. Missing files
// are skipped; a root with no ignore files yields no patterns.
func Patterns(root string) ([]string, error) {
	return PatternsFrom(root, DefaultIgnoreFiles)
}

// PatternsFrom is Patterns with an explicit ignore-file list.
func PatternsFrom(root string, ignoreFiles []string) ([]string, error) {
	var patterns []string

	for _, name := range ignoreFiles {
		filePatterns, err := parseFile(filepath.Join(root, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		patterns = append(patterns, filePatterns...)
	}

	return deduplicate(patterns), nil
}

// parseFile reads a single gitignore-style file and returns patterns.
func parseFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var patterns []string
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		if pattern := parseLine(scanner.Text()); pattern != "" {
			patterns = append(patterns, pattern)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return patterns, nil
}

// parseLine parses a single line from a gitignore file.
// Returns empty string for comments, blank lines, and negations
// (negation support is deliberately omitted).
func parseLine(line string) string {
	line = strings.TrimRight(line, " \t")

	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
		return ""
	}

	return toGlobPattern(line)
}

// toGlobPattern converts a gitignore pattern to a glob pattern the fetcher
// can match against relative paths. A leading slash anchors the pattern at
// the root; a name without an internal slash floats to any depth, which the
// matcher expresses with a "**/" prefix.
func toGlobPattern(pattern string) string {
	anchored := strings.HasPrefix(pattern, "/")
	pattern = strings.TrimPrefix(pattern, "/")

	// Trailing slash marks a directory.
	dir := strings.HasSuffix(pattern, "/")
	pattern = strings.TrimSuffix(pattern, "/")

	if !anchored && !strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "*") {
		pattern = "**/" + pattern
	}

	// Directories and extension-less names are matched recursively,
	// e.g. "node_modules" -> "**/node_modules/**".
	if dir || (!strings.HasSuffix(pattern, "/**") && !strings.HasSuffix(pattern, "/*") && !strings.Contains(pattern, ".")) {
		pattern = pattern + "/**"
	}

	return pattern
}

// deduplicate removes duplicate patterns while preserving order.
func deduplicate(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))

	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			result = append(result, p)
		}
	}

	return result
}
