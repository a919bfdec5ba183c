// Package ignore loads gitignore-style exclude patterns for the loader.
package ignore

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// DefaultIgnoreFiles are the ignore files consulted at the source root,
// in order.
var DefaultIgnoreFiles = []string{".docvectorignore", ".gitignore"}

// DefaultFallbackPatterns are used when no ignore file exists in the
// source tree. They cover the directories a documentation checkout
// typically drags along.
var DefaultFallbackPatterns = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/.next/**",
	"**/dist/**",
	"**/build/**",
}

// Parser reads ignore files and turns their entries into doublestar
// glob patterns relative to the source root.
type Parser struct {
	IgnoreFiles      []string
	FallbackPatterns []string
}

// NewParser returns a Parser for the given ignore file names. Nil
// arguments select the package defaults.
func NewParser(ignoreFiles, fallbackPatterns []string) *Parser {
	if ignoreFiles == nil {
		ignoreFiles = DefaultIgnoreFiles
	}
	if fallbackPatterns == nil {
		fallbackPatterns = DefaultFallbackPatterns
	}
	return &Parser{
		IgnoreFiles:      ignoreFiles,
		FallbackPatterns: fallbackPatterns,
	}
}

// Patterns reads every configured ignore file under root and returns the
// combined, deduplicated exclude patterns. When none of the files exist
// the fallback patterns are returned instead.
func (p *Parser) Patterns(root string) ([]string, error) {
	var patterns []string
	found := false

	for _, name := range p.IgnoreFiles {
		filePatterns, err := parseFile(filepath.Join(root, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		patterns = append(patterns, filePatterns...)
		found = true
	}

	if !found {
		return p.FallbackPatterns, nil
	}
	return dedupe(patterns), nil
}

func parseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
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

// parseLine converts one ignore file line to a glob pattern. Comments,
// blank lines, and negations (unsupported) yield "".
func parseLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
		return ""
	}
	return toGlob(line)
}

// toGlob rewrites a gitignore entry as a doublestar pattern matched
// against slash-separated paths relative to the source root.
func toGlob(pattern string) string {
	// A leading slash anchors to the root; relative is the default here.
	pattern = strings.TrimPrefix(pattern, "/")

	// Trailing slash marks a directory: match everything beneath it.
	if strings.HasSuffix(pattern, "/") {
		pattern += "**"
	}

	// Entries without a separator match at any depth.
	if !strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "*") {
		pattern = "**/" + pattern
	}

	// Bare directory names also exclude their contents.
	if !strings.HasSuffix(pattern, "/**") && !strings.HasSuffix(pattern, "/*") && !strings.Contains(pattern, ".") {
		pattern += "/**"
	}

	return pattern
}

func dedupe(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
