// Package ignore compiles .rignore files into regular expressions used by
// the snapshot builder to skip files before they ever reach the diff
// engine. Grounded on rsinc's own ignore-file convention (rsinc/sync.py's
// per-directory .rignore walk).
package ignore

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const ignoreFileName = ".rignore"

// Filter holds the compiled patterns for one tree root. A path is ignored
// iff it matches any pattern in Patterns.
type Filter struct {
	Root     string
	Patterns []*regexp.Regexp
}

// Match reports whether fullPath (joined under Root) is ignored.
func (f *Filter) Match(fullPath string) bool {
	for _, pat := range f.Patterns {
		if pat.MatchString(fullPath) {
			return true
		}
	}

	return false
}

// CompileLocal walks the local filesystem under root collecting every
// .rignore file's lines and compiles them into a Filter rooted at root.
// This is the common case; local .rignore files are read directly rather
// than through the agent, since local listing of a small control file
// doesn't need the remote adapter's machinery.
func CompileLocal(root string) (*Filter, error) {
	var lines []string

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || d.Name() != ignoreFileName {
			return nil
		}

		dir := filepath.Dir(path)
		fileLines, err := readLines(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		for _, l := range fileLines {
			lines = append(lines, joinPattern(dir, l))
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s for ignore files: %w", root, err)
	}

	return compile(root, lines)
}

// CompileFromLines builds a Filter rooted at root from a flat list of
// (directory, line) pairs already gathered by the caller — used for the
// remote side, where .rignore files are discovered via the agent's
// listing rather than a local filesystem walk.
func CompileFromLines(root string, perDir map[string][]string) (*Filter, error) {
	var lines []string
	for dir, dirLines := range perDir {
		for _, l := range dirLines {
			lines = append(lines, joinPattern(dir, l))
		}
	}

	return compile(root, lines)
}

func compile(root string, lines []string) (*Filter, error) {
	patterns := make([]*regexp.Regexp, 0, len(lines))
	for _, l := range lines {
		pat, err := regexp.Compile(l)
		if err != nil {
			return nil, fmt.Errorf("compiling ignore pattern %q: %w", l, err)
		}

		patterns = append(patterns, pat)
	}

	return &Filter{Root: root, Patterns: patterns}, nil
}

// joinPattern escapes regex metacharacters in the line's literal
// directory prefix, then appends the line itself (which may legitimately
// contain regex syntax, per rsinc's convention).
func joinPattern(dir, line string) string {
	return regexp.QuoteMeta(dir+string(filepath.Separator)) + line
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lines = append(lines, line)
	}

	return lines, scanner.Err()
}
