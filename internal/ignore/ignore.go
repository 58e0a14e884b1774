// Package ignore reads gitignore-style files that exclude templates from a
// template directory.
//
// Template directories are flat, so patterns are matched against base file
// names with path.Match semantics. Supported syntax:
//   - Blank lines and lines starting with # are skipped
//   - A leading / is dropped
//   - Patterns ending in / name directories and never match a template file
//   - A leading ! re-includes names excluded by an earlier pattern
//
// The last matching pattern decides.
package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DefaultPatterns are used when a directory has no ignore file. They cover
// editor leftovers that would otherwise be loaded as templates.
var DefaultPatterns = []string{"*~", "*.swp", "*.swo", "*.bak", "*.orig"}

type rule struct {
	pattern string
	negate  bool
}

// Matcher decides whether a template file name is ignored.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from pattern lines.
func NewMatcher(lines []string) (*Matcher, error) {
	m := &Matcher{}
	for i, line := range lines {
		r, ok := parseLine(line)
		if !ok {
			continue
		}
		if _, err := path.Match(r.pattern, ""); err != nil {
			return nil, fmt.Errorf("line %d: invalid pattern %q: %w", i+1, line, err)
		}
		m.rules = append(m.rules, r)
	}
	return m, nil
}

// Parse reads pattern lines from r.
func Parse(r io.Reader) (*Matcher, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewMatcher(lines)
}

// Load reads the ignore file name inside dir. A missing file yields a
// matcher built from DefaultPatterns. An empty name disables ignoring.
func Load(dir, name string) (*Matcher, error) {
	if name == "" {
		return &Matcher{}, nil
	}

	f, err := os.Open(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return NewMatcher(DefaultPatterns)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return m, nil
}

// Match reports whether the file name is ignored.
func (m *Matcher) Match(name string) bool {
	if m == nil {
		return false
	}
	ignored := false
	for _, r := range m.rules {
		if ok, _ := path.Match(r.pattern, name); ok {
			ignored = !r.negate
		}
	}
	return ignored
}

// Len returns the number of active patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.rules)
}

func parseLine(line string) (rule, bool) {
	line = strings.TrimRight(line, " \t\r")

	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	var r rule
	if strings.HasPrefix(line, "!") {
		r.negate = true
		line = line[1:]
	}
	line = strings.TrimPrefix(line, "/")

	if line == "" || strings.HasSuffix(line, "/") {
		return rule{}, false
	}
	r.pattern = line
	return r, true
}
