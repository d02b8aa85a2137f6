// Package ignore implements gitignore-style pattern matching for filtering project paths during a scan.
package ignore

import (
	"bufio"
	"errors"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Defaults are the entries skipped in every project: VCS metadata, dependency and build output,
// secrets, logs, editor state and tool caches.
var Defaults = []string{
	".git",
	".gitignore",
	".serverless",
	"node_modules",
	"npm-debug.log",
	"yarn-debug.log",
	"yarn-error.log",
	"pnpm-debug.log",
	"dist",
	"build",
	"coverage",
	".npm",
	".pnp",
	".pnp.js",
	"*.tsbuildinfo",
	".env",
	".env.*",
	".DS_Store",
	"logs",
	"*.log",
	"Thumbs.db",
	".Trash-*",
	".idea",
	".vscode",
	".nyc_output",
	".cache",
	".parcel-cache",
	".next",
	".nuxt",
	".svelte-kit",
	".turbo",
	".eslintcache",
	".stylelintcache",
	".webpack",
	".rollup.cache",
	"*.local",
	"*.swp",
	"*.swo",
	"*.bak",
}

// ProjectFiles are the per-project pattern files merged into the defaults, in order.
var ProjectFiles = []string{".gitignore", ".viaignore"}

type pattern struct {
	raw     string
	negated bool
	dirOnly bool
	glob    string
}

// Matcher evaluates file paths against a set of gitignore-style patterns.
type Matcher struct {
	patterns []pattern
}

// Default returns a matcher over Defaults.
func Default() *Matcher {
	return ParsePatterns(Defaults)
}

// Load reads patterns from a file, one per line.
func Load(fsys afero.Fs, name string) (*Matcher, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ParsePatterns(lines), nil
}

// ForProject returns Defaults extended with the ProjectFiles found directly under root.
// Missing pattern files are not an error.
func ForProject(fsys afero.Fs, root string) (*Matcher, error) {
	m := Default()
	for _, name := range ProjectFiles {
		extra, err := Load(fsys, filepath.Join(root, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, extra.patterns...)
	}
	return m, nil
}

// ParsePatterns builds a Matcher from raw pattern lines.
func ParsePatterns(lines []string) *Matcher {
	m := &Matcher{}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p := pattern{raw: line}

		if strings.HasPrefix(line, "!") {
			p.negated = true
			line = line[1:]
		}

		if strings.HasSuffix(line, "/") {
			p.dirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		line = strings.TrimPrefix(line, "/")

		p.glob = line
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Len returns the number of parsed patterns.
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.patterns)
}

// Match returns true if the given path should be ignored.
// The path should be relative to the project root; isDir indicates whether it names a directory.
func (m *Matcher) Match(p string, isDir bool) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}

	p = filepath.ToSlash(p)
	ignored := false

	for _, pat := range m.patterns {
		if pat.dirOnly && !isDir {
			continue
		}
		if matchPattern(pat.glob, p) {
			ignored = !pat.negated
		}
	}
	return ignored
}

// matchPattern checks a glob against the full path when it contains a slash, otherwise against
// every path component.
func matchPattern(glob, p string) bool {
	if strings.Contains(glob, "/") {
		matched, _ := path.Match(glob, p)
		return matched
	}

	for _, part := range strings.Split(p, "/") {
		if matched, _ := path.Match(glob, part); matched {
			return true
		}
	}
	return false
}
