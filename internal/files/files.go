// Package files scans a project tree into an in-memory file table, summarizes its folders for module
// detection, and lists manual capture candidates.
package files

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/via/pkg/deps"
	"github.com/odvcencio/via/pkg/ignore"
	"github.com/odvcencio/via/pkg/lang"
)

// DefaultMaxFileBytes caps the size of a file read into the table.
const DefaultMaxFileBytes = 1 << 20

var entryFilePattern = regexp2.MustCompile(`\.(module|routes|router|stack|construct)\.(ts|js|tsx|jsx)$`, regexp2.None)

// IsEntryFile reports whether name looks like a module entry point (user.module.ts, api.routes.js,
// storage.stack.ts, ...).
func IsEntryFile(name string) bool {
	ok, _ := entryFilePattern.MatchString(path.Base(filepath.ToSlash(name)))
	return ok
}

type Options struct {
	Matcher      *ignore.Matcher
	MaxFileBytes int64
	Concurrency  int
}

type Entry struct {
	Path      string `json:"path"`
	Dialect   string `json:"dialect,omitempty"`
	SizeBytes int64  `json:"size_bytes"`
	Entry     bool   `json:"entry,omitempty"`
}

// Project is a scanned tree. Table keys are slash-separated paths relative to Root.
type Project struct {
	Root    string         `json:"root"`
	Files   []Entry        `json:"files"`
	Skipped []string       `json:"skipped,omitempty"`
	Table   deps.FileTable `json:"-"`
}

// Scan walks root, skipping ignored paths and oversized files, and reads every remaining file.
// Reads run concurrently; the result is ordered by path.
func Scan(ctx context.Context, fsys afero.Fs, root string, opts Options) (*Project, error) {
	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = DefaultMaxFileBytes
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	project := &Project{Root: root, Table: deps.FileTable{}}
	err := afero.Walk(fsys, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if opts.Matcher.Match(rel, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		if info.Size() > opts.MaxFileBytes {
			project.Skipped = append(project.Skipped, rel)
			return nil
		}
		entry := Entry{Path: rel, SizeBytes: info.Size(), Entry: IsEntryFile(rel)}
		if lang.IsSource(rel) {
			entry.Dialect = string(lang.DialectForPath(rel))
		}
		project.Files = append(project.Files, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	contents := make([]string, len(project.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, entry := range project.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := afero.ReadFile(fsys, filepath.Join(root, filepath.FromSlash(entry.Path)))
			if err != nil {
				return fmt.Errorf("read %s: %w", entry.Path, err)
			}
			contents[i] = string(data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, entry := range project.Files {
		project.Table[entry.Path] = contents[i]
	}
	return project, nil
}

// FolderSummary maps every folder of the project ("." for the root) to the names of the files it
// directly contains, sorted. It is the input of module detection.
func FolderSummary(project *Project) map[string][]string {
	summary := map[string][]string{}
	if project == nil {
		return summary
	}
	for _, entry := range project.Files {
		dir := path.Dir(entry.Path)
		summary[dir] = append(summary[dir], path.Base(entry.Path))
	}
	for dir := range summary {
		sort.Strings(summary[dir])
	}
	return summary
}

// Candidate is one manually selectable module under a target folder. Entry is set when the
// candidate has a single entry file; otherwise Options lists the files to choose from.
type Candidate struct {
	Name    string   `json:"name"`
	Entry   string   `json:"entry,omitempty"`
	Options []string `json:"options,omitempty"`
}

// Candidates lists every non-ignored child of target (relative to root) as a capture candidate.
// A file is its own entry; a folder uses its first direct child matching IsEntryFile, or offers
// all its direct files as options.
func Candidates(fsys afero.Fs, root, target string, matcher *ignore.Matcher) ([]Candidate, error) {
	dir := filepath.Join(root, filepath.FromSlash(target))
	children, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}

	var out []Candidate
	for _, child := range children {
		rel := relSlash(root, filepath.Join(dir, child.Name()))
		if matcher.Match(rel, child.IsDir()) {
			continue
		}
		if !child.IsDir() {
			out = append(out, Candidate{Name: child.Name(), Entry: rel})
			continue
		}

		nested, err := afero.ReadDir(fsys, filepath.Join(dir, child.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		candidate := Candidate{Name: child.Name()}
		for _, f := range nested {
			if f.IsDir() {
				continue
			}
			p := path.Join(rel, f.Name())
			if matcher.Match(p, false) {
				continue
			}
			if IsEntryFile(f.Name()) {
				candidate.Entry = p
				candidate.Options = nil
				break
			}
			candidate.Options = append(candidate.Options, p)
		}
		out = append(out, candidate)
	}
	return out, nil
}

func relSlash(root, p string) string {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return strings.TrimPrefix(filepath.ToSlash(rel), "./")
}
