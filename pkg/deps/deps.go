// Package deps builds the local dependency closure of an entry file by following import and
// re-export edges over an in-memory file table.
package deps

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/odvcencio/via/pkg/lang"
	"github.com/odvcencio/via/pkg/lang/typescript"
	"github.com/odvcencio/via/pkg/model"
)

// ErrNotFound is returned when an entry path is missing from the file table.
var ErrNotFound = errors.New("file not found in file table")

// FileTable maps slash-separated, project-relative paths to file contents.
type FileTable map[string]string

// Has reports whether the normalized path is present in the table.
func (t FileTable) Has(p string) bool {
	_, ok := t[Normalize(p)]
	return ok
}

type Option func(*Builder)

// WithLogger routes missing-file and parse diagnostics to logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Builder walks local dependency edges. A Builder is single-use and not safe for concurrent use.
type Builder struct {
	table   FileTable
	logger  *zap.Logger
	visited map[string]bool
	files   map[string]*fileInfo
}

type fileInfo struct {
	imports   []string
	reexports []string
	stars     []string
	named     []string
	defaults  []string
}

func newBuilder(table FileTable, opts ...Option) *Builder {
	b := &Builder{
		table:   table,
		logger:  zap.NewNop(),
		visited: map[string]bool{},
		files:   map[string]*fileInfo{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the dependency tree rooted at entryPath, or nil when the entry is absent.
//
// A single visited set is shared by the whole walk, so every file is emitted at most once: a file
// imported from two branches stays under the branch that reached it first and is dropped from the
// second. Missing files are logged and their subtree omitted.
func Build(entryPath string, table FileTable, opts ...Option) *model.FileDependencyNode {
	return newBuilder(table, opts...).build(Normalize(entryPath))
}

func (b *Builder) build(p string) *model.FileDependencyNode {
	if b.visited[p] {
		return nil
	}
	b.visited[p] = true

	content, ok := b.table[p]
	if !ok {
		b.logger.Error("source file not found in file table", zap.String("path", p))
		return nil
	}

	node := &model.FileDependencyNode{
		Path:          p,
		Content:       content,
		Dependencies:  []*model.FileDependencyNode{},
		ExportedNames: b.exportedNames(p),
	}
	info := b.info(p)
	for _, group := range [][]string{info.imports, info.reexports} {
		for _, specifier := range group {
			target, ok := Resolve(p, specifier, b.table)
			if !ok {
				continue
			}
			if dep := b.build(target); dep != nil {
				node.Dependencies = append(node.Dependencies, dep)
			}
		}
	}
	return node
}

// BuildGraph walks the closure of entryPath with an explicit worklist and returns it as an arena:
// each file appears once and every local edge is kept, so shared files are referenced from every
// importer.
func BuildGraph(entryPath string, table FileTable, opts ...Option) (model.Graph, error) {
	b := newBuilder(table, opts...)
	entry := Normalize(entryPath)
	if _, ok := table[entry]; !ok {
		return model.Graph{}, fmt.Errorf("%w: %s", ErrNotFound, entry)
	}

	var graph model.Graph
	index := map[string]int{}
	var queue []int
	add := func(p string) int {
		if i, ok := index[p]; ok {
			return i
		}
		i := len(graph.Nodes)
		index[p] = i
		graph.Nodes = append(graph.Nodes, model.GraphNode{
			Path:          p,
			Content:       table[p],
			ExportedNames: b.exportedNames(p),
		})
		queue = append(queue, i)
		return i
	}

	add(entry)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		edgeSeen := map[int]bool{}
		for _, target := range b.localTargets(graph.Nodes[current].Path) {
			next := add(target)
			if edgeSeen[next] {
				continue
			}
			edgeSeen[next] = true
			graph.Edges = append(graph.Edges, model.Edge{From: current, To: next})
		}
	}
	return graph, nil
}

func (b *Builder) localTargets(p string) []string {
	info := b.info(p)
	var out []string
	for _, group := range [][]string{info.imports, info.reexports} {
		for _, specifier := range group {
			if target, ok := Resolve(p, specifier, b.table); ok {
				out = append(out, target)
			}
		}
	}
	return out
}

// Flatten lists root and its descendants in pre-order.
func Flatten(root *model.FileDependencyNode) []*model.FileDependencyNode {
	if root == nil {
		return nil
	}
	out := []*model.FileDependencyNode{root}
	for _, dep := range root.Dependencies {
		out = append(out, Flatten(dep)...)
	}
	return out
}

func (b *Builder) info(p string) *fileInfo {
	if info, ok := b.files[p]; ok {
		return info
	}
	info := &fileInfo{}
	b.files[p] = info

	content, ok := b.table[p]
	if !ok {
		return info
	}
	tree, err := typescript.Parse(context.Background(), p, []byte(content))
	if err != nil {
		b.logger.Warn("parse failed; treating file as a leaf", zap.String("path", p), zap.Error(err))
		return info
	}
	defer tree.Close()

	analyze(tree, info)
	return info
}

// exportedNames returns the file's named exports followed by its resolved default export,
// expanding "export * from" over local targets.
func (b *Builder) exportedNames(p string) []string {
	names := b.starNames(p, map[string]bool{p: true})
	names = append(names, b.info(p).defaults...)
	return dedupe(names)
}

func (b *Builder) starNames(p string, seen map[string]bool) []string {
	info := b.info(p)
	names := append([]string(nil), info.named...)
	for _, specifier := range info.stars {
		target, ok := Resolve(p, specifier, b.table)
		if !ok || seen[target] {
			continue
		}
		seen[target] = true
		names = append(names, b.starNames(target, seen)...)
	}
	return names
}

func analyze(tree *typescript.Tree, info *fileInfo) {
	type positioned struct {
		at   uint32
		name string
	}
	var named []positioned

	decls := tree.TopLevelDeclarations()
	local := map[string]bool{}
	for _, decl := range decls {
		switch decl.Kind {
		case typescript.KindClass, typescript.KindFunction, typescript.KindVariable, typescript.KindInterface:
			for _, name := range decl.Names {
				local[name] = true
			}
		}
		if !decl.Exported {
			continue
		}
		if decl.Default {
			if decl.Kind != typescript.KindTypeAlias && decl.Kind != typescript.KindEnum {
				info.defaults = append(info.defaults, decl.Names...)
			}
			continue
		}
		for _, name := range decl.Names {
			named = append(named, positioned{at: decl.Statement.StartByte(), name: name})
		}
	}

	imported := map[string]bool{}
	for _, imp := range tree.Imports() {
		if imp.Specifier != "" {
			info.imports = append(info.imports, imp.Specifier)
		}
		if imp.Default != "" {
			imported[imp.Default] = true
		}
		for _, n := range imp.Named {
			if n.Text == n.Name {
				imported[n.Name] = true
			}
		}
	}

	for _, exp := range tree.Exports() {
		if exp.Specifier != "" {
			info.reexports = append(info.reexports, exp.Specifier)
			if exp.Star {
				info.stars = append(info.stars, exp.Specifier)
			}
		}
		for _, name := range exp.Names {
			if name == "default" {
				continue
			}
			named = append(named, positioned{at: exp.Statement.StartByte(), name: name})
		}
		if exp.DefaultValue != "" && (local[exp.DefaultValue] || imported[exp.DefaultValue]) {
			info.defaults = append(info.defaults, exp.DefaultValue)
		}
	}

	sort.SliceStable(named, func(i, j int) bool { return named[i].at < named[j].at })
	for _, item := range named {
		info.named = append(info.named, item.name)
	}
}

// Normalize converts p into the slash-separated, cleaned, project-relative form used as table keys.
func Normalize(p string) string {
	p = path.Clean(filepath.ToSlash(strings.TrimSpace(p)))
	return strings.TrimPrefix(p, "./")
}

// IsRelative reports whether specifier refers to a local file.
func IsRelative(specifier string) bool {
	return specifier == "." || specifier == ".." ||
		strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../")
}

var scriptSwaps = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

// Resolve maps a relative specifier imported from the file at from onto a table path.
// Non-relative specifiers never resolve.
func Resolve(from, specifier string, table FileTable) (string, bool) {
	if !IsRelative(specifier) {
		return "", false
	}
	base := Normalize(path.Join(path.Dir(from), specifier))

	candidates := make([]string, 0, 2*len(lang.SourceExtensions)+3)
	if lang.IsSource(base) {
		candidates = append(candidates, base)
	}
	ext := path.Ext(base)
	for _, swap := range scriptSwaps[ext] {
		candidates = append(candidates, strings.TrimSuffix(base, ext)+swap)
	}
	for _, e := range lang.SourceExtensions {
		candidates = append(candidates, base+e)
	}
	for _, e := range lang.SourceExtensions {
		candidates = append(candidates, base+"/index"+e)
	}

	for _, candidate := range candidates {
		if _, ok := table[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}
