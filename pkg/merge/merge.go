// Package merge folds a rewritten source file into an existing destination file. The merge is
// strictly additive: destination declarations and imports are never removed or rewritten, only
// extended.
package merge

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"go.uber.org/zap"

	"github.com/odvcencio/via/pkg/lang/typescript"
)

// File is a source file held in memory. Merge mutates the destination's Text.
type File struct {
	Path string
	Text string
}

type Result struct {
	Appended      int      `json:"appended"`
	Skipped       int      `json:"skipped"`
	ImportsAdded  int      `json:"imports_added"`
	NamesAdded    int      `json:"names_added"`
	Warnings      []string `json:"warnings,omitempty"`
	DestChanged   bool     `json:"dest_changed"`
	ParseFailures int      `json:"parse_failures,omitempty"`
}

type Option func(*merger)

// WithLogger reports collisions on logger as warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(m *merger) {
		if logger != nil {
			m.logger = logger
		}
	}
}

type insertion struct {
	at   int
	text string
	seq  int
}

type merger struct {
	logger *zap.Logger
	result Result
	edits  []insertion
}

func (m *merger) insert(at int, text string) {
	m.edits = append(m.edits, insertion{at: at, text: text, seq: len(m.edits)})
}

func (m *merger) warn(path, msg string, fields ...zap.Field) {
	m.result.Warnings = append(m.result.Warnings, msg)
	m.logger.Warn(msg, append([]zap.Field{zap.String("path", path)}, fields...)...)
}

// Merge appends incoming's top-level declarations and imports that dest lacks.
//
// A class, function, interface or type alias is skipped when any of those four kinds in dest already
// declares the same name. A variable statement is appended whole as soon as one of its bindings is
// missing from dest. Imports from a specifier dest already imports have their missing named
// specifiers added to the existing statement; other imports are appended after dest's last import.
func Merge(dest, incoming *File, opts ...Option) Result {
	m := &merger{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	if dest == nil || incoming == nil {
		return m.result
	}

	destTree, err := typescript.Parse(context.Background(), dest.Path, []byte(dest.Text))
	if err != nil {
		m.result.ParseFailures++
		m.warn(dest.Path, "destination could not be parsed; left unchanged", zap.Error(err))
		return m.result
	}
	defer destTree.Close()

	srcTree, err := typescript.Parse(context.Background(), incoming.Path, []byte(incoming.Text))
	if err != nil {
		m.result.ParseFailures++
		m.warn(dest.Path, "incoming file could not be parsed; destination left unchanged", zap.Error(err))
		return m.result
	}
	defer srcTree.Close()

	// Imports are planned first so that, in an empty destination, they land ahead of declarations.
	m.mergeImports(dest, destTree, srcTree)
	m.mergeDeclarations(dest, destTree, srcTree)

	if len(m.edits) > 0 {
		dest.Text = apply(dest.Text, m.edits)
		m.result.DestChanged = true
	}
	return m.result
}

func (m *merger) mergeDeclarations(dest *File, destTree, srcTree *typescript.Tree) {
	named := map[string]bool{}
	bindings := map[string]bool{}
	for _, decl := range destTree.TopLevelDeclarations() {
		switch decl.Kind {
		case typescript.KindClass, typescript.KindFunction, typescript.KindInterface, typescript.KindTypeAlias:
			for _, name := range decl.Names {
				named[name] = true
			}
		case typescript.KindVariable:
			for _, name := range decl.Names {
				bindings[name] = true
			}
		}
	}

	var appended []string
	for _, decl := range srcTree.TopLevelDeclarations() {
		switch decl.Kind {
		case typescript.KindClass, typescript.KindFunction, typescript.KindInterface, typescript.KindTypeAlias:
			if len(decl.Names) == 0 {
				continue
			}
			name := decl.Names[0]
			if named[name] {
				m.result.Skipped++
				m.warn(dest.Path, fmt.Sprintf("skipping %q: already exists in the destination file", name),
					zap.String("name", name), zap.String("kind", string(decl.Kind)))
				continue
			}
			named[name] = true
			appended = append(appended, srcTree.Text(decl.Statement))
			m.result.Appended++

		case typescript.KindVariable:
			missing := ""
			for _, name := range decl.Names {
				if !bindings[name] {
					missing = name
					break
				}
			}
			if missing == "" {
				if len(decl.Names) > 0 {
					m.result.Skipped++
					m.warn(dest.Path, fmt.Sprintf("skipping variable statement %q: all bindings already exist", strings.Join(decl.Names, ", ")),
						zap.Strings("names", decl.Names))
				}
				continue
			}
			for _, name := range decl.Names {
				bindings[name] = true
			}
			appended = append(appended, srcTree.Text(decl.Statement))
			m.result.Appended++
		}
	}

	if len(appended) == 0 {
		return
	}
	var b strings.Builder
	if dest.Text != "" && !strings.HasSuffix(dest.Text, "\n") {
		b.WriteString("\n")
	}
	for _, text := range appended {
		if dest.Text != "" || b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	m.insert(len(dest.Text), b.String())
}

func (m *merger) mergeImports(dest *File, destTree, srcTree *typescript.Tree) {
	destImports := destTree.Imports()
	bySpecifier := map[string]typescript.Import{}
	for _, imp := range destImports {
		if _, ok := bySpecifier[imp.Specifier]; !ok {
			bySpecifier[imp.Specifier] = imp
		}
	}

	var newImports []string
	pending := map[string][]string{}
	var pendingOrder []string
	present := map[string]map[string]bool{}
	for _, imp := range srcTree.Imports() {
		existing, ok := bySpecifier[imp.Specifier]
		if !ok {
			newImports = append(newImports, srcTree.Text(imp.Statement))
			m.result.ImportsAdded++
			continue
		}
		if present[imp.Specifier] == nil {
			present[imp.Specifier] = map[string]bool{}
			for _, n := range existing.Named {
				present[imp.Specifier][n.Name] = true
			}
		}
		for _, n := range imp.Named {
			if present[imp.Specifier][n.Name] {
				continue
			}
			present[imp.Specifier][n.Name] = true
			if pending[imp.Specifier] == nil {
				pendingOrder = append(pendingOrder, imp.Specifier)
			}
			pending[imp.Specifier] = append(pending[imp.Specifier], n.Text)
		}
	}

	for _, specifier := range pendingOrder {
		m.extendImport(dest, bySpecifier[specifier], pending[specifier])
	}

	if len(newImports) == 0 {
		return
	}
	if len(destImports) == 0 {
		m.insert(0, strings.Join(newImports, "\n")+"\n")
		return
	}
	last := destImports[len(destImports)-1].Statement
	m.insert(int(last.EndByte()), "\n"+strings.Join(newImports, "\n"))
}

// extendImport adds specifiers to an existing import statement, creating a named clause when the
// statement has none.
func (m *merger) extendImport(dest *File, imp typescript.Import, specifiers []string) {
	list := strings.Join(specifiers, ", ")
	switch {
	case imp.NamedImports != nil:
		entries := typescript.NamedChildren(imp.NamedImports)
		if len(entries) == 0 {
			m.insert(int(imp.NamedImports.StartByte())+1, " "+list+" ")
		} else {
			m.insert(int(entries[len(entries)-1].EndByte()), ", "+list)
		}
	case imp.Namespace != "":
		m.warn(dest.Path, fmt.Sprintf("cannot add %s to namespace import of %q", list, imp.Specifier),
			zap.String("specifier", imp.Specifier))
		return
	case imp.Default != "":
		id := defaultIdentifier(imp.Statement)
		if id == nil {
			return
		}
		m.insert(int(id.EndByte()), ", { "+list+" }")
	default:
		source := imp.Statement.ChildByFieldName("source")
		if source == nil {
			return
		}
		m.insert(int(source.StartByte()), "{ "+list+" } from ")
	}
	m.result.NamesAdded += len(specifiers)
}

func defaultIdentifier(stmt *sitter.Node) *sitter.Node {
	for _, child := range typescript.NamedChildren(stmt) {
		if child.Type() != "import_clause" {
			continue
		}
		for _, part := range typescript.NamedChildren(child) {
			if part.Type() == "identifier" {
				return part
			}
		}
	}
	return nil
}

// apply splices insertions into text from the highest offset down. Insertions at the same offset
// keep their planning order.
func apply(text string, edits []insertion) string {
	ordered := append([]insertion(nil), edits...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].at == ordered[j].at {
			return ordered[i].seq > ordered[j].seq
		}
		return ordered[i].at > ordered[j].at
	})
	for _, e := range ordered {
		text = text[:e.at] + e.text + text[e.at:]
	}
	return text
}
