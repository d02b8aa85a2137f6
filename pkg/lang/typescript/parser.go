// Package typescript parses TypeScript, TSX and JavaScript sources with tree-sitter and exposes the
// node helpers shared by the dependency builder, the rewriter and the merge engine.
package typescript

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	tsgrammar "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/odvcencio/via/pkg/lang"
)

// Tree is a parsed source file. Close releases the underlying tree-sitter tree.
type Tree struct {
	Path    string
	Src     []byte
	Dialect lang.Dialect

	tree *sitter.Tree
}

func language(dialect lang.Dialect) *sitter.Language {
	switch dialect {
	case lang.TSX:
		return tsx.GetLanguage()
	case lang.JavaScript:
		return javascript.GetLanguage()
	default:
		return tsgrammar.GetLanguage()
	}
}

// Parse parses src using the dialect chosen from path.
func Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	dialect := lang.DialectForPath(path)
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(language(dialect))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("parse %s: empty tree", path)
	}
	return &Tree{Path: path, Src: src, Dialect: dialect, tree: tree}, nil
}

// ParseString is Parse for in-memory text with a background context.
func ParseString(path, text string) (*Tree, error) {
	return Parse(context.Background(), path, []byte(text))
}

// Root returns the program node.
func (t *Tree) Root() *sitter.Node {
	if t == nil || t.tree == nil {
		return nil
	}
	return t.tree.RootNode()
}

// Close releases the tree.
func (t *Tree) Close() {
	if t != nil && t.tree != nil {
		t.tree.Close()
		t.tree = nil
	}
}

// Text returns the exact source text covered by n.
func (t *Tree) Text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(t.Src[n.StartByte():n.EndByte()])
}

// Walk visits n and its descendants in pre-order. Returning false from fn skips the node's children.
func Walk(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		Walk(n.Child(i), fn)
	}
}

// NamedChildren returns the named children of n in source order.
func NamedChildren(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		if child := n.NamedChild(i); child != nil {
			out = append(out, child)
		}
	}
	return out
}

// HasChildType reports whether n has a direct child (named or anonymous) of the given type.
func HasChildType(n *sitter.Node, nodeType string) bool {
	if n == nil {
		return false
	}
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		if child := n.Child(i); child != nil && child.Type() == nodeType {
			return true
		}
	}
	return false
}
