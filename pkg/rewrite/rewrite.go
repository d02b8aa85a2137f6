// Package rewrite renames identifier and string-literal tokens of a source file while leaving every
// other byte untouched.
package rewrite

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/odvcencio/via/pkg/lang/typescript"
	"github.com/odvcencio/via/pkg/naming"
)

const (
	CategoryIdentifier = "identifier"
	CategoryLiteral    = "literal"
)

// Edit is one planned replacement over the half-open byte range [Offset, End).
type Edit struct {
	Category string `json:"category"`
	NodeType string `json:"node_type"`
	OldText  string `json:"old_text"`
	NewText  string `json:"new_text"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Offset   int    `json:"offset"`
	End      int    `json:"end"`
}

type Report struct {
	Path         string `json:"path"`
	Parsed       bool   `json:"parsed"`
	SyntaxErrors bool   `json:"syntax_errors,omitempty"`
	Identifiers  int    `json:"identifiers"`
	Literals     int    `json:"literals"`
	Edits        []Edit `json:"edits,omitempty"`
}

// Changed reports whether any edit was planned.
func (r Report) Changed() bool {
	return len(r.Edits) > 0
}

// Rewrite returns src with every identifier and string literal renamed by strategy.
// Input that cannot be parsed is returned unchanged.
func Rewrite(filePath string, src []byte, strategy naming.Strategy) ([]byte, Report) {
	report := Report{Path: filePath}
	if strategy == nil || len(src) == 0 {
		return src, report
	}

	tree, err := typescript.Parse(context.Background(), filePath, src)
	if err != nil {
		return src, report
	}
	defer tree.Close()
	report.Parsed = true
	report.SyntaxErrors = tree.Root().HasError()

	edits := planEdits(tree, strategy, &report)
	if len(edits) == 0 {
		return src, report
	}
	report.Edits = edits

	updated, err := applySourceEdits(src, edits)
	if err != nil {
		return src, Report{Path: filePath, Parsed: true}
	}
	return updated, report
}

// RewriteText is Rewrite over a string with a one-off rename strategy.
func RewriteText(filePath, text, originalName, newName string) string {
	out, _ := Rewrite(filePath, []byte(text), naming.NewEngine(originalName, newName))
	return string(out)
}

func planEdits(tree *typescript.Tree, strategy naming.Strategy, report *Report) []Edit {
	var edits []Edit
	typescript.Walk(tree.Root(), func(n *sitter.Node) bool {
		if typescript.IsIdentifier(n) {
			report.Identifiers++
			old := tree.Text(n)
			if renamed := strategy.Rename(old); renamed != old {
				edits = append(edits, newEdit(CategoryIdentifier, n, old, renamed))
			}
			return false
		}
		if inner, quote, ok := tree.Literal(n); ok {
			report.Literals++
			if renamed := strategy.Rename(inner); renamed != inner {
				edits = append(edits, newEdit(CategoryLiteral, n, tree.Text(n), quote+renamed+quote))
			}
			return false
		}
		return true
	})
	return edits
}

func newEdit(category string, n *sitter.Node, old, renamed string) Edit {
	point := n.StartPoint()
	return Edit{
		Category: category,
		NodeType: n.Type(),
		OldText:  old,
		NewText:  renamed,
		Line:     int(point.Row) + 1,
		Column:   int(point.Column) + 1,
		Offset:   int(n.StartByte()),
		End:      int(n.EndByte()),
	}
}

// applySourceEdits splices edits into source from the highest offset down so that every offset
// stays valid against the original text.
func applySourceEdits(source []byte, edits []Edit) ([]byte, error) {
	ordered := append([]Edit(nil), edits...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Offset > ordered[j].Offset
	})

	updated := append([]byte(nil), source...)
	limit := len(updated)
	for _, edit := range ordered {
		if edit.Offset < 0 || edit.End > limit || edit.Offset > edit.End {
			return nil, fmt.Errorf("invalid edit range [%d,%d) at %d:%d", edit.Offset, edit.End, edit.Line, edit.Column)
		}
		current := string(updated[edit.Offset:edit.End])
		if current != edit.OldText {
			return nil, fmt.Errorf("source mismatch at %d:%d: expected %q, found %q", edit.Line, edit.Column, edit.OldText, current)
		}
		updated = append(updated[:edit.Offset], append([]byte(edit.NewText), updated[edit.End:]...)...)
		limit = edit.Offset
	}
	return updated, nil
}
