package typescript

import (
	sitter "github.com/smacker/go-tree-sitter"
)

var identifierTypes = map[string]bool{
	"identifier":                            true,
	"type_identifier":                       true,
	"property_identifier":                   true,
	"shorthand_property_identifier":         true,
	"shorthand_property_identifier_pattern": true,
	"statement_identifier":                  true,
}

// IsIdentifier reports whether n is an identifier-like leaf token.
func IsIdentifier(n *sitter.Node) bool {
	return n != nil && identifierTypes[n.Type()]
}

// Literal returns the raw inner text and quote delimiter of a string literal or a template literal
// without substitutions. ok is false for every other node.
func (t *Tree) Literal(n *sitter.Node) (inner, quote string, ok bool) {
	if n == nil {
		return "", "", false
	}
	switch n.Type() {
	case "string":
	case "template_string":
		if HasChildType(n, "template_substitution") {
			return "", "", false
		}
	default:
		return "", "", false
	}
	text := t.Text(n)
	if len(text) < 2 {
		return "", "", false
	}
	return text[1 : len(text)-1], text[:1], true
}

// DeclKind is the kind of a top-level declaration.
type DeclKind string

const (
	KindClass     DeclKind = "class"
	KindFunction  DeclKind = "function"
	KindInterface DeclKind = "interface"
	KindTypeAlias DeclKind = "type"
	KindVariable  DeclKind = "variable"
	KindEnum      DeclKind = "enum"
)

// Declaration is one top-level declaration statement. Statement is the outermost node, which is the
// wrapping export_statement for exported declarations.
type Declaration struct {
	Kind      DeclKind
	Names     []string
	Exported  bool
	Default   bool
	Statement *sitter.Node
	Decl      *sitter.Node
}

func declarationKind(nodeType string) (DeclKind, bool) {
	switch nodeType {
	case "class_declaration", "abstract_class_declaration", "class":
		return KindClass, true
	case "function_declaration", "generator_function_declaration", "function", "function_expression":
		return KindFunction, true
	case "interface_declaration":
		return KindInterface, true
	case "type_alias_declaration":
		return KindTypeAlias, true
	case "lexical_declaration", "variable_declaration":
		return KindVariable, true
	case "enum_declaration":
		return KindEnum, true
	}
	return "", false
}

// TopLevelDeclarations lists the program's top-level declarations in source order.
func (t *Tree) TopLevelDeclarations() []Declaration {
	var out []Declaration
	for _, stmt := range NamedChildren(t.Root()) {
		decl := stmt
		exported := false
		isDefault := false
		if stmt.Type() == "export_statement" {
			exported = true
			isDefault = HasChildType(stmt, "default")
			decl = stmt.ChildByFieldName("declaration")
			if decl == nil {
				continue
			}
		}
		kind, ok := declarationKind(decl.Type())
		if !ok {
			continue
		}
		out = append(out, Declaration{
			Kind:      kind,
			Names:     t.declaredNames(kind, decl),
			Exported:  exported,
			Default:   isDefault,
			Statement: stmt,
			Decl:      decl,
		})
	}
	return out
}

func (t *Tree) declaredNames(kind DeclKind, decl *sitter.Node) []string {
	if kind != KindVariable {
		if name := decl.ChildByFieldName("name"); name != nil {
			return []string{t.Text(name)}
		}
		return nil
	}

	var names []string
	for _, child := range NamedChildren(decl) {
		if child.Type() != "variable_declarator" {
			continue
		}
		names = append(names, t.BindingNames(child.ChildByFieldName("name"))...)
	}
	return names
}

// BindingNames returns the identifiers bound by a declarator name, flattening destructuring patterns.
func (t *Tree) BindingNames(pattern *sitter.Node) []string {
	if pattern == nil {
		return nil
	}
	switch pattern.Type() {
	case "identifier", "shorthand_property_identifier_pattern":
		return []string{t.Text(pattern)}
	}

	var names []string
	for _, child := range NamedChildren(pattern) {
		switch child.Type() {
		case "pair_pattern":
			names = append(names, t.BindingNames(child.ChildByFieldName("value"))...)
		case "assignment_pattern", "object_assignment_pattern":
			names = append(names, t.BindingNames(child.ChildByFieldName("left"))...)
		case "property_identifier":
		default:
			names = append(names, t.BindingNames(child)...)
		}
	}
	return names
}

// ImportName is one specifier inside a named import clause.
type ImportName struct {
	Name string
	Text string
}

// Import is one import declaration.
type Import struct {
	Specifier string
	Named     []ImportName
	Default   string
	Namespace string

	Statement    *sitter.Node
	NamedImports *sitter.Node
}

// Imports lists the top-level import declarations in source order.
func (t *Tree) Imports() []Import {
	var out []Import
	for _, stmt := range NamedChildren(t.Root()) {
		if stmt.Type() != "import_statement" {
			continue
		}
		imp := Import{Statement: stmt}
		if source := stmt.ChildByFieldName("source"); source != nil {
			imp.Specifier, _, _ = t.Literal(source)
		}
		for _, child := range NamedChildren(stmt) {
			if child.Type() != "import_clause" {
				continue
			}
			for _, part := range NamedChildren(child) {
				switch part.Type() {
				case "identifier":
					imp.Default = t.Text(part)
				case "namespace_import":
					for _, id := range NamedChildren(part) {
						imp.Namespace = t.Text(id)
					}
				case "named_imports":
					imp.NamedImports = part
					for _, spec := range NamedChildren(part) {
						if spec.Type() != "import_specifier" {
							continue
						}
						imp.Named = append(imp.Named, ImportName{
							Name: t.Text(spec.ChildByFieldName("name")),
							Text: t.Text(spec),
						})
					}
				}
			}
		}
		out = append(out, imp)
	}
	return out
}

// Export is one export statement that does not wrap a declaration.
type Export struct {
	// Specifier is set for re-exports ("export ... from './x'").
	Specifier string
	// Star is true for "export * from" without a namespace alias.
	Star bool
	// Names are the exported names of an export clause (alias when present).
	Names []string
	// DefaultValue is the identifier of "export default <identifier>".
	DefaultValue string

	Statement *sitter.Node
}

// Exports lists the top-level export statements that are not declarations.
func (t *Tree) Exports() []Export {
	var out []Export
	for _, stmt := range NamedChildren(t.Root()) {
		if stmt.Type() != "export_statement" || stmt.ChildByFieldName("declaration") != nil {
			continue
		}
		exp := Export{Statement: stmt}
		if source := stmt.ChildByFieldName("source"); source != nil {
			exp.Specifier, _, _ = t.Literal(source)
		}
		if value := stmt.ChildByFieldName("value"); value != nil && value.Type() == "identifier" {
			exp.DefaultValue = t.Text(value)
		}
		hasClause := false
		for _, child := range NamedChildren(stmt) {
			switch child.Type() {
			case "export_clause":
				hasClause = true
				for _, spec := range NamedChildren(child) {
					if spec.Type() != "export_specifier" {
						continue
					}
					name := spec.ChildByFieldName("alias")
					if name == nil {
						name = spec.ChildByFieldName("name")
					}
					exp.Names = append(exp.Names, t.Text(name))
				}
			case "namespace_export":
				hasClause = true
				for _, id := range NamedChildren(child) {
					exp.Names = append(exp.Names, t.Text(id))
				}
			}
		}
		exp.Star = exp.Specifier != "" && !hasClause && HasChildType(stmt, "*")
		out = append(out, exp)
	}
	return out
}
