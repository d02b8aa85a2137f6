// Package lang maps source file paths to the ECMAScript dialect used to parse them.
package lang

import (
	"path"
	"strings"
)

// Dialect selects the grammar used for a source file.
type Dialect string

const (
	TypeScript Dialect = "typescript"
	TSX        Dialect = "tsx"
	JavaScript Dialect = "javascript"
)

// SourceExtensions lists the extensions treated as parseable module sources, in resolution order.
var SourceExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs"}

// DialectForPath picks the grammar for a file by extension. Unknown extensions parse as TypeScript.
func DialectForPath(filePath string) Dialect {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".tsx", ".jsx":
		return TSX
	case ".js", ".mjs", ".cjs":
		return JavaScript
	default:
		return TypeScript
	}
}

// IsSource reports whether filePath has one of the SourceExtensions.
func IsSource(filePath string) bool {
	lower := strings.ToLower(filePath)
	for _, ext := range SourceExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
