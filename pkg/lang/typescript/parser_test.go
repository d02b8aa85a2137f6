package typescript

import (
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `import express, { Router, Request as Req } from "express";
import * as path from 'path';
import './polyfill';
import { UserService } from './services/user.service';

export * from './user.types';
export { helper as userHelper } from './helpers';

export const USERS_TABLE = "users", MAX_USERS = 10;
let { a, b: renamed, ...rest } = source;
export interface User { id: string }
export type UserId = User['id'];
export default class UserController {}
function buildRouter(): Router { return Router(); }
export { buildRouter };
`

func TestImports(t *testing.T) {
	tree, err := ParseString("src/user.controller.ts", sample)
	require.NoError(t, err)
	defer tree.Close()

	imports := tree.Imports()
	require.Len(t, imports, 4)

	assert.Equal(t, "express", imports[0].Specifier)
	assert.Equal(t, "express", imports[0].Default)
	require.Len(t, imports[0].Named, 2)
	assert.Equal(t, "Router", imports[0].Named[0].Name)
	assert.Equal(t, "Request", imports[0].Named[1].Name)
	assert.Equal(t, "Request as Req", imports[0].Named[1].Text)
	assert.NotNil(t, imports[0].NamedImports)

	assert.Equal(t, "path", imports[1].Specifier)
	assert.Equal(t, "path", imports[1].Namespace)

	assert.Equal(t, "./polyfill", imports[2].Specifier)
	assert.Nil(t, imports[2].NamedImports)

	assert.Equal(t, "./services/user.service", imports[3].Specifier)
}

func TestExports(t *testing.T) {
	tree, err := ParseString("src/user.controller.ts", sample)
	require.NoError(t, err)
	defer tree.Close()

	exports := tree.Exports()
	require.Len(t, exports, 3)

	assert.Equal(t, "./user.types", exports[0].Specifier)
	assert.True(t, exports[0].Star)

	assert.Equal(t, "./helpers", exports[1].Specifier)
	assert.False(t, exports[1].Star)
	assert.Equal(t, []string{"userHelper"}, exports[1].Names)

	assert.Empty(t, exports[2].Specifier)
	assert.Equal(t, []string{"buildRouter"}, exports[2].Names)
}

func TestTopLevelDeclarations(t *testing.T) {
	tree, err := ParseString("src/user.controller.ts", sample)
	require.NoError(t, err)
	defer tree.Close()

	decls := tree.TopLevelDeclarations()
	require.Len(t, decls, 6)

	assert.Equal(t, KindVariable, decls[0].Kind)
	assert.Equal(t, []string{"USERS_TABLE", "MAX_USERS"}, decls[0].Names)
	assert.True(t, decls[0].Exported)

	assert.Equal(t, KindVariable, decls[1].Kind)
	assert.Equal(t, []string{"a", "renamed", "rest"}, decls[1].Names)
	assert.False(t, decls[1].Exported)

	assert.Equal(t, KindInterface, decls[2].Kind)
	assert.Equal(t, []string{"User"}, decls[2].Names)

	assert.Equal(t, KindTypeAlias, decls[3].Kind)
	assert.Equal(t, []string{"UserId"}, decls[3].Names)

	assert.Equal(t, KindClass, decls[4].Kind)
	assert.Equal(t, []string{"UserController"}, decls[4].Names)
	assert.True(t, decls[4].Default)
	assert.Equal(t, "export default class UserController {}", tree.Text(decls[4].Statement))

	assert.Equal(t, KindFunction, decls[5].Kind)
	assert.Equal(t, []string{"buildRouter"}, decls[5].Names)
}

func TestLiteral(t *testing.T) {
	tree, err := ParseString("a.ts", "const a = 'users'; const b = `users`; const c = `${x}users`;")
	require.NoError(t, err)
	defer tree.Close()

	var literals []string
	var quotes []string
	Walk(tree.Root(), func(n *sitter.Node) bool {
		if inner, quote, ok := tree.Literal(n); ok {
			literals = append(literals, inner)
			quotes = append(quotes, quote)
		}
		return true
	})
	assert.Equal(t, []string{"users", "users"}, literals)
	assert.Equal(t, []string{"'", "`"}, quotes)
}

func TestParseJavaScriptAndTSX(t *testing.T) {
	js, err := ParseString("server.js", "const x = require('./x');\nmodule.exports = x;\n")
	require.NoError(t, err)
	defer js.Close()
	assert.Equal(t, "program", js.Root().Type())

	tsx, err := ParseString("Button.tsx", "export const Button = () => <button>ok</button>;\n")
	require.NoError(t, err)
	defer tsx.Close()
	assert.False(t, tsx.Root().HasError())
}
