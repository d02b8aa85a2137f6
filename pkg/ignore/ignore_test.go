package ignore

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePatterns_BlankAndComments(t *testing.T) {
	m := ParsePatterns([]string{"", "  ", "# comment", "  # indented comment"})
	assert.Equal(t, 0, m.Len())
}

func TestMatch_LiteralName(t *testing.T) {
	m := ParsePatterns([]string{"secret.key"})
	assert.True(t, m.Match("secret.key", false))
	assert.True(t, m.Match("subdir/secret.key", false))
	assert.False(t, m.Match("secret.keys", false))
}

func TestMatch_GlobPattern(t *testing.T) {
	m := ParsePatterns([]string{"*.log"})
	assert.True(t, m.Match("app.log", false))
	assert.True(t, m.Match("logs/debug.log", false))
	assert.False(t, m.Match("app.txt", false))
}

func TestMatch_DirectoryPattern(t *testing.T) {
	m := ParsePatterns([]string{"build/"})
	assert.True(t, m.Match("build", true))
	assert.False(t, m.Match("build", false))
	assert.True(t, m.Match("project/build", true))
}

func TestMatch_Negation(t *testing.T) {
	m := ParsePatterns([]string{"*.log", "!important.log"})
	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("important.log", false))
}

func TestMatch_PathWithSlash(t *testing.T) {
	m := ParsePatterns([]string{"/src/generated/*"})
	assert.True(t, m.Match("src/generated/api.ts", false))
	assert.False(t, m.Match("src/other/api.ts", false))
}

func TestMatch_NilMatcher(t *testing.T) {
	var m *Matcher
	assert.False(t, m.Match("anything", false))
	assert.Equal(t, 0, m.Len())
}

func TestDefaults(t *testing.T) {
	m := Default()
	ignored := []string{"node_modules", "src/node_modules/x/index.js", ".env", ".env.production", "dist", "tsconfig.tsbuildinfo", "logs/app.txt"}
	for _, p := range ignored {
		assert.True(t, m.Match(p, false), p)
	}
	kept := []string{"src/user/user.module.ts", "package.json", "lib/storage-stack.ts"}
	for _, p := range kept {
		assert.False(t, m.Match(p, false), p)
	}
}

func TestForProject(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/proj/.gitignore", []byte("generated/\n"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/proj/.viaignore", []byte("*.spec.ts\n!keep.spec.ts\n"), 0o644))

	m, err := ForProject(fsys, "/proj")
	require.NoError(t, err)
	assert.True(t, m.Match("src/generated", true))
	assert.True(t, m.Match("src/user.spec.ts", false))
	assert.False(t, m.Match("src/keep.spec.ts", false))
	assert.True(t, m.Match("node_modules", true))

	m, err = ForProject(fsys, "/empty")
	require.NoError(t, err)
	assert.Equal(t, len(Defaults), m.Len())
}
