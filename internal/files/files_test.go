package files

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/via/pkg/ignore"
)

func writeTree(t *testing.T, fsys afero.Fs, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fsys, name, []byte(content), 0o644))
	}
}

func TestScanBuildsTable(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"/proj/src/user/user.module.ts":       "export class UserModule {}",
		"/proj/src/user/user.service.ts":      "export class UserService {}",
		"/proj/src/app.ts":                    "import './user/user.module';",
		"/proj/node_modules/lib/index.js":     "module.exports = {}",
		"/proj/.env":                          "SECRET=1",
		"/proj/dist/app.js":                   "",
		"/proj/README.md":                     "# proj",
		"/proj/src/assets/big.json":           strings.Repeat("x", 64),
		"/proj/src/user/__snapshots__/a.snap": "",
	})

	project, err := Scan(context.Background(), fsys, "/proj", Options{
		Matcher:      ignore.ParsePatterns(append(append([]string{}, ignore.Defaults...), "__snapshots__/")),
		MaxFileBytes: 32,
	})
	require.NoError(t, err)

	var paths []string
	for _, entry := range project.Files {
		paths = append(paths, entry.Path)
	}
	assert.Equal(t, []string{"README.md", "src/app.ts", "src/user/user.module.ts", "src/user/user.service.ts"}, paths)
	assert.Equal(t, []string{"src/assets/big.json"}, project.Skipped)
	assert.Equal(t, "export class UserModule {}", project.Table["src/user/user.module.ts"])
	assert.Len(t, project.Table, 4)

	assert.True(t, project.Files[2].Entry)
	assert.Equal(t, "typescript", project.Files[2].Dialect)
	assert.Empty(t, project.Files[0].Dialect)
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(context.Background(), afero.NewMemMapFs(), "/nope", Options{})
	assert.Error(t, err)
}

func TestFolderSummary(t *testing.T) {
	project := &Project{Files: []Entry{
		{Path: "src/user/user.service.ts"},
		{Path: "src/user/user.module.ts"},
		{Path: "package.json"},
	}}
	assert.Equal(t, map[string][]string{
		"src/user": {"user.module.ts", "user.service.ts"},
		".":        {"package.json"},
	}, FolderSummary(project))
	assert.Empty(t, FolderSummary(nil))
}

func TestIsEntryFile(t *testing.T) {
	for _, name := range []string{"user.module.ts", "api.routes.js", "lib/storage.stack.ts", "app.router.tsx", "bucket.construct.jsx"} {
		assert.True(t, IsEntryFile(name), name)
	}
	for _, name := range []string{"user.service.ts", "module.ts", "storage-stack.ts", "user.module.ts.bak"} {
		assert.False(t, IsEntryFile(name), name)
	}
}

func TestCandidates(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeTree(t, fsys, map[string]string{
		"/proj/src/modules/user/user.module.ts":  "",
		"/proj/src/modules/user/user.service.ts": "",
		"/proj/src/modules/billing/invoice.ts":   "",
		"/proj/src/modules/billing/payment.ts":   "",
		"/proj/src/modules/helpers.ts":           "",
		"/proj/src/modules/debug.log":            "",
	})

	candidates, err := Candidates(fsys, "/proj", "src/modules", ignore.Default())
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, Candidate{Name: "billing", Options: []string{"src/modules/billing/invoice.ts", "src/modules/billing/payment.ts"}}, candidates[0])
	assert.Equal(t, Candidate{Name: "helpers.ts", Entry: "src/modules/helpers.ts"}, candidates[1])
	assert.Equal(t, Candidate{Name: "user", Entry: "src/modules/user/user.module.ts"}, candidates[2])

	_, err = Candidates(fsys, "/proj", "missing", nil)
	assert.Error(t, err)
}
