package module

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/via/pkg/deps"
	"github.com/odvcencio/via/pkg/model"
)

func userTable() deps.FileTable {
	return deps.FileTable{
		"src/user/user.module.ts": `import { Module } from "@nestjs/common";
import { UserService } from "./user.service";
import { UserController } from "./user.controller";

export class UserModule {}
`,
		"src/user/user.service.ts": `import { User } from "./user.entity";

export class UserService {
  private users: User[] = [];
}
`,
		"src/user/user.controller.ts": `import { UserService } from "./user.service";

// Handles /users
export class UserController {
  constructor(private readonly userService: UserService) {}
}
`,
		"src/user/user.entity.ts": "export interface User {\n  id: string;\n}\n",
		"src/billing/invoice.ts":  "export const invoice = 1;\n",
	}
}

func captureUsers(t *testing.T) *model.Module {
	t.Helper()
	mod, err := Capture("src/user/user.module.ts", userTable())
	require.NoError(t, err)
	mod.Name = "users"
	mod.OriginalName = DeriveOriginalName("user.module.ts")
	return mod
}

func TestCapture(t *testing.T) {
	mod := captureUsers(t)
	assert.Equal(t, []string{"UserModule"}, mod.ExportedNames)
	assert.Equal(t, 4, mod.FileCount())
	assert.Equal(t, "user", mod.OriginalName)

	_, err := Capture("./src/missing.ts", userTable())
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestInstantiateIntoEmptyTree(t *testing.T) {
	mod := captureUsers(t)
	fs := afero.NewMemMapFs()

	summary, err := Instantiate(mod, "account", fs)
	require.NoError(t, err)
	assert.Equal(t, "account", summary.Name)
	assert.Equal(t, []string{
		"src/account/account.module.ts",
		"src/account/account.service.ts",
		"src/account/account.entity.ts",
		"src/account/account.controller.ts",
	}, summary.Created)
	assert.Empty(t, summary.Merged)

	got, err := afero.ReadFile(fs, "src/account/account.controller.ts")
	require.NoError(t, err)
	assert.Equal(t, `import { AccountService } from "./account.service";

// Handles /users
export class AccountController {
  constructor(private readonly accountService: AccountService) {}
}
`, string(got))

	got, err = afero.ReadFile(fs, "src/account/account.service.ts")
	require.NoError(t, err)
	assert.Contains(t, string(got), "private accounts: Account[] = [];")

	exists, err := afero.Exists(fs, "src/user/user.module.ts")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInstantiateTwiceMergesWithoutDuplicates(t *testing.T) {
	mod := captureUsers(t)
	fs := afero.NewMemMapFs()

	_, err := Instantiate(mod, "account", fs)
	require.NoError(t, err)
	first, err := afero.ReadFile(fs, "src/account/account.service.ts")
	require.NoError(t, err)

	summary, err := Instantiate(mod, "account", fs)
	require.NoError(t, err)
	assert.Empty(t, summary.Created)
	assert.Len(t, summary.Merged, 4)
	assert.Zero(t, summary.Appended)
	assert.Zero(t, summary.Skipped)
	assert.Positive(t, summary.Conflicts)
	assert.Len(t, summary.Warnings, summary.Conflicts)

	second, err := afero.ReadFile(fs, "src/account/account.service.ts")
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestInstantiateMergesIntoExistingFile(t *testing.T) {
	mod := captureUsers(t)
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "src/order/order.entity.ts", []byte("export type OrderId = string;\n"), 0o644))

	summary, err := Instantiate(mod, "order", fs)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/order/order.entity.ts"}, summary.Merged)
	assert.Len(t, summary.Created, 3)
	assert.Equal(t, 1, summary.Appended)
	assert.Zero(t, summary.Conflicts)

	got, err := afero.ReadFile(fs, "src/order/order.entity.ts")
	require.NoError(t, err)
	assert.Equal(t, "export type OrderId = string;\n\nexport interface Order {\n  id: string;\n}\n", string(got))
}

func TestInstantiateDefaultsToOriginalName(t *testing.T) {
	mod := captureUsers(t)
	fs := afero.NewMemMapFs()

	summary, err := Instantiate(mod, "  ", fs)
	require.NoError(t, err)
	assert.Equal(t, "user", summary.Name)
	assert.Contains(t, summary.Created, "src/user/user.module.ts")

	got, err := afero.ReadFile(fs, "src/user/user.entity.ts")
	require.NoError(t, err)
	assert.Equal(t, userTable()["src/user/user.entity.ts"], string(got))
}

func TestInstantiateSkipsEmptyFiles(t *testing.T) {
	mod := &model.Module{
		OriginalName: "user",
		Deps: &model.FileDependencyNode{
			Path:    "user.ts",
			Content: "import './user.css.ts';\nexport const user = 1;\n",
			Dependencies: []*model.FileDependencyNode{
				{Path: "user.css.ts", Content: "", Dependencies: []*model.FileDependencyNode{}},
			},
		},
	}
	fs := afero.NewMemMapFs()

	summary, err := Instantiate(mod, "team", fs)
	require.NoError(t, err)
	assert.Equal(t, []string{"team.ts"}, summary.Created)
	assert.Equal(t, 1, summary.Skipped)

	exists, err := afero.Exists(fs, "team.css.ts")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInstantiateRejectsEmptyModule(t *testing.T) {
	_, err := Instantiate(nil, "x", afero.NewMemMapFs())
	assert.ErrorIs(t, err, ErrEmptyModule)
	_, err = Instantiate(&model.Module{Name: "x"}, "x", afero.NewMemMapFs())
	assert.ErrorIs(t, err, ErrEmptyModule)
}

func TestInstantiateReportsWriteFailure(t *testing.T) {
	mod := captureUsers(t)
	_, err := Instantiate(mod, "account", afero.NewReadOnlyFs(afero.NewMemMapFs()))
	assert.Error(t, err)
}

func TestDeriveOriginalName(t *testing.T) {
	tests := map[string]string{
		"user.controller.ts":      "user",
		"src/user/user.module.ts": "user",
		"storage-stack.ts":        "storage",
		"users":                   "users",
		"billing.routes":          "billing",
		"":                        "",
	}
	for in, want := range tests {
		assert.Equal(t, want, DeriveOriginalName(in), in)
	}
}
