package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"VIA_PROVIDER", "VIA_MODEL", "VIA_API_KEY", "VIA_BASE_URL", "VIA_VERBOSE", "GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()

	cfg, err := Load(afero.NewOsFs(), root, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(root), cfg)
	assert.NoError(t, cfg.Validate())
	assert.ErrorIs(t, cfg.RequireAPIKey(), ErrMissingAPIKey)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	root := filepath.Join(t.TempDir(), ".via")

	want := &Config{StorageRoot: root, Provider: "google", Model: "gemini-2.5-pro", APIKey: "secret-key", BaseURL: "http://localhost:8080"}
	require.NoError(t, Save(afero.NewOsFs(), root, want))

	data, err := os.ReadFile(Path(root))
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"google","model":"gemini-2.5-pro","apiKey":"secret-key","baseUrl":"http://localhost:8080"}`, string(data))

	got, err := Load(afero.NewOsFs(), root, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	require.NoError(t, Save(afero.NewOsFs(), root, &Config{Provider: "google", Model: "gemini-2.5-pro"}))

	t.Setenv("VIA_MODEL", "gemini-flash-latest")
	t.Setenv("GEMINI_API_KEY", "from-gemini-env")

	cfg, err := Load(afero.NewOsFs(), root, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "gemini-flash-latest", cfg.Model)
	assert.Equal(t, "from-gemini-env", cfg.APIKey)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestEnvFiles(t *testing.T) {
	clearEnv(t)
	// dotenv never overrides a variable that is set, even to "".
	require.NoError(t, os.Unsetenv("VIA_API_KEY"))
	root := t.TempDir()
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("VIA_API_KEY=dotenv-key\n"), 0o600))

	cfg, err := Load(afero.NewOsFs(), root, LoadOptions{EnvFiles: []string{filepath.Join(root, "missing.env"), envFile}})
	require.NoError(t, err)
	assert.Equal(t, "dotenv-key", cfg.APIKey)
}

func TestValidate(t *testing.T) {
	for _, provider := range Providers {
		cfg := DefaultConfig("/tmp/via")
		cfg.Provider = provider
		cfg.Model = DefaultModels[provider]
		assert.NoError(t, cfg.Validate(), provider)
	}

	cfg := DefaultConfig("/tmp/via")
	cfg.Provider = "cohere"
	assert.ErrorIs(t, cfg.Validate(), ErrUnsupportedProvider)

	cfg = DefaultConfig("/tmp/via")
	cfg.Model = " "
	assert.Error(t, cfg.Validate())
}

func TestLoadProviderConfigs(t *testing.T) {
	clearEnv(t)
	fsys := afero.NewMemMapFs()
	root := "/home/dev/.via"

	require.NoError(t, afero.WriteFile(fsys, Path(root),
		[]byte(`{"provider":"ollama","model":"llama3","baseUrl":"http://localhost:11434"}`), 0o600))
	cfg, err := Load(fsys, root, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, ProviderOllama, cfg.Provider)
	assert.Equal(t, "llama3", cfg.Model)
	assert.Equal(t, "http://localhost:11434", cfg.BaseURL)
	assert.NoError(t, cfg.Validate())
	assert.NoError(t, cfg.RequireAPIKey())

	t.Setenv("ANTHROPIC_API_KEY", "from-anthropic-env")
	require.NoError(t, afero.WriteFile(fsys, Path(root), []byte(`{"provider":"Anthropic"}`), 0o600))
	cfg, err = Load(fsys, root, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "claude-haiku-4-5", cfg.Model)
	assert.Equal(t, "from-anthropic-env", cfg.APIKey)

	t.Setenv("OPENAI_API_KEY", "from-openai-env")
	require.NoError(t, afero.WriteFile(fsys, Path(root), []byte(`{"provider":"openai","model":"gpt-4o-mini"}`), 0o600))
	cfg, err = Load(fsys, root, LoadOptions{})
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "from-openai-env", cfg.APIKey)
}

func TestSaveUsesFilesystem(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, Save(fsys, "/state/.via", &Config{Provider: ProviderOllama, Model: "mistral"}))

	data, err := afero.ReadFile(fsys, "/state/.via/config.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"provider":"ollama","model":"mistral"}`, string(data))

	assert.Error(t, Save(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/state/.via", &Config{}))
}

func TestKnownModel(t *testing.T) {
	assert.True(t, KnownModel(ProviderOpenAI, "gpt-4o"))
	assert.False(t, KnownModel(ProviderOpenAI, "gemini-2.5-pro"))
	assert.True(t, KnownModel(ProviderOllama, "anything-local"))
}

func TestRedacted(t *testing.T) {
	cfg := Config{APIKey: "abcdefgh"}
	assert.Equal(t, "****efgh", cfg.Redacted().APIKey)
	assert.Equal(t, "abcdefgh", cfg.APIKey)
	assert.Equal(t, "****", Config{APIKey: "abc"}.Redacted().APIKey)
}

func TestDefaultRoot(t *testing.T) {
	t.Setenv(RootEnv, "/custom/root")
	root, err := DefaultRoot()
	require.NoError(t, err)
	assert.Equal(t, "/custom/root", root)
}
