// Package config loads and saves via's settings: the storage root and the AI provider used for
// module detection.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "via"
	// FileName is the config file name inside the storage root.
	FileName = "config.json"
	// RootEnv overrides the default storage root.
	RootEnv = "VIA_HOME"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"

	DefaultProvider = ProviderOpenAI
	DefaultModel    = "gpt-4o-mini"

	// DefaultOllamaBaseURL is the local Ollama server used when no base URL is configured.
	DefaultOllamaBaseURL = "http://localhost:11434"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported AI provider")
	ErrMissingAPIKey       = errors.New("missing AI provider API key")
)

// Providers lists the supported providers in display order.
var Providers = []string{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderOllama}

// Models lists the known models of each supported provider. Ollama serves whatever is pulled
// locally, so its list is empty and any model name is accepted.
var Models = map[string][]string{
	ProviderOpenAI:    {"gpt-4o", "gpt-4o-mini", "gpt-5.2", "gpt-5-mini", "gpt-5-nano", "gpt-5"},
	ProviderAnthropic: {"claude-haiku-4-5", "claude-sonnet-4-5"},
	ProviderGoogle:    {"gemini-2.5-flash", "gemini-2.5-pro", "gemini-flash-latest", "gemini-pro-latest"},
	ProviderOllama:    nil,
}

// DefaultModels is the model picked for a provider when none is configured.
var DefaultModels = map[string]string{
	ProviderOpenAI:    DefaultModel,
	ProviderAnthropic: "claude-haiku-4-5",
	ProviderGoogle:    "gemini-2.5-flash",
	ProviderOllama:    "llama3",
}

// Config is the resolved configuration. StorageRoot is never read from the file; it is where the
// file lives.
type Config struct {
	StorageRoot string `mapstructure:"-" json:"-"`
	Provider    string `mapstructure:"provider" json:"provider"`
	Model       string `mapstructure:"model" json:"model"`
	APIKey      string `mapstructure:"apiKey" json:"apiKey,omitempty"`
	BaseURL     string `mapstructure:"baseUrl" json:"baseUrl,omitempty"`
	Verbose     bool   `mapstructure:"verbose" json:"-"`
}

// DefaultConfig returns the defaults rooted at root.
func DefaultConfig(root string) *Config {
	return &Config{
		StorageRoot: root,
		Provider:    DefaultProvider,
		Model:       DefaultModel,
	}
}

// DefaultRoot returns $VIA_HOME, or ~/.via.
func DefaultRoot() (string, error) {
	if root := strings.TrimSpace(os.Getenv(RootEnv)); root != "" {
		return root, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, "."+AppName), nil
}

// Path returns the config file path under root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

type LoadOptions struct {
	// EnvFiles are dotenv files loaded before resolving environment overrides. Missing files are
	// skipped; variables already set in the process win.
	EnvFiles []string
}

// Load reads <root>/config.json from fsys over the defaults, then applies VIA_* environment
// overrides. A missing file yields the defaults. When no model is configured the provider's
// default model is used.
func Load(fsys afero.Fs, root string, opts LoadOptions) (*Config, error) {
	for _, name := range opts.EnvFiles {
		if err := loadEnvFile(fsys, name); err != nil {
			return nil, err
		}
	}

	v := viper.New()
	v.SetFs(fsys)
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("apiKey", "")
	v.SetDefault("baseUrl", "")
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("VIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("provider")
	_ = v.BindEnv("model")
	_ = v.BindEnv("apiKey", "VIA_API_KEY")
	_ = v.BindEnv("baseUrl", "VIA_BASE_URL")
	_ = v.BindEnv("verbose")

	path := Path(root)
	if _, err := fsys.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.StorageRoot = root
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModels[cfg.Provider]
	}
	if cfg.APIKey == "" {
		cfg.APIKey = apiKeyFromEnv(cfg.Provider)
	}
	return &cfg, nil
}

// loadEnvFile applies a dotenv file without overriding variables already present in the process.
func loadEnvFile(fsys afero.Fs, name string) error {
	f, err := fsys.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	vars, err := godotenv.Parse(f)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	for key, value := range vars {
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return err
		}
	}
	return nil
}

func apiKeyFromEnv(provider string) string {
	if provider == ProviderOllama || provider == "" {
		return ""
	}
	candidates := []string{strings.ToUpper(provider) + "_API_KEY"}
	if provider == ProviderGoogle {
		candidates = append(candidates, "GEMINI_API_KEY")
	}
	for _, name := range candidates {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// Save writes cfg to <root>/config.json on fsys, creating root when needed.
func Save(fsys afero.Fs, root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", root, err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, Path(root), append(data, '\n'), 0o600)
}

// KnownModel reports whether model is listed for the provider. Every model is known for providers
// without a fixed list.
func KnownModel(provider, model string) bool {
	models := Models[provider]
	return len(models) == 0 || slices.Contains(models, model)
}

// Validate checks the provider and model. The API key is checked separately by RequireAPIKey
// because only detection needs it.
func (c *Config) Validate() error {
	if _, ok := Models[c.Provider]; !ok {
		return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedProvider, c.Provider, strings.Join(Providers, ", "))
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model is empty")
	}
	return nil
}

// RequireAPIKey fails when no API key is configured for a hosted provider. Ollama needs none.
func (c *Config) RequireAPIKey() error {
	if c.Provider == ProviderOllama {
		return nil
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: set it with 'via config --api-key' or %s_API_KEY", ErrMissingAPIKey, strings.ToUpper(c.Provider))
	}
	return nil
}

// Redacted returns a copy safe for display.
func (c Config) Redacted() Config {
	if len(c.APIKey) > 4 {
		c.APIKey = strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
	} else if c.APIKey != "" {
		c.APIKey = "****"
	}
	return c
}
