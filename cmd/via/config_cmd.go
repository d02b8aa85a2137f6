package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/via/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	var provider string
	var modelName string
	var apiKey string
	var baseURL string
	var show bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the AI provider settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}

			changed := false
			flags := cmd.Flags()
			if flags.Changed("provider") {
				previous := cfg.Provider
				cfg.Provider = strings.ToLower(strings.TrimSpace(provider))
				if cfg.Provider != previous && !flags.Changed("model") {
					cfg.Model = config.DefaultModels[cfg.Provider]
				}
				if !flags.Changed("base-url") {
					switch {
					case cfg.Provider == config.ProviderOllama && cfg.BaseURL == "":
						cfg.BaseURL = config.DefaultOllamaBaseURL
					case cfg.Provider != config.ProviderOllama && cfg.BaseURL == config.DefaultOllamaBaseURL:
						cfg.BaseURL = ""
					}
				}
				changed = true
			}
			if flags.Changed("model") {
				cfg.Model = strings.TrimSpace(modelName)
				changed = true
			}
			if flags.Changed("api-key") {
				cfg.APIKey = strings.TrimSpace(apiKey)
				changed = true
			}
			if flags.Changed("base-url") {
				cfg.BaseURL = strings.TrimSpace(baseURL)
				changed = true
			}

			out := cmd.OutOrStdout()
			if changed {
				if err := cfg.Validate(); err != nil {
					return err
				}
				if !config.KnownModel(cfg.Provider, cfg.Model) {
					fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf(
						"model %q is not in the known list for %s: %s", cfg.Model, cfg.Provider, strings.Join(config.Models[cfg.Provider], ", "))))
				}
				if err := config.Save(a.fs, a.storageRoot, cfg); err != nil {
					return err
				}
				fmt.Fprintf(out, "saved %s\n", config.Path(a.storageRoot))
			}
			if show || !changed {
				writeConfig(out, cfg.Redacted())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "AI provider ("+strings.Join(config.Providers, ", ")+")")
	cmd.Flags().StringVar(&modelName, "model", "", "model used for module detection")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the provider")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "override the provider API endpoint")
	cmd.Flags().BoolVar(&show, "show", false, "print the resulting configuration")
	return cmd
}

func writeConfig(w io.Writer, cfg config.Config) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "(not set)"
	}
	fmt.Fprintln(w, headerStyle.Render("CONFIG"))
	fmt.Fprintf(w, "  storage root: %s\n", cfg.StorageRoot)
	fmt.Fprintf(w, "  provider:     %s\n", cfg.Provider)
	fmt.Fprintf(w, "  model:        %s\n", cfg.Model)
	fmt.Fprintf(w, "  api key:      %s\n", apiKey)
	if cfg.BaseURL != "" {
		fmt.Fprintf(w, "  base url:     %s\n", cfg.BaseURL)
	}
}
