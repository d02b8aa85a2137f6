package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/via/internal/detect"
	"github.com/odvcencio/via/internal/files"
	"github.com/odvcencio/via/internal/module"
	"github.com/odvcencio/via/pkg/ignore"
	"github.com/odvcencio/via/pkg/model"
)

type learnTarget struct {
	name         string
	originalName string
	entry        string
}

type learnedModule struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	Entry        string `json:"entry"`
	Files        int    `json:"files"`
	ID           string `json:"id"`
	Updated      bool   `json:"updated"`
}

func newLearnCmd(a *app) *cobra.Command {
	var name string
	var entry string
	var manual bool
	var in string
	var selected []string
	var forceLow bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "learn [path]",
		Short: "Capture modules from a project and store them for reuse",
		Long: `Capture modules from a project and store them for reuse.

By default the project layout is sent to the configured AI provider, which proposes module
boundaries. Use --entry to capture one module from a known entry file, or --manual to capture
the folders and files under --in without calling the provider.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.projectDir
			if len(args) == 1 {
				dir = args[0]
			}
			if name != "" && entry == "" {
				return errors.New("--name requires --entry")
			}

			matcher, err := ignore.ForProject(a.fs, dir)
			if err != nil {
				return err
			}
			project, err := files.Scan(cmd.Context(), a.fs, dir, files.Options{Matcher: matcher})
			if err != nil {
				return err
			}
			a.logger.Debug("scanned project", zap.String("root", dir), zap.Int("files", len(project.Files)))

			var targets []learnTarget
			switch {
			case entry != "":
				targets = []learnTarget{entryTarget(name, entry)}
			case manual:
				targets, err = manualTargets(a, cmd.ErrOrStderr(), dir, in, matcher)
			default:
				targets, err = detectTargets(cmd, a, project, forceLow)
			}
			if err != nil {
				return err
			}
			targets = selectTargets(targets, selected)
			if len(targets) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no modules to learn"))
				return nil
			}

			st, err := a.store()
			if err != nil {
				return err
			}
			learned := make([]learnedModule, 0, len(targets))
			for _, target := range targets {
				mod, err := module.Capture(target.entry, project.Table, module.WithLogger(a.logger))
				if err != nil {
					return err
				}
				mod.Name = target.name
				mod.OriginalName = target.originalName
				id, updated, err := st.Save(mod)
				if err != nil {
					return err
				}
				learned = append(learned, learnedModule{
					Name:         mod.Name,
					OriginalName: mod.OriginalName,
					Entry:        target.entry,
					Files:        mod.FileCount(),
					ID:           id,
					Updated:      updated,
				})
			}

			if jsonOutput {
				return emitJSON(cmd.OutOrStdout(), learned)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("LEARNED MODULES (%d)", len(learned))))
			for _, m := range learned {
				verb := "saved"
				if m.Updated {
					verb = "updated"
				}
				fmt.Fprintf(out, "  %-20s %s %s\n", m.Name, m.Entry,
					mutedStyle.Render(fmt.Sprintf("(%d files, %s)", m.Files, verb)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&entry, "entry", "", "capture a single module from this entry file (relative to the project)")
	cmd.Flags().StringVar(&name, "name", "", "module name for --entry (default: derived from the entry file)")
	cmd.Flags().BoolVar(&manual, "manual", false, "capture folders and files under --in without the AI provider")
	cmd.Flags().StringVar(&in, "in", ".", "folder whose children become modules in --manual mode")
	cmd.Flags().StringSliceVar(&selected, "select", nil, "only learn the named modules")
	cmd.Flags().BoolVar(&forceLow, "force-low", false, "also learn low-confidence detections")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	return cmd
}

func entryTarget(name, entry string) learnTarget {
	entry = strings.TrimPrefix(strings.TrimSpace(entry), "./")
	originalName := module.DeriveOriginalName(entry)
	if strings.TrimSpace(name) == "" {
		name = originalName
	}
	return learnTarget{name: strings.TrimSpace(name), originalName: originalName, entry: entry}
}

func manualTargets(a *app, errOut io.Writer, dir, in string, matcher *ignore.Matcher) ([]learnTarget, error) {
	candidates, err := files.Candidates(a.fs, dir, in, matcher)
	if err != nil {
		return nil, err
	}
	targets := make([]learnTarget, 0, len(candidates))
	for _, c := range candidates {
		if c.Entry == "" {
			if len(c.Options) > 0 {
				fmt.Fprintln(errOut, warnStyle.Render(fmt.Sprintf(
					"%s: no entry file found; rerun with --entry and one of: %s", c.Name, strings.Join(c.Options, ", "))))
			}
			continue
		}
		original := module.DeriveOriginalName(c.Name)
		targets = append(targets, learnTarget{name: original, originalName: original, entry: c.Entry})
	}
	return targets, nil
}

func detectTargets(cmd *cobra.Command, a *app, project *files.Project, forceLow bool) ([]learnTarget, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	gen, err := a.newGenerator(cmd.Context(), cfg)
	if err != nil {
		return nil, err
	}
	detection, err := detect.New(gen, detect.WithLogger(a.logger)).Detect(cmd.Context(), files.FolderSummary(project))
	if err != nil {
		return nil, err
	}

	modules := detection.Modules
	if !forceLow {
		modules = detect.Usable(detection)
		if dropped := len(detection.Modules) - len(modules); dropped > 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(fmt.Sprintf(
				"%d low-confidence module(s) ignored; use --force-low to include them", dropped)))
		}
	}
	targets := make([]learnTarget, 0, len(modules))
	for _, m := range modules {
		targets = append(targets, detectedTarget(m))
	}
	return targets, nil
}

func detectedTarget(m model.DetectedModule) learnTarget {
	return learnTarget{
		name:         m.ModuleName,
		originalName: module.DeriveOriginalName(m.ModuleName),
		entry:        m.EntryFile,
	}
}

func selectTargets(targets []learnTarget, selected []string) []learnTarget {
	if len(selected) == 0 {
		return targets
	}
	want := map[string]bool{}
	for _, name := range selected {
		want[strings.TrimSpace(name)] = true
	}
	kept := targets[:0]
	for _, t := range targets {
		if want[t.name] {
			kept = append(kept, t)
		}
	}
	return kept
}
