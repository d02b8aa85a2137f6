package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/via/pkg/deps"
)

func newListCmd(a *app) *cobra.Command {
	var jsonOutput bool
	var yamlOutput bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List learned modules",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return errors.New("--json and --yaml are mutually exclusive")
			}
			st, err := a.store()
			if err != nil {
				return err
			}
			entries, err := st.List()
			if err != nil {
				return err
			}

			switch {
			case jsonOutput:
				return emitJSON(cmd.OutOrStdout(), entries)
			case yamlOutput:
				return emitYAML(cmd.OutOrStdout(), entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderList(st.Root(), entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "emit YAML output")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var jsonOutput bool
	var yamlOutput bool
	var graph bool

	cmd := &cobra.Command{
		Use:   "show <module>",
		Short: "Show the files and exports of a learned module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && yamlOutput {
				return errors.New("--json and --yaml are mutually exclusive")
			}
			st, err := a.store()
			if err != nil {
				return err
			}
			mod, err := st.Load(args[0])
			if err != nil {
				return err
			}

			var value any = mod
			if graph {
				table := deps.FileTable{}
				for _, node := range deps.Flatten(mod.Deps) {
					table[node.Path] = node.Content
				}
				g, err := deps.BuildGraph(mod.Deps.Path, table, deps.WithLogger(a.logger))
				if err != nil {
					return err
				}
				if !jsonOutput && !yamlOutput {
					fmt.Fprint(cmd.OutOrStdout(), renderGraph(g))
					return nil
				}
				value = g
			}

			switch {
			case jsonOutput:
				return emitJSON(cmd.OutOrStdout(), value)
			case yamlOutput:
				return emitYAML(cmd.OutOrStdout(), value)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderModule(mod))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	cmd.Flags().BoolVar(&yamlOutput, "yaml", false, "emit YAML output")
	cmd.Flags().BoolVar(&graph, "graph", false, "show the deduplicated import graph instead of the capture tree")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "remove <module>",
		Aliases: []string{"rm"},
		Short:   "Delete a learned module",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return exitCodeError{code: 2, err: fmt.Errorf("refusing to remove %q without --yes", args[0])}
			}
			st, err := a.store()
			if err != nil {
				return err
			}
			if err := st.Remove(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm removal")
	return cmd
}
