package main

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/odvcencio/via/internal/module"
)

func newUseCmd(a *app) *cobra.Command {
	var dryRun bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "use <module> [new-name]",
		Short: "Recreate a learned module in the project under a new name",
		Long: `Recreate a learned module in the project under a new name.

Every captured file is renamed and rewritten from the module's original name to the new name.
Files that already exist are merged: missing imports and declarations are added, nothing is
removed. The same command is available as 'via <module> create <new-name>'.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.store()
			if err != nil {
				return err
			}
			mod, err := st.Load(args[0])
			if err != nil {
				return err
			}
			newName := ""
			if len(args) == 2 {
				newName = args[1]
			}

			var dest afero.Fs = afero.NewBasePathFs(a.fs, a.projectDir)
			if dryRun {
				dest = afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(dest), afero.NewMemMapFs())
			}
			summary, err := module.Instantiate(mod, newName, dest, module.WithLogger(a.logger))
			if err != nil {
				return err
			}

			if jsonOutput {
				return emitJSON(cmd.OutOrStdout(), summary)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderSummary(summary, dryRun))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would change without writing")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "emit JSON output")
	return cmd
}
