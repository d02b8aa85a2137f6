package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/via/internal/files"
	"github.com/odvcencio/via/internal/module"
	"github.com/odvcencio/via/internal/watch"
	"github.com/odvcencio/via/pkg/ignore"
	"github.com/odvcencio/via/pkg/model"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	var originalName string

	cmd := &cobra.Command{
		Use:   "watch <module> <entry>",
		Short: "Re-learn a module whenever its project sources change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			entry := strings.TrimPrefix(args[1], "./")
			if originalName == "" {
				originalName = module.DeriveOriginalName(entry)
			}

			matcher, err := ignore.ForProject(a.fs, a.projectDir)
			if err != nil {
				return err
			}
			relearn := func(ctx context.Context) error {
				mod, err := relearnModule(ctx, a, matcher, name, originalName, entry)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", time.Now().Format("15:04:05"), mod.Name,
					mutedStyle.Render(fmt.Sprintf("(%d files)", mod.FileCount())))
				return nil
			}
			if err := relearn(cmd.Context()); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return watch.Run(ctx, watch.Options{
				Root:        a.projectDir,
				Matcher:     matcher,
				Debounce:    debounce,
				SourcesOnly: true,
				Logger:      a.logger,
			}, func(changed []string) {
				a.logger.Debug("sources changed", zap.Strings("paths", changed))
				if err := relearn(ctx); err != nil {
					a.logger.Error("re-learn failed", zap.String("module", name), zap.Error(err))
				}
			})
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-learning")
	cmd.Flags().StringVar(&originalName, "original-name", "", "name replaced on instantiation (default: derived from the entry file)")
	return cmd
}

func relearnModule(ctx context.Context, a *app, matcher *ignore.Matcher, name, originalName, entry string) (*model.Module, error) {
	project, err := files.Scan(ctx, a.fs, a.projectDir, files.Options{Matcher: matcher})
	if err != nil {
		return nil, err
	}
	mod, err := module.Capture(entry, project.Table, module.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	mod.Name = name
	mod.OriginalName = originalName

	st, err := a.store()
	if err != nil {
		return nil, err
	}
	if _, _, err := st.Save(mod); err != nil {
		return nil, err
	}
	return mod, nil
}
