package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odvcencio/via/internal/config"
	"github.com/odvcencio/via/internal/detect"
	"github.com/odvcencio/via/internal/logging"
	"github.com/odvcencio/via/internal/store"
)

var version = "dev"

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

func (e exitCodeError) Unwrap() error {
	return e.err
}

// app is the state shared by every command. The storage root is resolved once, before any command
// runs, and threaded everywhere from here.
type app struct {
	storageRoot string
	projectDir  string
	verbose     bool

	fs     afero.Fs
	logger *zap.Logger

	newGenerator func(ctx context.Context, cfg *config.Config) (detect.Generator, error)
}

func newApp() *app {
	return &app{
		fs:     afero.NewOsFs(),
		logger: zap.NewNop(),
		newGenerator: func(ctx context.Context, cfg *config.Config) (detect.Generator, error) {
			return detect.NewGenerator(ctx, cfg)
		},
	}
}

func (a *app) setup() error {
	if strings.TrimSpace(a.storageRoot) == "" {
		root, err := config.DefaultRoot()
		if err != nil {
			return err
		}
		a.storageRoot = root
	}
	if strings.TrimSpace(a.projectDir) == "" {
		a.projectDir = "."
	}
	abs, err := filepath.Abs(a.projectDir)
	if err != nil {
		return err
	}
	a.projectDir = abs

	logger, err := logging.New(a.verbose)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) store() (*store.Store, error) {
	return store.Open(a.fs, a.storageRoot)
}

func (a *app) config() (*config.Config, error) {
	return config.Load(a.fs, a.storageRoot, config.LoadOptions{
		EnvFiles: []string{filepath.Join(a.projectDir, ".env"), filepath.Join(a.storageRoot, ".env")},
	})
}

type cli struct {
	app  *app
	root *cobra.Command
}

func newCLI() *cli {
	a := newApp()
	root := &cobra.Command{
		Use:           "via",
		Short:         "Capture modules from a codebase and recreate them under new names",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.storageRoot, "root", "", "storage root for learned modules (default $VIA_HOME or ~/.via)")
	root.PersistentFlags().StringVar(&a.projectDir, "dir", ".", "project directory")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLearnCmd(a),
		newUseCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newRemoveCmd(a),
		newConfigCmd(a),
		newWatchCmd(a),
	)
	return &cli{app: a, root: root}
}

func (c *cli) Run(args []string) error {
	return c.RunContext(context.Background(), args)
}

func (c *cli) RunContext(ctx context.Context, args []string) error {
	c.root.SetArgs(rewriteCreateArgs(c.root, args))
	return c.root.ExecuteContext(ctx)
}

// rewriteCreateArgs maps the per-module form "<module> create <new-name> ..." onto
// "use <module> <new-name> ...". Known commands are left alone.
func rewriteCreateArgs(root *cobra.Command, args []string) []string {
	if len(args) < 2 || args[1] != "create" || strings.HasPrefix(args[0], "-") || args[0] == "help" {
		return args
	}
	if cmd, _, err := root.Find(args[:1]); err == nil && cmd != root {
		return args
	}
	return append([]string{"use", args[0]}, args[2:]...)
}
