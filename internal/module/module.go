// Package module captures a dependency closure as a reusable module and instantiates it under a new
// name into a destination tree.
package module

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/odvcencio/via/internal/logging"
	"github.com/odvcencio/via/pkg/deps"
	"github.com/odvcencio/via/pkg/merge"
	"github.com/odvcencio/via/pkg/model"
	"github.com/odvcencio/via/pkg/naming"
	"github.com/odvcencio/via/pkg/rewrite"
)

var (
	ErrEntryNotFound = errors.New("entry file not found")
	ErrEmptyModule   = errors.New("module has no files")
)

type options struct {
	logger   *zap.Logger
	strategy naming.Strategy
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrNop(logger)
	}
}

// WithStrategy replaces the default casing/plurality rename strategy used by Instantiate.
func WithStrategy(strategy naming.Strategy) Option {
	return func(o *options) {
		o.strategy = strategy
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Capture builds the closure of entryPath over table. Name and OriginalName are left for the
// caller.
func Capture(entryPath string, table deps.FileTable, opts ...Option) (*model.Module, error) {
	o := buildOptions(opts)
	entry := deps.Normalize(entryPath)
	if !table.Has(entry) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
	}

	root := deps.Build(entry, table, deps.WithLogger(o.logger))
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
	}
	exported := root.ExportedNames
	if exported == nil {
		exported = []string{}
	}
	o.logger.Debug("captured module", zap.String("entry", entry), zap.Int("files", root.Count()))
	return &model.Module{ExportedNames: exported, Deps: root}, nil
}

// Summary partitions the files touched by Instantiate. Skipped counts empty module files;
// Conflicts counts declarations left out of merged files because the destination already had them.
type Summary struct {
	Name      string   `json:"name"`
	Created   []string `json:"created"`
	Merged    []string `json:"merged"`
	Skipped   int      `json:"skipped"`
	Appended  int      `json:"appended"`
	Conflicts int      `json:"conflicts"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Instantiate writes every file of mod into dest with paths and contents renamed from
// mod.OriginalName to newName (mod.OriginalName when empty). Files already present in dest are
// merged additively. The first write failure is returned; earlier writes are kept.
func Instantiate(mod *model.Module, newName string, dest afero.Fs, opts ...Option) (Summary, error) {
	o := buildOptions(opts)
	if mod == nil || mod.Deps == nil {
		return Summary{}, ErrEmptyModule
	}
	target := strings.TrimSpace(newName)
	if target == "" {
		target = mod.OriginalName
	}
	strategy := o.strategy
	if strategy == nil {
		strategy = naming.NewEngine(mod.OriginalName, target)
	}

	summary := Summary{Name: target, Created: []string{}, Merged: []string{}}
	for _, node := range deps.Flatten(mod.Deps) {
		if node.Content == "" {
			summary.Skipped++
			continue
		}
		renamedPath := deps.Normalize(strategy.Rename(node.Path))
		content, report := rewrite.Rewrite(renamedPath, []byte(node.Content), strategy)
		o.logger.Debug("rewrote file",
			zap.String("from", node.Path), zap.String("to", renamedPath), zap.Int("edits", len(report.Edits)))

		dst := filepath.FromSlash(renamedPath)
		if err := dest.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return summary, fmt.Errorf("create directory for %s: %w", renamedPath, err)
		}

		existing, err := afero.ReadFile(dest, dst)
		switch {
		case errors.Is(err, os.ErrNotExist):
			if err := afero.WriteFile(dest, dst, content, 0o644); err != nil {
				return summary, fmt.Errorf("write %s: %w", renamedPath, err)
			}
			summary.Created = append(summary.Created, renamedPath)
		case err != nil:
			return summary, fmt.Errorf("read %s: %w", renamedPath, err)
		default:
			file := &merge.File{Path: renamedPath, Text: string(existing)}
			result := merge.Merge(file, &merge.File{Path: renamedPath, Text: string(content)}, merge.WithLogger(o.logger))
			if result.DestChanged {
				if err := afero.WriteFile(dest, dst, []byte(file.Text), 0o644); err != nil {
					return summary, fmt.Errorf("write %s: %w", renamedPath, err)
				}
			}
			summary.Merged = append(summary.Merged, renamedPath)
			summary.Appended += result.Appended
			summary.Conflicts += result.Skipped
			for _, w := range result.Warnings {
				summary.Warnings = append(summary.Warnings, renamedPath+": "+w)
			}
		}
	}
	return summary, nil
}

// DeriveOriginalName returns the base identifier of a module or file name: the file name without
// its extension, cut at the first '.' or '-' ("user.controller.ts" -> "user",
// "storage-stack.ts" -> "storage").
func DeriveOriginalName(name string) string {
	base := path.Base(filepath.ToSlash(strings.TrimSpace(name)))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, path.Ext(base))
	if i := strings.IndexAny(base, ".-"); i >= 0 {
		base = base[:i]
	}
	return base
}
