// Package watch reports batches of changed project files using fsnotify.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/odvcencio/via/internal/logging"
	"github.com/odvcencio/via/pkg/ignore"
	"github.com/odvcencio/via/pkg/lang"
)

const DefaultDebounce = 250 * time.Millisecond

type Options struct {
	Root     string
	Matcher  *ignore.Matcher
	Debounce time.Duration
	// SourcesOnly drops events for files that are not TS/JS sources.
	SourcesOnly bool
	Logger      *zap.Logger
}

// Run watches opts.Root recursively until ctx is done. onChange receives the sorted,
// slash-separated root-relative paths changed during each debounce window.
func Run(ctx context.Context, opts Options, onChange func(changed []string)) error {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return err
	}
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		root = filepath.Dir(root)
	}
	logger := logging.OrNop(opts.Logger)
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root, root, opts.Matcher); err != nil {
		return err
	}
	logger.Debug("watching", zap.String("root", root), zap.Duration("debounce", debounce))

	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			eventPath := filepath.Clean(event.Name)
			if event.Op&fsnotify.Create != 0 {
				if fi, statErr := os.Stat(eventPath); statErr == nil && fi.IsDir() {
					if err := addRecursive(watcher, eventPath, root, opts.Matcher); err != nil {
						logger.Warn("cannot watch new directory", zap.String("dir", eventPath), zap.Error(err))
					}
					continue
				}
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			rel, ok := relative(root, eventPath)
			if !ok || shouldIgnore(rel, opts.Matcher) {
				continue
			}
			if opts.SourcesOnly && !lang.IsSource(rel) {
				continue
			}
			if len(pending) > 0 && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			pending[rel] = true
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = map[string]bool{}
			logger.Debug("change batch", zap.Strings("paths", changed))
			onChange(changed)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return watchErr
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, dir, root string, matcher *ignore.Matcher) error {
	return filepath.WalkDir(filepath.Clean(dir), func(p string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if p != root {
			if rel, ok := relative(root, p); ok && matcher.Match(rel, true) {
				return filepath.SkipDir
			}
		}
		return watcher.Add(p)
	})
}

func shouldIgnore(rel string, matcher *ignore.Matcher) bool {
	base := filepath.Base(rel)
	if strings.HasSuffix(base, ".swx") || strings.HasPrefix(base, ".#") || strings.HasSuffix(base, "~") {
		return true
	}
	return matcher.Match(rel, false)
}

func relative(root, p string) (string, bool) {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
