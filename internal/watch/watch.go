// Package watch re-runs a callback when declaration files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a change triggers a run.
const DefaultDebounce = 100 * time.Millisecond

// Options configures a watch loop.
type Options struct {
	// Dirs are watched recursively; hidden directories are skipped
	Dirs []string
	// Debounce is the quiet period (default DefaultDebounce)
	Debounce time.Duration
	// Filter selects relevant paths (default Relevant)
	Filter func(path string) bool
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Func is called with the changed paths, sorted and de-duplicated.
// Returned errors are logged and the loop keeps going.
type Func func(ctx context.Context, changed []string) error

// Relevant reports whether a path is a declaration file.
func Relevant(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sql", ".yml", ".yaml":
		return true
	}
	return false
}

// Run watches opts.Dirs until ctx is done. Calls to fn never overlap.
func Run(ctx context.Context, opts Options, fn Func) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	filter := opts.Filter
	if filter == nil {
		filter = Relevant
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	watched := make(map[string]bool)
	for _, dir := range opts.Dirs {
		if err := addTree(watcher, dir, func(path string, isDir bool) {
			if isDir {
				watched[path] = true
			}
		}); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					found := false
					werr := addTree(watcher, event.Name, func(path string, isDir bool) {
						switch {
						case isDir:
							watched[path] = true
						case filter(path):
							pending[path] = struct{}{}
							found = true
						}
					})
					if werr != nil {
						logger.Warn("failed to watch new directory", "dir", event.Name, "error", werr)
					}
					if found {
						timer.Reset(debounce)
					}
					continue
				}
			}

			// A removed or renamed directory takes its declarations with it.
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && watched[event.Name] {
				forget(watcher, watched, event.Name)
				pending[event.Name] = struct{}{}
				timer.Reset(debounce)
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !filter(event.Name) {
				continue
			}

			pending[event.Name] = struct{}{}
			timer.Reset(debounce)

		case <-timer.C:
			changed := drain(pending)
			logger.Debug("change detected", "files", changed)
			if err := fn(ctx, changed); err != nil {
				logger.Error("run failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// addTree adds dir and its non-hidden subdirectories to the watcher.
// visit sees every directory added and every file found on the way.
func addTree(watcher *fsnotify.Watcher, dir string, visit func(path string, isDir bool)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			visit(path, false)
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return err
		}
		visit(path, true)
		return nil
	})
}

// forget drops dir and everything below it from the watch set.
func forget(watcher *fsnotify.Watcher, watched map[string]bool, dir string) {
	prefix := dir + string(filepath.Separator)
	for path := range watched {
		if path == dir || strings.HasPrefix(path, prefix) {
			delete(watched, path)
			_ = watcher.Remove(path)
		}
	}
}

func drain(pending map[string]struct{}) []string {
	out := make([]string, 0, len(pending))
	for p := range pending {
		out = append(out, p)
		delete(pending, p)
	}
	sort.Strings(out)
	return out
}
