package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Lito-docs/graph/internal/discovery"
)

// watchDebounce coalesces bursts of editor writes into one rebuild.
const watchDebounce = 100 * time.Millisecond

// BuildFunc receives the outcome of every build started by Watch.
type BuildFunc func(*BuildResult, error)

// Watch builds docsPath once, then rebuilds whenever a Markdown file or the
// ignore file under it changes. It blocks until ctx is cancelled.
// Rebuilds never overlap and onBuild is never called concurrently.
func (e *Engine) Watch(ctx context.Context, docsPath string, onBuild BuildFunc) error {
	root, err := filepath.Abs(docsPath)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	rebuild := func() {
		mu.Lock()
		defer mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		onBuild(e.Build(ctx, root))
	}

	rebuild()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDirRecursive(watcher, root); err != nil {
		return err
	}
	e.logger.Info("watching for changes", "dir", root)

	ignoreFile := e.discovery.IgnoreFile
	if ignoreFile == "" {
		ignoreFile = discovery.DefaultIgnoreFile
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			// New directories need their own watch
			if event.Op&fsnotify.Create != 0 && isDir(event.Name) {
				if err := watchDirRecursive(watcher, event.Name); err != nil {
					e.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
				}
			}

			// Removed directories have no extension; anything else must be a
			// document or the ignore file.
			name := filepath.Base(event.Name)
			if filepath.Ext(name) != "" && !discovery.IsMarkdown(name) && name != ignoreFile {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(e.debounce(), func() {
				e.logger.Debug("file changed, rebuilding", "file", event.Name)
				rebuild()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", "error", err)
		}
	}
}

func (e *Engine) debounce() time.Duration {
	if e.watchDebounce > 0 {
		return e.watchDebounce
	}
	return watchDebounce
}

// watchDirRecursive adds a directory and all subdirectories to the watcher.
// Non-directories are ignored.
func watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
