package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

// watchFiles calls rerun after any of files is written, once per burst of
// changes, until ctx is done. Reruns never overlap.
func watchFiles(ctx context.Context, out io.Writer, files []string, rerun func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch parent directories so editors that replace files are still seen.
	watched := make(map[string]bool, len(files))
	watchedDirs := make(map[string]bool)
	for _, file := range files {
		watched[cleanPath(file)] = true
		dir := filepath.Dir(file)
		if watchedDirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			logger.Warn("cannot watch directory", zap.String("dir", dir), zap.Error(err))
		}
		watchedDirs[dir] = true
	}

	fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")

	var (
		debounce *time.Timer
		fire     <-chan time.Time
		changed  string
	)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !watched[cleanPath(ev.Name)] {
				continue
			}
			changed = ev.Name
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(WatchDebounceDelay)
			fire = debounce.C

		case <-fire:
			fire = nil
			fmt.Fprintf(out, "\n\nFile changed: %s\nRe-rendering...\n\n", changed)
			rerun(ctx)
			fmt.Fprintf(out, "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func cleanPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
