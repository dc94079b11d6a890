package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/raphaelgruber/postcraft/internal/parser"
)

// DefaultDebounce is how long the watcher waits after the last change before converting.
const DefaultDebounce = 500 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	Convert  Options
	Debounce time.Duration
	// OnBatch receives the outcome of every re-conversion.
	OnBatch func(*Result, error)
}

// Watch re-runs Convert whenever a source table in dir is created, written or renamed.
// Rapid saves are coalesced into one batch. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, dir string, opts WatchOptions) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	slog.Info("watching for exports", "dir", dir)

	ticker := time.NewTicker(opts.Debounce / 5)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if relevant(event) {
				slog.Debug("export changed", "file", filepath.Base(event.Name), "op", event.Op.String())
				pending = time.Now()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", "error", err)

		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < opts.Debounce {
				continue
			}
			pending = time.Time{}
			res, err := Convert(ctx, dir, opts.Convert)
			if opts.OnBatch != nil {
				opts.OnBatch(res, err)
			}
		}
	}
}

func relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if !parser.IsCandidate(name) || parser.IsLockFile(name) {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0
}
