// Package watch re-runs a conversion whenever the input document
// changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"gopkg.in/fsnotify.v1"

	"github.com/openlocalize/jliffconv/internal/logging"
)

// Run watches input and invokes fn after each change, debounced so a
// burst of writes triggers a single conversion. The parent directory is
// watched rather than the file itself because editors commonly replace
// files by rename. Run blocks until ctx is cancelled.
func Run(ctx context.Context, input string, debounce time.Duration, fn func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(input)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || abs != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.WatchEvent(event.Op.String(), event.Name)
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch_error", "error", err.Error())
		case <-fire:
			timer = nil
			fire = nil
			if err := fn(); err != nil {
				logging.Error("conversion_failed", "input", input, "error", err.Error())
			}
		}
	}
}
