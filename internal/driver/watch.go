package driver

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces a burst of filesystem events (e.g. an editor's
// save-via-rename dance) into a single re-sync instead of one per event.
const watchDebounce = 2 * time.Second

// Watch runs Run once, then re-runs it every time the local tree changes,
// until ctx is cancelled. This is a domain-stack addition (SPEC_FULL.md
// §5.8): a single invocation without --watch still runs exactly once, per
// spec.md §1.
func (d *Driver) Watch(ctx context.Context, opts Options) error {
	if err := d.Run(ctx, opts); err != nil {
		d.Logger.Error("initial sync failed", "error", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting filesystem watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, d.Cfg.BaseL); err != nil {
		return fmt.Errorf("watching %s: %w", d.Cfg.BaseL, err)
	}

	// A SIGHUP (sent by `rsinc reload`, e.g. after hand-editing a .rignore
	// file that fsnotify never saw change) forces an immediate re-sync
	// instead of waiting for the next local filesystem event.
	reloadCh := make(chan os.Signal, 1)
	signal.Notify(reloadCh, syscall.SIGHUP)
	defer signal.Stop(reloadCh)

	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-reloadCh:
			d.Logger.Info("reload requested, re-syncing")

			if err := d.Run(ctx, opts); err != nil {
				d.Logger.Error("sync failed", "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			d.Logger.Warn("filesystem watcher error", "error", err)

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, event.Name); err != nil {
						d.Logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
				}
			}

			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerC(timer):
			timer = nil

			d.Logger.Info("change detected, re-syncing")

			if err := d.Run(ctx, opts); err != nil {
				d.Logger.Error("sync failed", "error", err)
			}
		}
	}
}

// timerC returns t.C, or a nil channel (which blocks forever in a select)
// when t is nil, so the debounce arm of Watch's select loop only fires once
// a timer actually exists.
func timerC(t *time.Timer) <-chan time.Time {
	if t == nil {
		return nil
	}

	return t.C
}

// addRecursive registers root and every subdirectory under it with
// watcher, since fsnotify watches are not recursive on any platform.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return watcher.Add(path)
		}

		return nil
	})
}
