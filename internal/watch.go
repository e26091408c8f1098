package internal

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	uerror "t0ast.cc/floorpier/util/error"
	uio "t0ast.cc/floorpier/util/io"
)

const watchDebounce = 200 * time.Millisecond

// Watch renders the theme and renders it again whenever something in
// the theme source directory changes, until ctx is done. onRender
// receives the result of every render. The profile is not touched.
func Watch(ctx context.Context, config Configuration, onRender func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return uerror.WithStackTrace(err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, config.ThemeSourceDir); err != nil {
		return err
	}
	onRender(PrepareBuild(config))

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if event.Has(fsnotify.Create) {
				isDir, err := uio.DirExists(event.Name)
				if err != nil {
					return uerror.WithStackTrace(err)
				}
				if isDir {
					if err := addWatchDirs(watcher, event.Name); err != nil {
						return err
					}
				}
			}
			slog.Debug("theme source changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(watchDebounce)
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watching the theme source failed", slog.Any("err", err))

		case <-fire:
			fire = nil
			onRender(PrepareBuild(config))
		}
	}
}

// fsnotify does not watch recursively, so every directory is added.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return uerror.WithStackTrace(err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return uerror.StackTracef("watch %s: %w", path, err)
		}
		return nil
	})
}
