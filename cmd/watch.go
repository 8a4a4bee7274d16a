package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kievzenit/cyc/internal/config"
)

const watchDebounce = 100 * time.Millisecond

// watch compiles once and then again after every change to a source file or
// the config file, until ctx is done.
func watch(ctx context.Context, cfg *config.Config, f *flags, stdout io.Writer, display *diagnosticDisplay, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	configPath, _ := filepath.Abs(f.configPath)
	if err := addWatchDirs(watcher, cfg, configPath); err != nil {
		return err
	}

	build(ctx, cfg, f.showAll, stdout, display, logger)

	rebuild := make(chan struct{}, 1)
	var timer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRelevant(event, configPath) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case <-rebuild:
			if reloaded, err := loadConfig(f); err != nil {
				logger.Warn("keeping previous config", "error", err)
			} else {
				cfg = reloaded
			}

			if err := addWatchDirs(watcher, cfg, configPath); err != nil {
				logger.Warn("watching inputs failed", "error", err)
			}

			logger.Info("change detected, recompiling")
			build(ctx, cfg, f.showAll, stdout, display, logger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)

		case <-ctx.Done():
			return nil
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, cfg *config.Config, configPath string) error {
	dirs := map[string]bool{filepath.Dir(configPath): true}

	files, err := config.ResolveInputs(cfg)
	if err != nil {
		return err
	}
	for _, file := range files {
		abs, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

func isRelevant(event fsnotify.Event, configPath string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return name == configPath || filepath.Ext(name) == config.SourceExtension
}
