package main

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/c360/natsconf/confparse"
	"github.com/c360/natsconf/controller"
	"github.com/c360/natsconf/types"
)

// watchConfigFile re-applies the broker configuration whenever the file
// changes. Reloads are throttled so editor write bursts trigger one apply.
func watchConfigFile(ctx context.Context, path string, ctrl *controller.Controller, limiter *rate.Limiter, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors replace files instead of writing in place.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	target := filepath.Clean(path)

	logger.Info("watching configuration file", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !limiter.Allow() {
				logger.Debug("reload throttled", "event", event.Op.String())
				continue
			}
			reloadFile(ctx, target, ctrl, logger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

func reloadFile(ctx context.Context, path string, ctrl *controller.Controller, logger *slog.Logger) {
	parsed, err := confparse.ParseFile(path)
	if err != nil {
		logger.Error("failed to parse configuration file", "path", path, "error", err)
		return
	}

	result := ctrl.ApplyChanges(ctx, func(cfg *types.Configuration) {
		id, created := cfg.ID, cfg.CreatedAt
		*cfg = *parsed
		cfg.ID, cfg.CreatedAt = id, created
	})

	if !result.Success {
		logger.Warn("reload not applied", "reason", result.Message)
		return
	}
	if !result.Diff.HasChanges() {
		logger.Debug("reload produced no changes")
		return
	}
	logger.Info("configuration reloaded",
		"version", result.Version.Number,
		"changes", result.Diff.Len())
}
