// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package replay

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 250 * time.Millisecond

// Watch calls onChange each time the file at path is written or replaced,
// until ctx is done. Bursts within debounce collapse into one call.
// onChange runs on the watching goroutine, so calls never overlap.
func Watch(ctx context.Context, logger zerolog.Logger, path string, debounce time.Duration, onChange func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// The directory is watched so atomic replacement by editors keeps
	// being noticed.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dir, err)
	}
	target := filepath.Base(path)
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	logger.Info().Str("path", path).Msg("watching script for changes")

	debounceTimer := time.NewTimer(debounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str("path", path).Msg("script watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				logger.Debug().Str("op", event.Op.String()).Msg("script changed")
				debounceTimer.Reset(debounce)
			}

		case <-debounceTimer.C:
			onChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			logger.Warn().Err(err).Msg("script watcher error")
		}
	}
}
