package coord

import (
	"context"

	"github.com/fsnotify/fsnotify"

	"github.com/pg-sharding/poolcat/pkg/catlog"
)

// Watch reloads the configuration whenever its source file changes. It is a
// no-op unless general.autoreload is set on the active configuration, and
// otherwise runs until ctx is cancelled.
//
// A failed reload keeps the previous configuration active; only the error
// is logged. Editors often save via rename, so Create events are handled
// too and the path is re-added after every reload in case the inode was
// replaced.
func (c *Coordinator) Watch(ctx context.Context) error {
	current := c.store.Current()
	if !current.General.Autoreload {
		return nil
	}
	path := current.Path

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			catlog.Zero.Error().Err(err).Msg("failed to close config watcher")
		}
	}()

	if err := watcher.Add(path); err != nil {
		return err
	}

	catlog.Zero.Info().Str("path", path).Msg("watching config for changes")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			changed, err := c.Reload()
			switch {
			case err != nil:
				catlog.Zero.Error().Err(err).Str("path", path).Msg("autoreload failed, keeping previous config")
			case changed:
				catlog.Zero.Info().Str("path", path).Msg("config reloaded")
			}

			_ = watcher.Add(path)

		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			catlog.Zero.Error().Err(werr).Msg("config watcher error")
		}
	}
}
