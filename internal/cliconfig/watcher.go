package cliconfig

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watchDebounce coalesces editor write bursts into one notification.
const watchDebounce = 250 * time.Millisecond

// WatchConfigFile monitors the config file and warns the operator when it
// changes. The downstream endpoint is read-only after startup, so changes
// are never applied live; the notification tells the operator a restart is
// needed. Blocks until ctx is canceled.
//
// The watch is placed on the parent directory: editors typically replace
// the file rather than write it in place, which would drop an inode watch.
func WatchConfigFile(ctx context.Context, path string, logger zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	logger.Debug().Str("path", path).Msg("watching config file")

	var debounce *time.Timer
	notify := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watchDebounce, func() {
				select {
				case notify <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("config watcher error")
		case <-notify:
			logger.Warn().Str("path", path).
				Msg("configuration file changed; restart labsim to apply")
		}
	}
}
