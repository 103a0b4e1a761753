package directory

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// debounce collapses bursts of write events from editors that save a file in
// several syscalls.
const debounce = 250 * time.Millisecond

// Watch reloads the directory whenever its backing file changes on disk. It
// watches the parent directory rather than the file itself, since editors and
// config-management tools replace files by rename. The watcher goroutine runs
// until ctx is cancelled; reload failures are logged and keep the previous
// snapshot published.
func (d *Directory) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("directory watcher: %w", err)
	}
	dir := filepath.Dir(d.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	base := filepath.Base(d.path)

	go func() {
		defer watcher.Close()
		var timer *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != base {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					if err := d.Reload(); err != nil {
						log.Warn().Err(err).Str("path", d.path).Msg("agent directory reload failed; keeping previous snapshot")
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("agent directory watcher error")
			}
		}
	}()
	return nil
}
