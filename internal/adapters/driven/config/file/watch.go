package file

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the bursts of events editors produce on save.
const watchDebounce = 100 * time.Millisecond

// Watch reloads the store whenever settings.toml changes on disk and then
// calls onChange with the reload result. It blocks until ctx is done.
//
// The directory is watched rather than the file so that editors which
// replace the file on save are still seen.
func (s *ConfigStore) Watch(ctx context.Context, onChange func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		return err
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			err := s.Load()
			if onChange != nil {
				onChange(err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onChange != nil {
				onChange(err)
			}
		}
	}
}
