package data

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch reports collections whose backing file changed on disk, including
// edits made outside the process. It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context, onChange func(Collection)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if c, ok := collectionForFile(event.Name); ok {
				onChange(c)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Error(err, "Data directory watcher error")
		}
	}
}

// collectionForFile maps a path to its collection, ignoring temp files.
func collectionForFile(path string) (Collection, bool) {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, ".json") {
		return "", false
	}
	return Collection(strings.TrimSuffix(name, ".json")), true
}
