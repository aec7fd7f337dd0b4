// Package watcher refreshes the index in the background when corpus files
// change between requests.
package watcher

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 500 * time.Millisecond

// Refresher is the watcher-facing subset of the pipeline.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// Watch observes dir recursively and triggers a pipeline refresh after file
// changes settle. It is best effort: the fingerprint check on the next chat
// request remains the source of truth, the watcher only keeps the index
// warm. Blocks until ctx is done.
func Watch(ctx context.Context, dir string, pipeline Refresher) error {
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addRecursive(w, dir); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ev.Op&fsnotify.Create != 0 {
				// New subdirectories need their own watch.
				_ = addRecursive(w, ev.Name)
			}
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("warning: corpus watcher: %v", err)
		case <-fire:
			timer = nil
			log.Printf("corpus change detected, refreshing index")
			pipeline.Refresh(ctx)
		}
	}
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The path may have vanished between the event and the walk.
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				log.Printf("warning: cannot watch %s: %v", path, err)
			}
		}
		return nil
	})
}
