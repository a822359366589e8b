// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 500 * time.Millisecond

// Watcher reloads the global configuration when the config file changes and
// notifies the UI through a channel.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	changed chan struct{}
	cancel  context.CancelFunc
}

// NewWatcher creates a watcher for the default config path. The config
// directory must exist; the file itself may not yet.
func NewWatcher() (*Watcher, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, not the file: atomic writes replace the inode
	// and a file watch would go stale after the first save.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		watcher: fw,
		path:    path,
		changed: make(chan struct{}, 1),
		cancel:  cancel,
	}
	go w.run(ctx)
	return w, nil
}

// Changed signals after the configuration has been reloaded.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := ReloadGlobal(); err != nil {
				log.Printf("config reload: %v", err)
				continue
			}
			select {
			case w.changed <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("config watch: %v", err)
		}
	}
}
