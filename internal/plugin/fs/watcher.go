package fs

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"zettel/internal/eventbus"
	"zettel/internal/logger"
)

const debounceInterval = 250 * time.Millisecond

// skippedDirs are never watched or listed.
var skippedDirs = map[string]bool{
	".obsidian": true,
	".git":      true,
}

type Watcher struct {
	root    string
	watcher *fsnotify.Watcher
	bus     *eventbus.Bus
	logger  logger.Logger

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func newWatcher(ctx context.Context, root string, bus *eventbus.Bus, log logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}

	w := &Watcher{
		root:    root,
		watcher: fw,
		bus:     bus,
		logger:  log,
		done:    make(chan struct{}),
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}

	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx)

	log.Info("FS", "watching directory", map[string]interface{}{"root": root})
	return w, nil
}

func (w *Watcher) Root() string { return w.root }

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.cancel()
		<-w.done
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return errors.Wrapf(err, "walk %s", dir)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skippedDirs[d.Name()] {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
		return nil
	})
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	timer := time.NewTimer(debounceInterval)
	timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if skippedDirs[filepath.Base(ev.Name)] {
				continue
			}
			if ev.Has(fsnotify.Create) {
				// New directories need their own watch.
				_ = w.addTree(ev.Name)
			}
			if !pending {
				pending = true
				timer.Reset(debounceInterval)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("FS", err, map[string]interface{}{"root": w.root})
		case <-timer.C:
			pending = false
			w.bus.Publish(eventbus.Event{
				Type: eventbus.VaultChanged,
				Data: map[string]interface{}{"root": w.root},
			})
		}
	}
}
