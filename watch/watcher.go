package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher signals debounced changes to one file. It watches the parent
// directory rather than the file itself so editors that save atomically
// (write to a temp file, then rename over the target) are still seen.
type Watcher struct {
	path     string
	fsw      *fsnotify.Watcher
	debounce *Debouncer
	logger   *zap.Logger
	done     chan struct{}
}

// New starts watching path and calls onChange, debounced by delay, after
// the file is written, created, renamed, or removed. The callback runs on
// the watcher's timer goroutine; callers hand it off to their own loop.
func New(path string, delay time.Duration, logger *zap.Logger, onChange func()) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()

		return nil, err
	}

	w := &Watcher{
		path:     abs,
		fsw:      fsw,
		debounce: NewDebouncer(delay, onChange),
		logger:   logger,
		done:     make(chan struct{}),
	}

	go w.loop()

	return w, nil
}

// Refresh fires the callback immediately, cancelling any pending debounce.
func (w *Watcher) Refresh() {
	w.debounce.Flush()
}

// Close stops the watcher. Pending debounced callbacks are cancelled.
func (w *Watcher) Close() error {
	close(w.done)
	w.debounce.Stop()

	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			if !w.relevant(event) {
				continue
			}

			w.logger.Debug("File changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			w.debounce.Trigger()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

// relevant filters directory events down to the watched file. A basename
// match on create or rename covers atomic-save temp files landing on the
// target name.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}

	eventPath := filepath.Clean(event.Name)
	if eventPath == w.path {
		return true
	}

	return filepath.Base(eventPath) == filepath.Base(w.path) &&
		event.Op&(fsnotify.Rename|fsnotify.Create) != 0
}
