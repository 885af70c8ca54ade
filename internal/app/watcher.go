package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/five82/inkframe/internal/logfields"
)

const defaultConfigDebounce = time.Second

// ConfigWatcher reports edits to the config file once they settle.
type ConfigWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

// NewConfigWatcher watches the directory holding path, which catches
// editors that replace the file instead of writing it in place.
func NewConfigWatcher(path string, debounce time.Duration, logger *slog.Logger) (*ConfigWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultConfigDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch config directory: %w", err)
	}
	return &ConfigWatcher{path: abs, watcher: w, debounce: debounce, logger: logger}, nil
}

// Watch calls onChange once per burst of writes, creates or renames of the
// config file. It returns when ctx ends or the watcher is closed.
func (cw *ConfigWatcher) Watch(ctx context.Context, onChange func()) {
	name := filepath.Base(cw.path)
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				cw.logger.Warn("config file removed", logfields.Path(ev.Name))
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			cw.logger.Debug("config file changed", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(cw.debounce)
			} else {
				timer.Reset(cw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("config watcher error", logfields.Error(err))
		}
	}
}

// Close stops the underlying watcher.
func (cw *ConfigWatcher) Close() error {
	return cw.watcher.Close()
}
