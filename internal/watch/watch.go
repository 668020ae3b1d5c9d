package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is called once per burst of changes to the watched file.
type ReloadFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Debounce is how long the file must stay quiet before ReloadFunc runs.
	Debounce time.Duration
	Logger   *slog.Logger
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		Debounce: 500 * time.Millisecond,
		Logger:   slog.Default(),
	}
}

// Watcher reloads the dataset when its file changes. It watches the
// file's directory rather than the file itself, so editors and exporters
// that replace the file by rename are picked up too.
type Watcher struct {
	path     string
	reload   ReloadFunc
	debounce time.Duration
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
}

// New creates a Watcher for the file at path.
func New(path string, reload ReloadFunc, opts *Options) (*Watcher, error) {
	if opts == nil {
		defaults := DefaultOptions()
		opts = &defaults
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch: %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		reload:   reload,
		debounce: opts.Debounce,
		logger:   logger.With("path", abs),
		watcher:  fw,
	}, nil
}

// Run delivers reloads until ctx is cancelled. Reload errors are logged,
// not returned: a bad write is usually followed by a good one.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("dataset changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-timerC:
			timer, timerC = nil, nil
			if err := w.reload(ctx); err != nil {
				w.logger.Error("reload after change failed", "error", err)
				continue
			}
			w.logger.Info("dataset reloaded after change")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
