package bank

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"digital.vasic.praspel/pkg/logging"
)

// Watcher reloads bank files when they change on disk. Removing or
// renaming a file drops its contracts.
type Watcher struct {
	bank     *Bank
	fs       *fsnotify.Watcher
	logger   logging.Logger
	onReload func(path string, err error)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for reload events.
func WithWatcherLogger(l logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithReloadHook registers a function called after every reload
// or removal, with the load error if any.
func WithReloadHook(fn func(path string, err error)) WatcherOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher creates a watcher feeding b.
func NewWatcher(b *Bank, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create bank watcher: %w", err)
	}
	w := &Watcher{
		bank:   b,
		fs:     fsw,
		logger: logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Add watches a bank file or a directory of bank files.
func (w *Watcher) Add(path string) error {
	if err := w.fs.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	w.logger.Debug("watching bank path", logging.StringField("path", path))
	return nil
}

// Run processes file events until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("bank watcher error", logging.ErrorField(err))
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !IsBankFile(ev.Name) {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		n := w.bank.RemoveSource(ev.Name)
		w.logger.Info("bank file removed",
			logging.StringField("path", ev.Name),
			logging.IntField("contracts", n),
		)
		w.notify(ev.Name, nil)

	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		err := w.bank.LoadFile(ev.Name)
		if err != nil {
			w.logger.Warn("bank reload failed",
				logging.StringField("path", ev.Name),
				logging.ErrorField(err),
			)
		} else {
			w.logger.Info("bank file reloaded",
				logging.StringField("path", ev.Name),
			)
		}
		w.notify(ev.Name, err)
	}
}

func (w *Watcher) notify(path string, err error) {
	if w.onReload != nil {
		w.onReload(path, err)
	}
}
