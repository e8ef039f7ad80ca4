// Package watch implements the loop behind "titanium watch": a debounced fsnotify
// loop that re-invokes a rebuild function whenever a watched path changes,
// the same debounce-then-process discipline the pack's own file watcher
// uses for its rule-validation loop.
package watch

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Rebuild is invoked once per settled batch of filesystem changes.
type Rebuild func(ctx context.Context, changed []string) error

// Watcher debounces fsnotify events across a set of paths and drives a
// Rebuild callback.
type Watcher struct {
	log      *zap.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
	rebuild  Rebuild

	mu      sync.Mutex
	pending map[string]time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// New creates a Watcher over paths, invoking rebuild once per debounced
// batch of changes. debounce <= 0 defaults to 300ms.
func New(log *zap.Logger, paths []string, debounce time.Duration, rebuild Rebuild) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := fw.Add(p); err != nil {
			_ = fw.Close()
			return nil, err
		}
	}

	return &Watcher{
		log:      log,
		watcher:  fw,
		debounce: debounce,
		rebuild:  rebuild,
		pending:  make(map[string]time.Time),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Run blocks dispatching debounced rebuilds until ctx is cancelled or Stop
// is called. An initial rebuild fires immediately, before any change has
// been observed.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.doneCh)

	if err := w.rebuild(ctx, nil); err != nil {
		w.log.Warn("initial build failed", zap.Error(err))
	}

	ticker := time.NewTicker(w.debounce / 3)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.record(ev.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// Stop halts Run and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

func (w *Watcher) record(path string) {
	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	now := time.Now()
	var changed []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			changed = append(changed, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	w.log.Info("rebuilding after change", zap.Strings("changed", changed))
	if err := w.rebuild(ctx, changed); err != nil {
		w.log.Warn("rebuild failed", zap.Error(err))
	}
}
