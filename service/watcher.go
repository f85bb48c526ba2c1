package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ahktools/ahkcheck/domain"
)

// WatcherImpl watches script files for changes and invokes a callback
// after a quiet period, coalescing editor write bursts into one event
type WatcherImpl struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	callback func(paths []string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
}

// NewWatcher creates a watcher that reports changed script files to
// callback after debounce of inactivity
func NewWatcher(debounce time.Duration, callback func(paths []string)) (*WatcherImpl, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeConfigError, "failed to create file watcher", err)
	}
	return &WatcherImpl{
		watcher:  fsw,
		debounce: debounce,
		callback: callback,
		pending:  make(map[string]struct{}),
	}, nil
}

// Add registers a file or directory for watching. Directories are
// watched non-recursively; Watch adds subdirectories as they appear.
func (w *WatcherImpl) Add(path string) error {
	if err := w.watcher.Add(path); err != nil {
		return domain.NewDomainError(domain.ErrCodeConfigError, "failed to watch "+path, err)
	}
	return nil
}

// Watch processes filesystem events until ctx is cancelled
func (w *WatcherImpl) Watch(ctx context.Context) error {
	defer w.close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				return domain.NewDomainError(domain.ErrCodeConfigError, "file watcher failed", err)
			}
		}
	}
}

func (w *WatcherImpl) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	// Newly created directories need their own watch
	if event.Op&fsnotify.Create != 0 && !isScriptPath(event.Name) {
		_ = w.watcher.Add(event.Name)
	}

	if !isScriptPath(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[event.Name] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

// flush delivers the accumulated paths to the callback
func (w *WatcherImpl) flush() {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	w.callback(paths)
}

func (w *WatcherImpl) close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	_ = w.watcher.Close()
}

func isScriptPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".ahk" || ext == ".ahk2" || ext == ".ah2"
}
