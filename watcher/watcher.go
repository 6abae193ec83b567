package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Nek1s/VisualHub/logger"
	"github.com/Nek1s/VisualHub/models"
	"github.com/Nek1s/VisualHub/services"

	"github.com/fsnotify/fsnotify"
)

// Watcher reacts to external changes under the folders root. Events are
// coalesced per directory name and acted on only after a settle window, so a
// burst of filesystem activity triggers one reconciliation, not dozens.
type Watcher struct {
	fs         *fsnotify.Watcher
	reconciler services.ReconcileService
	notifier   *services.Notifier
	foldersDir string
	debounce   time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
	done   chan struct{}
}

func New(reconciler services.ReconcileService, notifier *services.Notifier, foldersDir string, debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(foldersDir); err != nil {
		fs.Close()
		return nil, err
	}

	w := &Watcher{
		fs:         fs,
		reconciler: reconciler,
		notifier:   notifier,
		foldersDir: foldersDir,
		debounce:   debounce,
		timers:     make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule(filepath.Base(event.Name))
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warnf("watcher: %v", err)
		}
	}
}

// schedule arms (or re-arms) the settle timer for one directory name.
func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if timer, ok := w.timers[name]; ok {
		timer.Reset(w.debounce)
		return
	}
	w.timers[name] = time.AfterFunc(w.debounce, func() {
		w.settled(name)
	})
}

func (w *Watcher) settled(name string) {
	w.mu.Lock()
	delete(w.timers, name)
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	// Reserved directories heal themselves.
	if models.IsSystemFolderName(name) {
		dirPath := filepath.Join(w.foldersDir, name)
		if _, err := os.Stat(dirPath); os.IsNotExist(err) {
			if err := os.MkdirAll(dirPath, 0o755); err != nil {
				logger.Warnf("watcher: recreate %s: %v", name, err)
			} else {
				logger.Infof("watcher: recreated system directory %s", name)
			}
		}
	}

	changed, err := w.reconciler.Sync(context.Background())
	if err != nil {
		logger.Warnf("watcher: reconcile after %s settled: %v", name, err)
		return
	}
	if !changed && w.notifier != nil {
		// Sync publishes on change; a settled event with no row change still
		// means the disk moved under us, so let subscribers refresh.
		w.notifier.Publish(services.EventFoldersChanged)
	}
}

// Close stops the loop and drops pending settle timers.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	for name, timer := range w.timers {
		timer.Stop()
		delete(w.timers, name)
	}
	w.mu.Unlock()

	err := w.fs.Close()
	<-w.done
	return err
}
