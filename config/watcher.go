package config

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nanhai/arena/errors"
	"github.com/nanhai/arena/logger"
)

// Watcher watches the config file for changes and triggers reload callbacks.
// The main consumer is the build API client, which picks up rotated tokens
// and URL changes without a restart.
type Watcher struct {
	configPath      string
	watcher         *fsnotify.Watcher
	callbacks       []ReloadCallback
	mu              sync.RWMutex
	debounceTimer   *time.Timer
	debouncePeriod  time.Duration
	isOwnWrite      bool
	isOwnWriteMutex sync.Mutex
}

// ReloadCallback is called with the freshly loaded config after a change
type ReloadCallback func(*Config) error

var (
	globalWatcher   *Watcher
	globalWatcherMu sync.Mutex
)

// NewWatcher creates a watcher for the given config file
func NewWatcher(configPath string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch config file %s", configPath)
	}

	w := &Watcher{
		configPath:     configPath,
		watcher:        watcher,
		callbacks:      make([]ReloadCallback, 0),
		debouncePeriod: 500 * time.Millisecond,
	}

	return w, nil
}

// OnReload registers a callback to be called when config is reloaded
func (w *Watcher) OnReload(callback ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// MarkOwnWrite marks the next write as coming from us (prevents reload loops)
func (w *Watcher) MarkOwnWrite() {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()
	w.isOwnWrite = true
}

func (w *Watcher) checkOwnWrite() bool {
	w.isOwnWriteMutex.Lock()
	defer w.isOwnWriteMutex.Unlock()

	if w.isOwnWrite {
		w.isOwnWrite = false
		return true
	}
	return false
}

// Start begins watching for config file changes
func (w *Watcher) Start() {
	go w.watchLoop()
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if isBackupFile(event.Name) {
					continue
				}

				if w.checkOwnWrite() {
					logger.Debugw("Config watcher ignoring own write",
						"file", event.Name)
					continue
				}

				logger.Infow("Config watcher detected change",
					"file", event.Name,
					"op", event.Op.String())
				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Config watcher error",
				"error", err)
		}
	}
}

// scheduleReload debounces rapid file changes before triggering a reload.
// Editors often fire several write events for a single save.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debouncePeriod, func() {
		if err := w.reload(); err != nil {
			logger.Errorw("Config reload failed",
				"error", err)
		}
	})
}

func (w *Watcher) reload() error {
	Reset()

	newConfig, err := Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	logger.Infow("Config reloaded",
		"path", w.configPath)

	w.mu.RLock()
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()

	for _, callback := range callbacks {
		if err := callback(newConfig); err != nil {
			logger.Warnw("Config reload callback error",
				"error", err)
		}
	}

	return nil
}

// Stop stops watching for config changes
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// isBackupFile reports whether the path is one of our rotating backups
func isBackupFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, ".back1") ||
		strings.HasSuffix(base, ".back2") ||
		strings.HasSuffix(base, ".back3")
}

// SetGlobalWatcher sets the global watcher instance (used to prevent reload loops)
func SetGlobalWatcher(watcher *Watcher) {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	globalWatcher = watcher
}

// GetGlobalWatcher returns the global watcher instance
func GetGlobalWatcher() *Watcher {
	globalWatcherMu.Lock()
	defer globalWatcherMu.Unlock()
	return globalWatcher
}
