package bus

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher maps filesystem events on the preference directory back to store
// keys and republishes them in-process. It only reports writes made by other
// processes: keys this process wrote recently are suppressed, mirroring the
// browser rule that a tab never receives a storage event for its own write.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	publish     func(key string)
	logger      *zap.Logger
	debounceMap map[string]time.Time
	debounceDur time.Duration
	selfWrites  map[string]time.Time
	suppressDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for tests and debugging.
type WatcherStats struct {
	EventsSeen       int
	EventsSuppressed int
	KeysPublished    int
	LastKey          string
}

// NewWatcher creates a Watcher over the given preference directory. Events
// settle through publish, typically a MemoryBus.
func NewWatcher(dir string, publish func(key string), logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:     fw,
		dir:         dir,
		publish:     publish,
		logger:      logger,
		debounceMap: make(map[string]time.Time),
		debounceDur: 200 * time.Millisecond,
		selfWrites:  make(map[string]time.Time),
		suppressDur: time.Second,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// Start begins watching. Non-blocking; the event loop runs in a goroutine
// until Stop or context cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		// Directory may not exist until the first write; the caller creates
		// it eagerly, so treat failure here as fatal.
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}
	w.logger.Debug("bus watcher started", zap.String("dir", w.dir))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("bus watcher close failed", zap.Error(err))
	}
}

// NoteLocalWrite records that this process just wrote the key, so the
// resulting filesystem event is not echoed back as a remote change.
func (w *Watcher) NoteLocalWrite(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selfWrites[key] = time.Now()
}

// Stats returns a snapshot of watcher activity.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("bus watcher error", zap.Error(err))

		case <-ticker.C:
			w.flushDebounced()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	key := keyForPath(event.Name)
	if key == "" {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.EventsSeen++

	if at, ok := w.selfWrites[key]; ok && time.Since(at) < w.suppressDur {
		w.stats.EventsSuppressed++
		return
	}
	w.debounceMap[key] = time.Now()
}

// flushDebounced publishes keys whose events settled past the debounce
// window. Rapid successive writes to one key collapse into one notification;
// subscribers re-read current state, so nothing is lost.
func (w *Watcher) flushDebounced() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for key, at := range w.debounceMap {
		if now.Sub(at) >= w.debounceDur {
			ready = append(ready, key)
			delete(w.debounceMap, key)
		}
	}
	for key, at := range w.selfWrites {
		if now.Sub(at) >= w.suppressDur {
			delete(w.selfWrites, key)
		}
	}
	if len(ready) > 0 {
		w.stats.KeysPublished += len(ready)
		w.stats.LastKey = ready[len(ready)-1]
	}
	w.mu.Unlock()

	for _, key := range ready {
		w.logger.Debug("remote store change", zap.String("key", key))
		w.publish(key)
	}
}

// keyForPath maps a preference file path back to its store key.
// Atomic writes go through "<key>.json.tmp" then rename; both spellings
// resolve to the same key.
func keyForPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".tmp")
	if !strings.HasSuffix(name, ".json") {
		return ""
	}
	return strings.TrimSuffix(name, ".json")
}
