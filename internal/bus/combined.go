package bus

import (
	"context"

	"go.uber.org/zap"
)

// Combined is the full synchronization bus: local publishes dispatch to
// in-process subscribers, and a filesystem watcher feeds in changes made by
// other uniscope processes. Consumers only see the ChangeBus interface.
type Combined struct {
	*MemoryBus
	watcher *Watcher
}

// NewCombined builds the bus over the given preference directory.
func NewCombined(dir string, logger *zap.Logger) (*Combined, error) {
	mem := NewMemoryBus()
	w, err := NewWatcher(dir, mem.Publish, logger)
	if err != nil {
		return nil, err
	}
	return &Combined{MemoryBus: mem, watcher: w}, nil
}

// Start begins cross-process watching. In-process publish/subscribe works
// without it; tools that only mutate and exit can skip Start entirely.
func (c *Combined) Start(ctx context.Context) error {
	return c.watcher.Start(ctx)
}

// Stop tears down the watcher.
func (c *Combined) Stop() {
	c.watcher.Stop()
}

// Publish notes the write as local (so the watcher does not echo it back)
// and dispatches to in-process subscribers.
func (c *Combined) Publish(key string) {
	c.watcher.NoteLocalWrite(key)
	c.MemoryBus.Publish(key)
}
