package prefs

import (
	"encoding/json"

	"go.uber.org/zap"

	"uniscope/internal/bus"
)

// Preferences is the typed view over the store. All mutations publish the
// changed key on the bus; all reads re-parse current store state.
type Preferences struct {
	store  Store
	bus    bus.ChangeBus
	logger *zap.Logger
}

// New builds a Preferences over the given store and bus.
func New(store Store, b bus.ChangeBus, logger *zap.Logger) *Preferences {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preferences{store: store, bus: b, logger: logger}
}

// write persists and publishes. Persistence is best-effort: on failure the
// error is logged and swallowed, and no notification goes out.
func (p *Preferences) write(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		p.logger.Warn("failed to encode preference", zap.String("key", key), zap.Error(err))
		return
	}
	if err := p.store.Write(key, data); err != nil {
		p.logger.Warn("failed to persist preference", zap.String("key", key), zap.Error(err))
		return
	}
	p.bus.Publish(key)
}
