package analytics

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"uniscope/internal/bus"
	"uniscope/internal/catalog"
	"uniscope/internal/prefs"
)

// DefaultInterval is the periodic recompute cadence for a live dashboard.
const DefaultInterval = 2 * time.Second

// Refresher keeps a live Report for a dashboard view. It recomputes on
// start, whenever the analytics key changes on the bus, and on a fixed
// ticker as a safety net. The latest report is delivered on Reports; a
// slow consumer only ever sees the freshest one, stale intermediates are
// dropped.
type Refresher struct {
	prefs  *prefs.Preferences
	lookup func() map[int]*catalog.University
	locale string
	logger *zap.Logger

	// Interval overrides DefaultInterval when set before Start.
	Interval time.Duration

	out       chan Report
	kick      chan struct{}
	sub       *bus.Subscription
	startOnce sync.Once
	started   bool
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewRefresher builds a refresher. lookup supplies the current id-to-entity
// map for name resolution; it may return nil, in which case every entry
// renders with the placeholder name.
func NewRefresher(p *prefs.Preferences, b bus.ChangeBus, lookup func() map[int]*catalog.University, locale string, logger *zap.Logger) *Refresher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lookup == nil {
		lookup = func() map[int]*catalog.University { return nil }
	}
	r := &Refresher{
		prefs:    p,
		lookup:   lookup,
		locale:   locale,
		logger:   logger,
		Interval: DefaultInterval,
		out:      make(chan Report, 1),
		kick:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	// The handler runs on the publisher's goroutine; it only nudges the
	// refresh loop, the re-read happens over there.
	r.sub = b.Subscribe(prefs.KeyAnalytics, func(string) {
		select {
		case r.kick <- struct{}{}:
		default:
		}
	})
	return r
}

// Reports delivers recomputed reports. The channel is never closed while
// the refresher runs; after Stop no further sends happen.
func (r *Refresher) Reports() <-chan Report {
	return r.out
}

// Start launches the refresh loop and emits an initial report immediately.
func (r *Refresher) Start() {
	r.startOnce.Do(func() {
		r.started = true
		go r.loop()
	})
}

// Stop unsubscribes from the bus and waits for the loop to exit. It is
// idempotent.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() {
		r.sub.Close()
		close(r.stopCh)
		if r.started {
			<-r.doneCh
		}
	})
}

func (r *Refresher) loop() {
	defer close(r.doneCh)

	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	r.logger.Debug("analytics refresher running", zap.Duration("interval", interval))

	r.emit()
	for {
		select {
		case <-r.stopCh:
			return
		case <-r.kick:
			r.emit()
		case <-ticker.C:
			r.emit()
		}
	}
}

// emit recomputes and replaces any undelivered report with the fresh one.
func (r *Refresher) emit() {
	report := BuildReport(r.prefs.Analytics(), r.lookup(), r.locale)
	for {
		select {
		case r.out <- report:
			return
		default:
			select {
			case <-r.out:
			default:
			}
		}
	}
}
