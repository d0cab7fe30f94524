// Package rating caches per-university rating averages and handles rating
// submission with an optimistic local update.
//
// Per entity the state machine is Loading -> NoRatingYet | HasAverage. A
// fetch that fails and a record that does not exist both collapse to
// NoRatingYet: the caller cannot tell them apart, and renders the same
// "no ratings yet" affordance either way. An average of zero never occurs
// through this path; absence and zero stay distinct.
package rating

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"uniscope/internal/gateway"
	"uniscope/internal/session"
)

// State is the per-entity rating state.
type State int

const (
	// Loading means no fetch has completed yet.
	Loading State = iota
	// NoRatingYet covers both "no record" and "fetch failed".
	NoRatingYet
	// HasAverage means Average holds a value.
	HasAverage
)

// Status is a snapshot of one entity's rating state. Interim marks an
// optimistic value from a local submission that the scheduled re-fetch has
// not yet replaced.
type Status struct {
	State   State
	Average float64
	Interim bool
}

// DefaultRefetchDelay is how long after a successful submission the cache
// waits before re-fetching, giving the backend time to recompute.
const DefaultRefetchDelay = 500 * time.Millisecond

// Cache holds rating state for all entities viewed during its lifetime.
// Close cancels any scheduled re-fetches; results arriving after Close are
// dropped instead of being applied to torn-down views.
type Cache struct {
	gw       *gateway.Client
	sessions *session.Manager
	logger   *zap.Logger

	// RefetchDelay overrides DefaultRefetchDelay when set before first use.
	RefetchDelay time.Duration

	mu      sync.Mutex
	entries map[int]Status

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCache builds a rating cache.
func NewCache(gw *gateway.Client, sessions *session.Manager, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		gw:           gw,
		sessions:     sessions,
		logger:       logger,
		RefetchDelay: DefaultRefetchDelay,
		entries:      make(map[int]Status),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Close cancels scheduled re-fetches and waits for their goroutines.
func (c *Cache) Close() {
	c.cancel()
	c.wg.Wait()
}

// Peek returns the current cached state without touching the network.
// An entity never fetched reports Loading.
func (c *Cache) Peek(id int) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[id]
}

// Get fetches the entity's average and updates the cache. Fetch errors are
// logged and collapse to NoRatingYet; Get itself never fails.
func (c *Cache) Get(ctx context.Context, id int) Status {
	avg, err := c.gw.RatingAverage(ctx, id)

	var st Status
	switch {
	case err != nil:
		c.logger.Warn("rating fetch failed", zap.Int("university_id", id), zap.Error(err))
		st = Status{State: NoRatingYet}
	case avg == nil:
		st = Status{State: NoRatingYet}
	default:
		st = Status{State: HasAverage, Average: avg.Average}
	}

	c.mu.Lock()
	c.entries[id] = st
	c.mu.Unlock()
	return st
}

// Submit posts a 1-5 score. It requires a session; without one it returns
// session.ErrNotAuthenticated before any network traffic, and the caller
// prompts for login (the submission is not queued). On success the cache
// optimistically shows the submitted score and a re-fetch is scheduled to
// replace it with the server-recomputed average. On failure the previous
// state is untouched.
func (c *Cache) Submit(ctx context.Context, id, score int) error {
	if score < 1 || score > 5 {
		return fmt.Errorf("score must be between 1 and 5, got %d", score)
	}

	s, err := c.sessions.Require()
	if err != nil {
		return err
	}

	if err := c.gw.SubmitRating(ctx, s.Token, id, s.User.ID, score); err != nil {
		return fmt.Errorf("failed to submit rating: %w", err)
	}

	c.mu.Lock()
	c.entries[id] = Status{State: HasAverage, Average: float64(score), Interim: true}
	c.mu.Unlock()

	c.scheduleRefetch(id)
	return nil
}

// scheduleRefetch re-fetches the entity after RefetchDelay. The goroutine is
// tied to the cache's lifetime, not the submitting view's: Close cancels it.
func (c *Cache) scheduleRefetch(id int) {
	delay := c.RefetchDelay
	if delay <= 0 {
		delay = DefaultRefetchDelay
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-c.ctx.Done():
			return
		case <-timer.C:
		}

		fetchCtx, cancel := context.WithTimeout(c.ctx, 10*time.Second)
		defer cancel()
		c.Get(fetchCtx, id)
	}()
}
