package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"uniscope/internal/bus"
	"uniscope/internal/prefs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestRefresher(t *testing.T) (*Refresher, *prefs.Preferences) {
	t.Helper()
	b := bus.NewMemoryBus()
	p := prefs.New(prefs.NewMemoryStore(), b, nil)
	r := NewRefresher(p, b, nil, "en", nil)
	r.Interval = time.Hour // tests drive refreshes via the bus
	t.Cleanup(r.Stop)
	return r, p
}

func waitForReport(t *testing.T, r *Refresher) Report {
	t.Helper()
	select {
	case rep := <-r.Reports():
		return rep
	case <-time.After(3 * time.Second):
		t.Fatal("no report arrived")
		return Report{}
	}
}

func TestRefresher_EmitsInitialReport(t *testing.T) {
	r, p := newTestRefresher(t)
	p.RecordClick(42)

	r.Start()

	rep := waitForReport(t, r)
	assert.Equal(t, 1, rep.Total)
	require.Len(t, rep.Entries, 1)
	assert.Equal(t, 42, rep.Entries[0].ID)
}

func TestRefresher_RecomputesOnBusNotification(t *testing.T) {
	r, p := newTestRefresher(t)
	r.Start()
	waitForReport(t, r) // drain the initial empty report

	p.RecordClick(7)

	require.Eventually(t, func() bool {
		select {
		case rep := <-r.Reports():
			return rep.Total == 1 && rep.Entries[0].ID == 7
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestRefresher_ClearPropagates(t *testing.T) {
	r, p := newTestRefresher(t)
	p.RecordClick(7)
	r.Start()
	waitForReport(t, r)

	p.ClearAnalytics()

	require.Eventually(t, func() bool {
		select {
		case rep := <-r.Reports():
			return rep.Total == 0
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestRefresher_TickerPicksUpSilentChange(t *testing.T) {
	b := bus.NewMemoryBus()
	store := prefs.NewMemoryStore()
	p := prefs.New(store, b, nil)
	r := NewRefresher(p, b, nil, "en", nil)
	r.Interval = 50 * time.Millisecond
	defer r.Stop()

	r.Start()
	waitForReport(t, r)

	// Write behind the bus's back; only the ticker can catch this.
	require.NoError(t, store.Write(prefs.KeyAnalytics, []byte(`{"3":5}`)))

	require.Eventually(t, func() bool {
		select {
		case rep := <-r.Reports():
			return rep.Total == 5
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestRefresher_SlowConsumerGetsFreshest(t *testing.T) {
	r, p := newTestRefresher(t)
	r.Start()

	// Nobody reading; each click replaces the pending report.
	for i := 0; i < 5; i++ {
		p.RecordClick(1)
	}

	require.Eventually(t, func() bool {
		select {
		case rep := <-r.Reports():
			return rep.Total == 5
		default:
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

func TestRefresher_StopIsClean(t *testing.T) {
	b := bus.NewMemoryBus()
	p := prefs.New(prefs.NewMemoryStore(), b, nil)
	r := NewRefresher(p, b, nil, "en", nil)
	r.Start()
	r.Stop()

	// Publishing after Stop must not panic or deliver.
	p.RecordClick(1)
	assert.Equal(t, 0, b.SubscriberCount(prefs.KeyAnalytics))
}
