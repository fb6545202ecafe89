package watcher_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solheim-lab/hyttevakt/internal/availability"
	"github.com/solheim-lab/hyttevakt/internal/config"
	"github.com/solheim-lab/hyttevakt/internal/storage"
	"github.com/solheim-lab/hyttevakt/internal/watcher"
)

type fakeFetcher struct {
	mu      sync.Mutex
	records map[string][]availability.Record
	errs    map[string]error
	// when set, Fetch blocks until the channel is closed
	block chan struct{}
}

func (f *fakeFetcher) Fetch(_ context.Context, cabinID string) ([]availability.Record, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[cabinID]; ok {
		return nil, err
	}
	return f.records[cabinID], nil
}

type fakeRegistry struct {
	cabins []config.Cabin
}

func (r *fakeRegistry) Enabled() []config.Cabin { return r.cabins }

type fakeHistory struct {
	mu        sync.Mutex
	snaps     map[string][]availability.Snapshot
	latestErr error
	appendErr error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{snaps: make(map[string][]availability.Snapshot)}
}

func (h *fakeHistory) Latest(_ context.Context, cabinID string) (*availability.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.latestErr != nil {
		return nil, h.latestErr
	}
	snaps := h.snaps[cabinID]
	if len(snaps) == 0 {
		return nil, nil
	}
	latest := snaps[len(snaps)-1]
	return &latest, nil
}

func (h *fakeHistory) Append(_ context.Context, snapshot availability.Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.appendErr != nil {
		return h.appendErr
	}
	h.snaps[snapshot.CabinID] = append(h.snaps[snapshot.CabinID], snapshot)
	return nil
}

func (h *fakeHistory) History(_ context.Context, _ string, _ int) ([]storage.HistoryRecord, error) {
	return nil, nil
}

func (h *fakeHistory) ClearAll(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.snaps = make(map[string][]availability.Snapshot)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Type    string
	Payload map[string]string
}

func (p *fakePublisher) Publish(eventType string, payload map[string]string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: payload})
}

func (p *fakePublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

func records(dates ...string) []availability.Record {
	out := make([]availability.Record, 0, len(dates))
	for _, d := range dates {
		out = append(out, availability.Record{Date: d, Available: 1})
	}
	return out
}

func TestFirstObservationOfWeekendPublishesFullWeekend(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]availability.Record{
		"10254": records("2025-12-05", "2025-12-06", "2025-12-07"),
	}}
	history := newFakeHistory()
	events := &fakePublisher{}

	w, err := watcher.New(watcher.Config{
		Fetcher:  fetcher,
		Registry: &fakeRegistry{cabins: []config.Cabin{{ID: "10254", Name: "Fondsbu"}}},
		History:  history,
		Events:   events,
	})
	require.NoError(t, err)

	result, err := w.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Cabins, 1)
	assert.Equal(t, availability.TierFullWeekend, result.Cabins[0].Tier)
	assert.Equal(t, 3, result.Cabins[0].AvailableDays)

	published := events.all()
	require.Len(t, published, 1)
	assert.Equal(t, "full_weekend", published[0].Payload["tier"])
	assert.Equal(t, "Fondsbu", published[0].Payload["cabin_name"])
	assert.Contains(t, published[0].Payload["title"], "weekend")

	require.Len(t, history.snaps["10254"], 1)
}

func TestUnchangedSnapshotDoesNotPublishButStillPersists(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]availability.Record{
		"10254": records("2025-12-05", "2025-12-06", "2025-12-07"),
	}}
	history := newFakeHistory()
	events := &fakePublisher{}

	w, err := watcher.New(watcher.Config{
		Fetcher:  fetcher,
		Registry: &fakeRegistry{cabins: []config.Cabin{{ID: "10254", Name: "Fondsbu"}}},
		History:  history,
		Events:   events,
	})
	require.NoError(t, err)

	_, err = w.RunCycle(context.Background())
	require.NoError(t, err)
	result, err := w.RunCycle(context.Background())
	require.NoError(t, err)

	assert.Equal(t, availability.TierNoChange, result.Cabins[0].Tier)
	assert.Len(t, events.all(), 1, "second cycle must not publish again")
	assert.Len(t, history.snaps["10254"], 2, "every cycle appends a snapshot")
}

func TestSaturdayCompletingKnownWeekendIsLoneSaturday(t *testing.T) {
	fri := availability.NewDay(2025, time.December, 5)
	sun := availability.NewDay(2025, time.December, 7)
	prior := availability.NewDaySet(fri, sun)

	history := newFakeHistory()
	history.snaps["123"] = []availability.Snapshot{{
		CabinID:    "123",
		ObservedAt: time.Now().UTC(),
		Days:       prior,
	}}

	fetcher := &fakeFetcher{records: map[string][]availability.Record{
		"123": records("2025-12-05", "2025-12-06", "2025-12-07"),
	}}
	events := &fakePublisher{}

	w, err := watcher.New(watcher.Config{
		Fetcher:  fetcher,
		Registry: &fakeRegistry{cabins: []config.Cabin{{ID: "123", Name: "Gjendesheim"}}},
		History:  history,
		Events:   events,
	})
	require.NoError(t, err)

	result, err := w.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, availability.TierLoneSaturday, result.Cabins[0].Tier)

	published := events.all()
	require.Len(t, published, 1)
	assert.Equal(t, "lone_saturday", published[0].Payload["tier"])
}

func TestConcurrentCycleIsRejected(t *testing.T) {
	release := make(chan struct{})
	fetcher := &fakeFetcher{
		records: map[string][]availability.Record{"1": records("2025-12-05")},
		block:   release,
	}
	w, err := watcher.New(watcher.Config{
		Fetcher:  fetcher,
		Registry: &fakeRegistry{cabins: []config.Cabin{{ID: "1", Name: "A"}}},
		History:  newFakeHistory(),
	})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = w.RunCycle(context.Background())
	}()

	assert.Eventually(t, w.Running, time.Second, 5*time.Millisecond)

	_, err = w.RunCycle(context.Background())
	assert.ErrorIs(t, err, watcher.ErrCycleInProgress)

	close(release)
	<-done
	assert.False(t, w.Running())
}

func TestFetchFailureIsIsolatedPerCabin(t *testing.T) {
	fetcher := &fakeFetcher{
		records: map[string][]availability.Record{
			"ok": records("2025-12-10"),
		},
		errs: map[string]error{"bad": errors.New("upstream 502")},
	}
	history := newFakeHistory()
	events := &fakePublisher{}

	w, err := watcher.New(watcher.Config{
		Fetcher: fetcher,
		Registry: &fakeRegistry{cabins: []config.Cabin{
			{ID: "bad", Name: "Broken"},
			{ID: "ok", Name: "Working"},
		}},
		History: history,
		Events:  events,
	})
	require.NoError(t, err)

	result, err := w.RunCycle(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Cabins, 2)

	assert.Error(t, result.Cabins[0].Err)
	assert.NoError(t, result.Cabins[1].Err)
	assert.Empty(t, history.snaps["bad"], "failed fetch must not persist a snapshot")
	assert.Len(t, history.snaps["ok"], 1)
}

func TestUnreadableHistoryIsTreatedAsFirstObservation(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]availability.Record{
		"1": records("2025-12-05", "2025-12-06", "2025-12-07"),
	}}
	history := newFakeHistory()
	history.latestErr = errors.New("disk gone")
	events := &fakePublisher{}

	w, err := watcher.New(watcher.Config{
		Fetcher:  fetcher,
		Registry: &fakeRegistry{cabins: []config.Cabin{{ID: "1", Name: "A"}}},
		History:  history,
		Events:   events,
	})
	require.NoError(t, err)

	result, err := w.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, availability.TierFullWeekend, result.Cabins[0].Tier)
	assert.Len(t, events.all(), 1)
}

func TestAppendFailureDoesNotRetractPublishedEvent(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]availability.Record{
		"1": records("2025-12-05", "2025-12-06", "2025-12-07"),
	}}
	history := newFakeHistory()
	history.appendErr = errors.New("database is locked")
	events := &fakePublisher{}

	w, err := watcher.New(watcher.Config{
		Fetcher:  fetcher,
		Registry: &fakeRegistry{cabins: []config.Cabin{{ID: "1", Name: "A"}}},
		History:  history,
		Events:   events,
	})
	require.NoError(t, err)

	result, err := w.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Error(t, result.Cabins[0].Err)
	assert.Len(t, events.all(), 1)
}

type fakeNextScheduler struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (f *fakeNextScheduler) ScheduleNext(_ context.Context, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, delay)
	return nil
}

func (f *fakeNextScheduler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.delays)
}

func TestFailedCycleRequestsEarlyRetry(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{"1": errors.New("timeout")}}
	w, err := watcher.New(watcher.Config{
		Fetcher:  fetcher,
		Registry: &fakeRegistry{cabins: []config.Cabin{{ID: "1", Name: "A"}}},
		History:  newFakeHistory(),
	})
	require.NoError(t, err)

	next := &fakeNextScheduler{}
	w.SetNextScheduler(next)

	_, err = w.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, next.count())
}

func TestCleanCycleDoesNotRequestRetry(t *testing.T) {
	fetcher := &fakeFetcher{records: map[string][]availability.Record{
		"1": records("2025-12-10"),
	}}
	w, err := watcher.New(watcher.Config{
		Fetcher:  fetcher,
		Registry: &fakeRegistry{cabins: []config.Cabin{{ID: "1", Name: "A"}}},
		History:  newFakeHistory(),
	})
	require.NoError(t, err)

	next := &fakeNextScheduler{}
	w.SetNextScheduler(next)

	_, err = w.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, next.count())
}

func TestLastCheckedUpdatesAfterCycle(t *testing.T) {
	w, err := watcher.New(watcher.Config{
		Fetcher:  &fakeFetcher{},
		Registry: &fakeRegistry{},
		History:  newFakeHistory(),
	})
	require.NoError(t, err)

	assert.True(t, w.LastChecked().IsZero())
	_, err = w.RunCycle(context.Background())
	require.NoError(t, err)
	assert.False(t, w.LastChecked().IsZero())
}
