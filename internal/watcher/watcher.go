// Package watcher runs the availability check cycle: it fetches the booking
// calendar for every enabled cabin, compares it against the last stored
// snapshot, and publishes change events for anything worth notifying about.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/solheim-lab/hyttevakt/internal/availability"
	"github.com/solheim-lab/hyttevakt/internal/config"
	"github.com/solheim-lab/hyttevakt/internal/eventbus"
	"github.com/solheim-lab/hyttevakt/internal/metrics"
	"github.com/solheim-lab/hyttevakt/internal/storage"
)

// ErrCycleInProgress is returned by RunCycle when a cycle is already running.
var ErrCycleInProgress = errors.New("check cycle already in progress")

const (
	defaultConcurrency = 3

	// retryDelay is how soon a follow-up check is requested when a cycle had
	// transient per-cabin failures.
	retryDelay = 5 * time.Minute
)

// Fetcher retrieves the raw availability calendar for a cabin.
type Fetcher interface {
	Fetch(ctx context.Context, cabinID string) ([]availability.Record, error)
}

// Registry lists the cabins to check.
type Registry interface {
	Enabled() []config.Cabin
}

// Publisher emits change events to interested listeners.
type Publisher interface {
	Publish(eventType string, payload map[string]string)
}

// NextScheduler requests an extra check sooner than the regular interval.
type NextScheduler interface {
	ScheduleNext(ctx context.Context, delay time.Duration) error
}

// Config holds the watcher's collaborators.
type Config struct {
	Fetcher     Fetcher
	Registry    Registry
	History     storage.HistoryStore
	Events      Publisher
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	Concurrency int
}

// CabinResult summarizes the outcome of a single cabin check within a cycle.
type CabinResult struct {
	CabinID       string
	CabinName     string
	Tier          availability.Tier
	AvailableDays int
	Weekends      []availability.Weekend
	Added         int
	Removed       int
	Err           error
}

// CycleResult summarizes a completed cycle.
type CycleResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Cabins     []CabinResult
}

// Watcher orchestrates check cycles. At most one cycle runs at a time;
// concurrent triggers are rejected rather than queued.
type Watcher struct {
	cfg     Config
	logger  *slog.Logger
	running atomic.Bool

	mu            sync.Mutex
	lastChecked   time.Time
	nextScheduler NextScheduler
}

// SetNextScheduler wires in the scheduler used to request early retries.
// Called once during startup, after both the watcher and the scheduler
// exist.
func (w *Watcher) SetNextScheduler(s NextScheduler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextScheduler = s
}

// New creates a Watcher.
func New(cfg Config) (*Watcher, error) {
	if cfg.Fetcher == nil || cfg.Registry == nil || cfg.History == nil {
		return nil, fmt.Errorf("watcher requires a fetcher, registry, and history store")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{cfg: cfg, logger: logger}, nil
}

// Running reports whether a cycle is currently in progress.
func (w *Watcher) Running() bool {
	return w.running.Load()
}

// LastChecked returns when the last cycle completed, zero if none has.
func (w *Watcher) LastChecked() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastChecked
}

// Cycle runs a check cycle, logging and swallowing the
// ErrCycleInProgress case. It satisfies the scheduler's Runner interface.
func (w *Watcher) Cycle(ctx context.Context) {
	if _, err := w.RunCycle(ctx); err != nil {
		if errors.Is(err, ErrCycleInProgress) {
			w.logger.Warn("skipping scheduled check, previous cycle still running")
			return
		}
		w.logger.Error("check cycle failed", "error", err)
	}
}

// RunCycle checks every enabled cabin once. Cabins are checked concurrently
// up to the configured limit; a failure on one cabin never affects the
// others. Returns ErrCycleInProgress if a cycle is already running.
func (w *Watcher) RunCycle(ctx context.Context) (*CycleResult, error) {
	if !w.running.CompareAndSwap(false, true) {
		if w.cfg.Metrics != nil {
			w.cfg.Metrics.CyclesRejected.Inc()
		}
		return nil, ErrCycleInProgress
	}
	defer w.running.Store(false)

	started := time.Now().UTC()
	cabins := w.cfg.Registry.Enabled()
	w.logger.Info("check cycle started", "cabins", len(cabins))

	results := make([]CabinResult, len(cabins))
	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	for i, cabin := range cabins {
		wg.Add(1)
		go func(i int, cabin config.Cabin) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = w.checkCabin(ctx, cabin)
		}(i, cabin)
	}
	wg.Wait()

	finished := time.Now().UTC()
	w.mu.Lock()
	w.lastChecked = finished
	w.mu.Unlock()

	if w.cfg.Metrics != nil {
		w.cfg.Metrics.CyclesTotal.Inc()
		w.cfg.Metrics.LastCheckedAt.Set(float64(finished.Unix()))
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	w.logger.Info("check cycle finished",
		"cabins", len(cabins), "failed", failed,
		"duration_ms", finished.Sub(started).Milliseconds())

	if failed > 0 {
		w.requestRetry(ctx)
	}

	return &CycleResult{StartedAt: started, FinishedAt: finished, Cabins: results}, nil
}

// requestRetry asks for an earlier follow-up cycle after transient failures.
func (w *Watcher) requestRetry(ctx context.Context) {
	w.mu.Lock()
	next := w.nextScheduler
	w.mu.Unlock()
	if next == nil {
		return
	}
	if err := next.ScheduleNext(ctx, retryDelay); err != nil {
		w.logger.Warn("failed to schedule retry cycle", "error", err)
	}
}

// checkCabin runs the full pipeline for one cabin: fetch, normalize, diff
// against the stored snapshot, classify, publish, and persist.
func (w *Watcher) checkCabin(ctx context.Context, cabin config.Cabin) CabinResult {
	res := CabinResult{CabinID: cabin.ID, CabinName: cabin.Name}
	log := w.logger.With("cabin_id", cabin.ID, "cabin_name", cabin.Name)

	if w.cfg.Metrics != nil {
		w.cfg.Metrics.CabinChecks.WithLabelValues(cabin.ID).Inc()
	}

	records, err := w.cfg.Fetcher.Fetch(ctx, cabin.ID)
	if err != nil {
		log.Error("fetching availability failed", "error", err)
		w.countError(cabin.ID, "fetch")
		res.Err = fmt.Errorf("fetching availability for cabin %q: %w", cabin.ID, err)
		return res
	}

	days := availability.Normalize(records)
	weekends := availability.Weekends(days)
	res.AvailableDays = len(days)
	res.Weekends = weekends

	previous, err := w.cfg.History.Latest(ctx, cabin.ID)
	if err != nil {
		// Treat an unreadable history as a first observation rather than
		// dropping the freshly fetched data.
		log.Error("loading previous snapshot failed, treating as first observation", "error", err)
		w.countError(cabin.ID, "history_read")
		previous = nil
	}

	var previousDays availability.DaySet
	if previous != nil {
		previousDays = previous.Days
	}

	diff := availability.Diff(days, previousDays)
	res.Added = len(diff.Added)
	res.Removed = len(diff.Removed)

	event := availability.Classify(cabin.ID, cabin.Name, diff.Added, weekends)
	res.Tier = event.Tier

	if event.Tier != availability.TierNoChange {
		log.Info("availability changed",
			"tier", event.Tier.String(),
			"added", len(diff.Added), "removed", len(diff.Removed),
			"new_weekends", len(event.NewWeekends),
			"new_lone_saturdays", len(event.NewLoneSaturdays))
		w.publish(event)
	} else {
		log.Debug("no change", "available_days", len(days))
	}

	if w.cfg.Metrics != nil {
		w.cfg.Metrics.ChangeEvents.WithLabelValues(event.Tier.String()).Inc()
		w.cfg.Metrics.AvailableDays.WithLabelValues(cabin.ID).Set(float64(len(days)))
		w.cfg.Metrics.WeekendsOpen.WithLabelValues(cabin.ID).Set(float64(len(weekends)))
	}

	snapshot := availability.Snapshot{
		CabinID:    cabin.ID,
		ObservedAt: time.Now().UTC(),
		Days:       days,
	}
	if err := w.cfg.History.Append(ctx, snapshot); err != nil {
		// The event is already published; a failed append means the next
		// cycle may re-notify, which beats losing the observation silently.
		log.Error("persisting snapshot failed", "error", err)
		w.countError(cabin.ID, "history_write")
		res.Err = fmt.Errorf("persisting snapshot for cabin %q: %w", cabin.ID, err)
	}
	return res
}

// publish emits a change event on the bus for the notification handler.
func (w *Watcher) publish(event availability.ChangeEvent) {
	if w.cfg.Events == nil {
		return
	}
	w.cfg.Events.Publish(eventbus.EventAvailabilityChanged, map[string]string{
		"cabin_id":   event.CabinID,
		"cabin_name": event.CabinName,
		"tier":       event.Tier.String(),
		"title":      event.Title,
		"body":       event.Body,
		"added":      strconv.Itoa(event.AddedCount),
	})
}

func (w *Watcher) countError(cabinID, stage string) {
	if w.cfg.Metrics != nil {
		w.cfg.Metrics.CabinCheckErrors.WithLabelValues(cabinID, stage).Inc()
	}
}
