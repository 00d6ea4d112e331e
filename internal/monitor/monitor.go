// Package monitor schedules recurring feed polls and runs the poll pipeline.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lepinkainen/feedwatch/internal/fetcher"
	"github.com/lepinkainen/feedwatch/internal/store"
)

// Store is the slice of the persistence layer the monitor consumes.
type Store interface {
	ListFeeds(ctx context.Context, activeOnly bool) ([]store.Feed, error)
	ActiveKeywordTexts(ctx context.Context) ([]string, error)
	AddResult(ctx context.Context, feedID int64, title, link, summary string, publishedAt time.Time, matchedKeywords []string) (bool, error)
	TouchLastFetched(ctx context.Context, id int64) error
}

// Fetcher retrieves and parses one feed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]fetcher.Entry, error)
}

// Monitor owns one recurring job per active feed. Jobs are keyed by feed id;
// a rebuild replaces the whole job set, so configuration changes never leave
// a stale or duplicated schedule behind.
type Monitor struct {
	store           Store
	fetcher         Fetcher
	defaultInterval time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	jobs    map[int64]context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a monitor. defaultInterval is used for feeds whose stored
// interval is missing or non-positive.
func New(s Store, f Fetcher, defaultInterval time.Duration) *Monitor {
	if defaultInterval <= 0 {
		defaultInterval = 5 * time.Minute
	}
	return &Monitor{
		store:           s,
		fetcher:         f,
		defaultInterval: defaultInterval,
		jobs:            make(map[int64]context.CancelFunc),
	}
}

// Start begins monitoring: it schedules every active feed and returns.
// The provided context bounds the monitor's lifetime.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return errors.New("monitor already started")
	}
	m.ctx, m.cancel = context.WithCancel(ctx)
	m.started = true
	m.mu.Unlock()

	slog.Info("Starting feed monitor", "default_interval", m.defaultInterval)
	return m.Rebuild()
}

// Rebuild replaces the entire job set: every scheduled job is cancelled and
// one recurring job is started per active feed at its configured interval.
// Called at startup and after any feed create/update/delete. Polls already
// in flight under the old schedule run to completion.
func (m *Monitor) Rebuild() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return errors.New("monitor not started")
	}

	for id, cancel := range m.jobs {
		cancel()
		delete(m.jobs, id)
	}
	slog.Debug("Cleared scheduled feed jobs")

	feeds, err := m.store.ListFeeds(m.ctx, true)
	if err != nil {
		slog.Error("Failed to load active feeds for scheduling", "error", err)
		return fmt.Errorf("rebuild schedule: %w", err)
	}
	if len(feeds) == 0 {
		slog.Info("No active feeds to schedule")
		return nil
	}

	for _, feed := range feeds {
		interval := time.Duration(feed.FetchIntervalMinutes) * time.Minute
		if interval <= 0 {
			interval = m.defaultInterval
		}
		m.scheduleLocked(feed, interval)
		slog.Info("Scheduled feed", "id", feed.ID, "name", feed.Name, "url", feed.URL, "interval", interval)
	}
	return nil
}

// scheduleLocked starts the recurring job for one feed. Caller holds m.mu.
// The job goroutine polls immediately, then on every tick; because a single
// goroutine owns the feed, polls for one feed never overlap, and a slow
// fetch only delays that feed's next natural tick.
func (m *Monitor) scheduleLocked(feed store.Feed, interval time.Duration) {
	jctx, cancel := context.WithCancel(m.ctx)
	m.jobs[feed.ID] = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		m.Poll(jctx, feed.ID, feed.URL)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-jctx.Done():
				return
			case <-ticker.C:
				m.Poll(jctx, feed.ID, feed.URL)
			}
		}
	}()
}

// PollFeed runs one on-demand poll for a single feed, outside the recurring
// schedule. The feed's next scheduled tick is unaffected.
func (m *Monitor) PollFeed(feedID int64, url string) {
	m.mu.Lock()
	ctx := m.ctx
	m.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	m.Poll(ctx, feedID, url)
}

// Stop cancels all jobs and waits for in-flight polls to finish.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.started = false
	for id, cancel := range m.jobs {
		cancel()
		delete(m.jobs, id)
	}
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	slog.Info("Feed monitor stopped")
}

// JobCount returns the number of currently scheduled feed jobs.
func (m *Monitor) JobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}
