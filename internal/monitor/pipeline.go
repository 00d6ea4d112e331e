package monitor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lepinkainen/feedwatch/internal/matcher"
)

// Poll runs one fetch→match→store cycle for a feed.
//
// Fetch and parse errors are soft: the cycle is logged and abandoned without
// touching feed state, leaving the feed eligible for its next tick. A poll
// with no active keywords still updates last_fetched: the feed was
// reachable even though no matching was possible. Nothing here propagates:
// one feed's failure must never affect sibling feeds or the scheduler.
func (m *Monitor) Poll(ctx context.Context, feedID int64, url string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while polling feed", "url", url, "panic", r)
		}
	}()

	slog.Info("Fetching feed", "url", url)

	entries, err := m.fetcher.Fetch(ctx, url)
	if err != nil {
		slog.Warn("Feed fetch failed", "url", url, "error", err)
		return
	}

	keywords, err := m.store.ActiveKeywordTexts(ctx)
	if err != nil {
		slog.Error("Failed to load active keywords", "url", url, "error", err)
		return
	}

	match := matcher.New(keywords)
	if match.Empty() {
		slog.Info("No active keywords defined, skipping matching", "url", url)
		if err := m.store.TouchLastFetched(ctx, feedID); err != nil {
			slog.Error("Failed to record poll time", "url", url, "error", err)
		}
		return
	}

	newResults := 0
	for _, entry := range entries {
		if entry.Link == "" {
			// Links are the dedup key and cannot be null
			slog.Warn("Skipping entry without link", "url", url, "title", entry.Title)
			continue
		}

		text := strings.ToLower(entry.Title + " " + entry.Summary)
		matched := match.Match(text)
		if len(matched) == 0 {
			continue
		}

		added, err := m.store.AddResult(ctx, feedID, entry.Title, entry.Link, entry.Summary, entry.Published, matched)
		if err != nil {
			slog.Error("Failed to store result", "url", url, "link", entry.Link, "error", err)
			continue
		}
		if added {
			newResults++
		}
		// A rejected duplicate link is expected on re-polls, not an error
	}

	if err := m.store.TouchLastFetched(ctx, feedID); err != nil {
		slog.Error("Failed to record poll time", "url", url, "error", err)
	}

	slog.Info("Finished processing feed", "url", url, "entries", len(entries), "new_results", newResults)
}
