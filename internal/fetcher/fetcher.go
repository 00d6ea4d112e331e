// Package fetcher retrieves remote feeds and normalizes their entries.
package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/lepinkainen/feedwatch/pkg/httputil"
)

// Entry is one normalized feed entry.
type Entry struct {
	Title     string
	Link      string
	Summary   string
	Published time.Time
}

// Fetcher downloads and parses feeds. Errors returned from Fetch are soft
// failures from the monitor's point of view: the poll cycle is abandoned and
// the feed stays scheduled for its next tick.
type Fetcher struct {
	parser *gofeed.Parser
	client *httputil.Client
}

// New creates a fetcher with the given per-request timeout.
func New(timeout time.Duration) *Fetcher {
	cfg := httputil.DefaultConfig()
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return &Fetcher{
		parser: gofeed.NewParser(),
		client: httputil.NewClient(cfg),
	}
}

// Fetch retrieves url and parses it into normalized entries.
// Network failures, non-200 responses and unparseable documents all surface
// as errors; no partial entry list is returned alongside an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]Entry, error) {
	resp, err := f.client.GetWithContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := httputil.EnsureStatusOK(resp); err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		entries = append(entries, Entry{
			Title:     item.Title,
			Link:      item.Link,
			Summary:   stripHTML(summary),
			Published: publishedTime(item),
		})
	}
	return entries, nil
}

// publishedTime resolves an entry timestamp, preferring feed-provided values
// and falling back to the current wall clock so stored results always carry
// a non-null published time.
func publishedTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}

	raw := item.Published
	if raw == "" {
		raw = item.Updated
	}
	if raw != "" {
		for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}

	return time.Now()
}
