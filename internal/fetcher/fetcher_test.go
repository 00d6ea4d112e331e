package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.com</link>
    <item>
      <title>SpaceX Launch Update</title>
      <link>https://example.com/launch</link>
      <description>&lt;p&gt;The &lt;b&gt;launch&lt;/b&gt; window opens   tomorrow.&lt;/p&gt;</description>
      <pubDate>Mon, 02 Jan 2006 15:04:05 -0700</pubDate>
    </item>
    <item>
      <title>No Date Entry</title>
      <link>https://example.com/no-date</link>
      <description>An entry without a published date.</description>
    </item>
    <item>
      <title>No Link Entry</title>
      <description>orbit news without a link</description>
    </item>
  </channel>
</rss>`

func serveFeed(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchParsesEntries(t *testing.T) {
	srv := serveFeed(t, http.StatusOK, sampleRSS)

	f := New(5 * time.Second)
	entries, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Fetch() returned %d entries, expected 3", len(entries))
	}

	first := entries[0]
	if first.Title != "SpaceX Launch Update" {
		t.Errorf("entry title = %q", first.Title)
	}
	if first.Link != "https://example.com/launch" {
		t.Errorf("entry link = %q", first.Link)
	}
	if first.Summary != "The launch window opens tomorrow." {
		t.Errorf("entry summary = %q, expected HTML stripped and whitespace collapsed", first.Summary)
	}
	want := time.Date(2006, 1, 2, 15, 4, 5, 0, time.FixedZone("", -7*3600))
	if !first.Published.Equal(want) {
		t.Errorf("entry published = %v, expected %v", first.Published, want)
	}

	// Entries without a date fall back to the current wall clock
	second := entries[1]
	if second.Published.IsZero() {
		t.Error("entry without date has zero published time")
	}
	if time.Since(second.Published) > time.Minute {
		t.Errorf("entry without date published = %v, expected approximately now", second.Published)
	}

	// The link-less entry is still returned; the pipeline decides to skip it
	if entries[2].Link != "" {
		t.Errorf("third entry link = %q, expected empty", entries[2].Link)
	}
}

func TestFetchMalformedDocument(t *testing.T) {
	srv := serveFeed(t, http.StatusOK, "this is not a feed at all")

	f := New(5 * time.Second)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("Fetch() of malformed document succeeded, expected error")
	}
}

func TestFetchHTTPError(t *testing.T) {
	srv := serveFeed(t, http.StatusNotFound, "gone")

	f := New(5 * time.Second)
	if _, err := f.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("Fetch() of 404 response succeeded, expected error")
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	f := New(1 * time.Second)
	if _, err := f.Fetch(context.Background(), "http://127.0.0.1:1/feed.xml"); err == nil {
		t.Fatal("Fetch() of unreachable host succeeded, expected error")
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "just some text",
			expected: "just some text",
		},
		{
			name:     "tags removed",
			input:    "<p>Hello <b>world</b></p>",
			expected: "Hello world",
		},
		{
			name:     "entities decoded",
			input:    "a &amp; b &lt;c&gt;",
			expected: "a & b <c>",
		},
		{
			name:     "whitespace collapsed",
			input:    "too   much\n\n whitespace",
			expected: "too much whitespace",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripHTML(tt.input); got != tt.expected {
				t.Errorf("stripHTML(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
