// Package store persists feeds, keywords and matched results in SQLite.
package store

import (
	"errors"
	"time"

	"github.com/lepinkainen/feedwatch/pkg/database"
)

// Sentinel errors the API layer maps to client-visible outcomes.
var (
	// ErrNotFound is returned when a feed or keyword id does not exist
	ErrNotFound = errors.New("not found")
	// ErrExists is returned on a uniqueness conflict (feed URL, keyword text)
	ErrExists = errors.New("already exists")
)

// Feed is a registered external content source polled on a schedule.
type Feed struct {
	ID                   int64      `json:"id"`
	URL                  string     `json:"url"`
	Name                 string     `json:"name"`
	LastFetched          *time.Time `json:"last_fetched,omitempty"`
	FetchIntervalMinutes int        `json:"fetch_interval_minutes"`
	IsActive             bool       `json:"is_active"`
}

// Keyword is a user-defined term used to filter feed entries into results.
// The text is normalized to lowercase at creation time.
type Keyword struct {
	ID       int64  `json:"id"`
	Keyword  string `json:"keyword"`
	IsActive bool   `json:"is_active"`
}

// Result is a feed entry that matched at least one active keyword at the
// time it was processed. Rows are never mutated after insertion.
type Result struct {
	ID              int64     `json:"id"`
	FeedID          int64     `json:"feed_id"`
	Title           string    `json:"title"`
	Link            string    `json:"link"`
	Summary         string    `json:"summary"`
	PublishedAt     time.Time `json:"published_at"`
	MatchedKeywords string    `json:"matched_keywords"`
	ProcessedAt     time.Time `json:"processed_at"`
}

// ResultPage is one page of a paginated result query.
type ResultPage struct {
	Items       []Result `json:"items"`
	TotalItems  int      `json:"total_items"`
	TotalPages  int      `json:"total_pages"`
	CurrentPage int      `json:"current_page"`
	PageSize    int      `json:"page_size"`
}

// Store provides CRUD access to the monitoring tables.
type Store struct {
	db               *database.Database
	summaryMaxLength int
}

// New creates a store over an initialized database.
// summaryMaxLength bounds the stored result summary; values longer than the
// limit are truncated with a trailing "..." marker.
func New(db *database.Database, summaryMaxLength int) *Store {
	if summaryMaxLength <= 0 {
		summaryMaxLength = 1000
	}
	return &Store{db: db, summaryMaxLength: summaryMaxLength}
}
