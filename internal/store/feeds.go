package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// FeedUpdate describes a partial feed update. Nil fields are left unchanged.
type FeedUpdate struct {
	URL                  *string `json:"url"`
	Name                 *string `json:"name"`
	FetchIntervalMinutes *int    `json:"fetch_interval_minutes"`
	IsActive             *bool   `json:"is_active"`
}

const feedColumns = "id, url, name, last_fetched, fetch_interval_minutes, is_active"

// CreateFeed registers a new feed with the default poll interval.
// Returns ErrExists if the URL is already registered.
func (s *Store) CreateFeed(ctx context.Context, url, name string, defaultIntervalMinutes int) (*Feed, error) {
	res, err := s.db.DB().ExecContext(ctx,
		`INSERT OR IGNORE INTO feeds (url, name, fetch_interval_minutes) VALUES (?, ?, ?)`,
		url, name, defaultIntervalMinutes)
	if err != nil {
		slog.Error("Failed to create feed", "url", url, "error", err)
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}
	if rows == 0 {
		slog.Warn("Feed URL already exists", "url", url)
		return nil, ErrExists
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}
	return s.GetFeed(ctx, id)
}

// GetFeed returns a single feed by id, or ErrNotFound.
func (s *Store) GetFeed(ctx context.Context, id int64) (*Feed, error) {
	row := s.db.DB().QueryRowContext(ctx,
		`SELECT `+feedColumns+` FROM feeds WHERE id = ?`, id)
	return scanFeed(row)
}

// ListFeeds returns all feeds, or only active ones when activeOnly is set.
func (s *Store) ListFeeds(ctx context.Context, activeOnly bool) ([]Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM feeds`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var feeds []Feed
	for rows.Next() {
		f, err := scanFeedRow(rows)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, *f)
	}
	return feeds, rows.Err()
}

// UpdateFeed applies a partial update and returns the updated row.
// With no fields set it returns the current row unchanged.
func (s *Store) UpdateFeed(ctx context.Context, id int64, upd FeedUpdate) (*Feed, error) {
	var set []string
	var args []any

	if upd.URL != nil {
		set = append(set, "url = ?")
		args = append(args, *upd.URL)
	}
	if upd.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.FetchIntervalMinutes != nil {
		set = append(set, "fetch_interval_minutes = ?")
		args = append(args, *upd.FetchIntervalMinutes)
	}
	if upd.IsActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, boolToInt(*upd.IsActive))
	}

	if len(set) == 0 {
		return s.GetFeed(ctx, id)
	}

	args = append(args, id)
	res, err := s.db.DB().ExecContext(ctx,
		`UPDATE feeds SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		slog.Error("Failed to update feed", "id", id, "error", err)
		return nil, fmt.Errorf("failed to update feed %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update feed %d: %w", id, err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.GetFeed(ctx, id)
}

// DeleteFeed removes a feed and all of its results in one transaction.
// Returns ErrNotFound if the id does not exist.
func (s *Store) DeleteFeed(ctx context.Context, id int64) error {
	err := s.db.Transaction(func(tx *sql.Tx) error {
		// Results reference the feed row, delete them first
		if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE feed_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM feeds WHERE id = ?`, id)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		slog.Error("Failed to delete feed", "id", id, "error", err)
		return fmt.Errorf("failed to delete feed %d: %w", id, err)
	}
	return err
}

// TouchLastFetched records a successful poll attempt for a feed.
func (s *Store) TouchLastFetched(ctx context.Context, id int64) error {
	_, err := s.db.DB().ExecContext(ctx,
		`UPDATE feeds SET last_fetched = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		slog.Error("Failed to update last fetched time", "id", id, "error", err)
		return fmt.Errorf("failed to update last fetched time for feed %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row *sql.Row) (*Feed, error) {
	f, err := scanFeedRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return f, err
}

func scanFeedRow(row rowScanner) (*Feed, error) {
	var f Feed
	var name sql.NullString
	var lastFetched sql.NullTime
	var interval sql.NullInt64
	if err := row.Scan(&f.ID, &f.URL, &name, &lastFetched, &interval, &f.IsActive); err != nil {
		return nil, err
	}
	f.Name = name.String
	if lastFetched.Valid {
		t := lastFetched.Time
		f.LastFetched = &t
	}
	f.FetchIntervalMinutes = int(interval.Int64)
	return &f, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
