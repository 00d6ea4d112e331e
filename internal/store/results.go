package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"
)

// AddResult inserts a matched entry. The link column is the dedup key:
// inserting an already-seen link affects zero rows and returns added=false,
// which callers count as "not new" rather than an error.
func (s *Store) AddResult(ctx context.Context, feedID int64, title, link, summary string, publishedAt time.Time, matchedKeywords []string) (bool, error) {
	summary = truncate(summary, s.summaryMaxLength)

	res, err := s.db.DB().ExecContext(ctx,
		`INSERT OR IGNORE INTO results (feed_id, title, link, summary, published_at, matched_keywords, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		feedID, title, link, summary, publishedAt.UTC(), strings.Join(matchedKeywords, ","), time.Now().UTC())
	if err != nil {
		slog.Error("Failed to add result", "link", link, "error", err)
		return false, fmt.Errorf("failed to add result for link %q: %w", link, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to add result for link %q: %w", link, err)
	}
	return rows > 0, nil
}

// QueryResults returns one page of stored results, newest first
// (published time descending, processing time breaking ties).
//
// keywordFilters is OR-combined and compared case-insensitively as a
// substring of the comma-joined matched_keywords column. A filter term that
// is a substring of a stored keyword ("cat" against "category") therefore
// matches here even though it would not at poll time. Intentional legacy
// behavior, kept for compatibility with existing clients.
func (s *Store) QueryResults(ctx context.Context, page, pageSize int, keywordFilters []string) (*ResultPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > 100 {
		pageSize = 100
	}

	where := ""
	var args []any
	if len(keywordFilters) > 0 {
		clauses := make([]string, 0, len(keywordFilters))
		for _, kw := range keywordFilters {
			clauses = append(clauses, "LOWER(matched_keywords) LIKE ?")
			args = append(args, "%"+strings.ToLower(kw)+"%")
		}
		where = " WHERE (" + strings.Join(clauses, " OR ") + ")"
	}

	var totalItems int
	err := s.db.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM results"+where, args...).Scan(&totalItems)
	if err != nil {
		return nil, fmt.Errorf("failed to count results: %w", err)
	}

	query := `SELECT id, feed_id, title, link, summary, published_at, matched_keywords, processed_at
		FROM results` + where + `
		ORDER BY published_at DESC, processed_at DESC LIMIT ? OFFSET ?`
	pageArgs := append(args, pageSize, (page-1)*pageSize)

	rows, err := s.db.DB().QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]Result, 0, pageSize)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.FeedID, &r.Title, &r.Link, &r.Summary, &r.PublishedAt, &r.MatchedKeywords, &r.ProcessedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ResultPage{
		Items:       items,
		TotalItems:  totalItems,
		TotalPages:  (totalItems + pageSize - 1) / pageSize,
		CurrentPage: page,
		PageSize:    pageSize,
	}, nil
}

// CountFeedResults returns how many results reference a feed.
func (s *Store) CountFeedResults(ctx context.Context, feedID int64) (int, error) {
	var n int
	err := s.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM results WHERE feed_id = ?`, feedID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count results for feed %d: %w", feedID, err)
	}
	return n, nil
}

// truncate shortens s to maxLen characters, appending "..." when cut.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
