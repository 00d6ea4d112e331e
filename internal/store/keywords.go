package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// KeywordUpdate describes a partial keyword update. Nil fields are left unchanged.
type KeywordUpdate struct {
	Keyword  *string `json:"keyword"`
	IsActive *bool   `json:"is_active"`
}

// CreateKeyword stores a new keyword, normalized to lowercase.
// Returns ErrExists if the normalized text is already present.
func (s *Store) CreateKeyword(ctx context.Context, keyword string) (*Keyword, error) {
	normalized := strings.ToLower(strings.TrimSpace(keyword))
	if normalized == "" {
		return nil, fmt.Errorf("keyword must not be empty")
	}

	res, err := s.db.DB().ExecContext(ctx,
		`INSERT OR IGNORE INTO keywords (keyword) VALUES (?)`, normalized)
	if err != nil {
		slog.Error("Failed to create keyword", "keyword", normalized, "error", err)
		return nil, fmt.Errorf("failed to create keyword: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword: %w", err)
	}
	if rows == 0 {
		slog.Warn("Keyword already exists", "keyword", normalized)
		return nil, ErrExists
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create keyword: %w", err)
	}
	return s.GetKeyword(ctx, id)
}

// GetKeyword returns a single keyword by id, or ErrNotFound.
func (s *Store) GetKeyword(ctx context.Context, id int64) (*Keyword, error) {
	var k Keyword
	err := s.db.DB().QueryRowContext(ctx,
		`SELECT id, keyword, is_active FROM keywords WHERE id = ?`, id).
		Scan(&k.ID, &k.Keyword, &k.IsActive)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get keyword %d: %w", id, err)
	}
	return &k, nil
}

// ListKeywords returns all keywords, or only active ones when activeOnly is set.
func (s *Store) ListKeywords(ctx context.Context, activeOnly bool) ([]Keyword, error) {
	query := `SELECT id, keyword, is_active FROM keywords`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keywords []Keyword
	for rows.Next() {
		var k Keyword
		if err := rows.Scan(&k.ID, &k.Keyword, &k.IsActive); err != nil {
			return nil, err
		}
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// ActiveKeywordTexts returns the text of every active keyword.
// Keywords are stored lowercase, so the returned slice is already canonical
// for matching.
func (s *Store) ActiveKeywordTexts(ctx context.Context) ([]string, error) {
	keywords, err := s.ListKeywords(ctx, true)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		texts = append(texts, k.Keyword)
	}
	return texts, nil
}

// UpdateKeyword applies a partial update and returns the updated row.
// A changed keyword text is normalized to lowercase, matching creation.
func (s *Store) UpdateKeyword(ctx context.Context, id int64, upd KeywordUpdate) (*Keyword, error) {
	var set []string
	var args []any

	if upd.Keyword != nil {
		set = append(set, "keyword = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(*upd.Keyword)))
	}
	if upd.IsActive != nil {
		set = append(set, "is_active = ?")
		args = append(args, boolToInt(*upd.IsActive))
	}

	if len(set) == 0 {
		return s.GetKeyword(ctx, id)
	}

	args = append(args, id)
	res, err := s.db.DB().ExecContext(ctx,
		`UPDATE keywords SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		slog.Error("Failed to update keyword", "id", id, "error", err)
		return nil, fmt.Errorf("failed to update keyword %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update keyword %d: %w", id, err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.GetKeyword(ctx, id)
}

// DeleteKeyword removes a keyword. Stored results keep their matched-keyword
// snapshot; deletion only stops future matching.
func (s *Store) DeleteKeyword(ctx context.Context, id int64) error {
	res, err := s.db.DB().ExecContext(ctx, `DELETE FROM keywords WHERE id = ?`, id)
	if err != nil {
		slog.Error("Failed to delete keyword", "id", id, "error", err)
		return fmt.Errorf("failed to delete keyword %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete keyword %d: %w", id, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
