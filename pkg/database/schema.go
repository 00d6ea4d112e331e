package database

import (
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// InitializeSchema creates the monitoring tables if they don't exist
func InitializeSchema(db *Database) error {
	createFeedsTable := `
	CREATE TABLE IF NOT EXISTS feeds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		name TEXT,
		last_fetched TIMESTAMP,                 -- NULL until the first successful poll
		fetch_interval_minutes INTEGER,
		is_active BOOLEAN DEFAULT 1
	)`
	if err := db.ExecuteSchema(createFeedsTable); err != nil {
		return fmt.Errorf("failed to create feeds table: %w", err)
	}

	createKeywordsTable := `
	CREATE TABLE IF NOT EXISTS keywords (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		keyword TEXT NOT NULL UNIQUE,           -- stored lowercase
		is_active BOOLEAN DEFAULT 1
	)`
	if err := db.ExecuteSchema(createKeywordsTable); err != nil {
		return fmt.Errorf("failed to create keywords table: %w", err)
	}

	createResultsTable := `
	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		feed_id INTEGER NOT NULL,
		title TEXT,
		link TEXT NOT NULL UNIQUE,              -- dedup key
		summary TEXT,
		published_at TIMESTAMP,
		matched_keywords TEXT,                  -- comma-joined snapshot at match time
		processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (feed_id) REFERENCES feeds(id)
	)`
	if err := db.ExecuteSchema(createResultsTable); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}

	slog.Debug("Database schema initialized successfully")
	return nil
}
