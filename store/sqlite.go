// Package store persists completed scrape results to sqlite. Persistence
// is optional; a nil *Store is a valid no-op handle.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // driver registration only

	"github.com/kuchikomi-lab/kuchikomi/models"
)

// Store wraps the sqlite handle.
type Store struct {
	db *sql.DB
}

// Open connects to the sqlite file at path and ensures the schema.
// WAL mode keeps concurrent task completions from tripping over the
// writer lock.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS review (
	  id INTEGER PRIMARY KEY AUTOINCREMENT,
	  source_url TEXT NOT NULL,
	  dedup_key TEXT NOT NULL,
	  place_name TEXT,
	  author TEXT,
	  rating INTEGER,
	  posted_at TEXT,
	  body TEXT,
	  first_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  last_seen_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	  UNIQUE(source_url, dedup_key)
	);
	CREATE INDEX IF NOT EXISTS idx_review_source ON review(source_url);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveResult upserts a completed scrape's reviews. Re-scraping the same
// place refreshes last_seen_at instead of duplicating rows.
func (s *Store) SaveResult(ctx context.Context, result *models.ScrapeResult) (int64, error) {
	if s == nil {
		return 0, nil
	}

	upsert := `
	INSERT INTO review (source_url, dedup_key, place_name, author, rating, posted_at, body)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(source_url, dedup_key) DO UPDATE SET
	  place_name = excluded.place_name,
	  posted_at = excluded.posted_at,
	  body = excluded.body,
	  last_seen_at = CURRENT_TIMESTAMP;
	`

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	stmt, err := tx.PrepareContext(ctx, upsert)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	defer stmt.Close()

	var saved int64
	for i := range result.Reviews {
		r := &result.Reviews[i]
		if _, err := stmt.ExecContext(ctx,
			r.SourceURL, r.DedupKey(), result.Place.Name,
			r.Author, r.Rating, r.PostedAt, r.Body,
		); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("store: upsert review: %w", err)
		}
		saved++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return saved, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
