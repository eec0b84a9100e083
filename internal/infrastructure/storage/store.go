package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS feeds (
  feed_url TEXT PRIMARY KEY,
  etag TEXT,
  last_modified TEXT,
  last_checked_at TEXT
);
CREATE TABLE IF NOT EXISTS seen (
  uid TEXT PRIMARY KEY,
  feed_url TEXT NOT NULL,
  article_url TEXT,
  doi TEXT,
  pub_date TEXT,
  first_seen_at TEXT
);
CREATE TABLE IF NOT EXISTS articles (
  uid TEXT PRIMARY KEY,
  feed_url TEXT NOT NULL,
  journal TEXT,
  title_en TEXT,
  title_cn TEXT,
  type TEXT,
  pub_date TEXT,
  doi TEXT,
  article_url TEXT,
  abstract_en TEXT,
  abstract_cn TEXT,
  raw_jsonld TEXT,
  fetched_at TEXT,
  last_updated_at TEXT
);
`

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Store is the single persistent state backend: feed cache validators, the
// append-only seen-set, and mutable article records, all in one SQLite
// file so external reporting tools can read it directly.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the state database and applies the schema.
// Every state-changing operation commits immediately, so an interrupted
// run leaves committed rows intact and the next run resumes idempotently.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set synchronous: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}
