// Job history: URL-keyed sightings persisted across runs, backing the
// freshness filter.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// TimeLayout is how sighting timestamps are stored. Parsing is the
// reader's job: a row with an unparseable last_seen must fail open
// toward re-analysis, so Entry carries raw text.
const TimeLayout = time.RFC3339

// Entry is one remembered job. FirstSeen never changes once set;
// LastSeen is bumped on every sighting. Rows are never deleted.
type Entry struct {
	URL       string
	Title     string
	IsRemote  bool
	FirstSeen string
	LastSeen  string
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1) // sqlite typically wants 1 writer
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS seen_jobs (
  url TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  is_remote INTEGER NOT NULL DEFAULT 0,
  first_seen TEXT NOT NULL,
  last_seen TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_seen_jobs_last_seen ON seen_jobs(last_seen DESC);
`)
	return err
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get looks up one URL. The second return is false when the URL has
// never been seen.
func (s *Store) Get(ctx context.Context, url string) (Entry, bool, error) {
	var e Entry
	err := s.db.QueryRowContext(ctx, `
SELECT url, title, is_remote, first_seen, last_seen
FROM seen_jobs WHERE url = ?;`, url).
		Scan(&e.URL, &e.Title, &e.IsRemote, &e.FirstSeen, &e.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("history get: %w", err)
	}
	return e, true, nil
}

// Sighting records that a URL appeared in this run with the given
// verdict. first_seen survives the upsert; everything else follows the
// latest sighting.
func (s *Store) Sighting(ctx context.Context, url, title string, isRemote bool, now time.Time) error {
	ts := now.Format(TimeLayout)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO seen_jobs(url, title, is_remote, first_seen, last_seen)
VALUES(?,?,?,?,?)
ON CONFLICT(url) DO UPDATE SET
  title = excluded.title,
  is_remote = excluded.is_remote,
  last_seen = excluded.last_seen;`,
		url, title, boolToInt(isRemote), ts, ts)
	if err != nil {
		return fmt.Errorf("history sighting: %w", err)
	}
	return nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seen_jobs;`).Scan(&n)
	return n, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
