package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Swordfish189/github-events-tracker/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:events.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			repo TEXT NOT NULL,
			event_type TEXT NOT NULL,
			created_at TEXT NOT NULL,
			raw_json TEXT
		)`)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_events_pair_ts ON events(repo, event_type, created_at)`)
	return err
}

func (s *sqliteStore) InsertEvent(ctx context.Context, ev model.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO events (id, repo, event_type, created_at, raw_json)
		VALUES (?, ?, ?, ?, ?)`,
		ev.ID,
		ev.Repo,
		ev.Type,
		formatTime(ev.CreatedAt),
		ev.Raw,
	)
	return err
}

// rowid breaks created_at ties in insertion order, keeping the window stable
// when the feed assigns identical timestamps.
func (s *sqliteStore) EventTimes(ctx context.Context, repo, eventType string, since time.Time) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at FROM events
		WHERE repo = ? AND event_type = ? AND created_at >= ?
		ORDER BY created_at ASC, rowid ASC`,
		repo, eventType, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ts)
	}
	return out, rows.Err()
}

func (s *sqliteStore) ActivePairs(ctx context.Context, since time.Time) ([]model.Pair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT repo, event_type FROM events WHERE created_at >= ?
		ORDER BY repo, event_type`,
		formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Pair
	for rows.Next() {
		var p model.Pair
		if err := rows.Scan(&p.Repo, &p.Type); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
