package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Swordfish189/github-events-tracker/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/events?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL,
			repo TEXT NOT NULL,
			event_type TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			raw_json TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_pair_ts ON events(repo, event_type, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresStore) InsertEvent(ctx context.Context, ev model.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, repo, event_type, created_at, raw_json)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		ev.ID,
		ev.Repo,
		ev.Type,
		ev.CreatedAt.UTC(),
		ev.Raw,
	)
	return err
}

func (s *postgresStore) EventTimes(ctx context.Context, repo, eventType string, since time.Time) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT created_at FROM events
		WHERE repo = $1 AND event_type = $2 AND created_at >= $3
		ORDER BY created_at ASC, seq ASC`,
		repo, eventType, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []time.Time
	for rows.Next() {
		var ts time.Time
		if err := rows.Scan(&ts); err != nil {
			return nil, err
		}
		out = append(out, ts.UTC())
	}
	return out, rows.Err()
}

func (s *postgresStore) ActivePairs(ctx context.Context, since time.Time) ([]model.Pair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT repo, event_type FROM events WHERE created_at >= $1
		ORDER BY repo, event_type`,
		since.UTC())
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
