package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Swordfish189/github-events-tracker/internal/config"
	"github.com/Swordfish189/github-events-tracker/internal/model"
)

// Store is the durable event log. InsertEvent is idempotent on the event id:
// inserting an already-stored id is a silent success and leaves the existing
// record untouched.
type Store interface {
	Init(ctx context.Context) error
	Close() error
	InsertEvent(ctx context.Context, ev model.Event) error
	EventTimes(ctx context.Context, repo, eventType string, since time.Time) ([]time.Time, error)
	ActivePairs(ctx context.Context, since time.Time) ([]model.Pair, error)
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// Timestamps are stored as RFC 3339 UTC strings so that lexical comparison in
// SQL matches chronological order.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
