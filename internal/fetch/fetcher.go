package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Swordfish189/github-events-tracker/internal/config"
	"github.com/Swordfish189/github-events-tracker/internal/metrics"
	"github.com/Swordfish189/github-events-tracker/internal/model"
	"github.com/Swordfish189/github-events-tracker/internal/storage"
)

// Fetcher pulls the event feed for a single repository and hands every event
// to the store. All failures stop at this boundary: a bad cycle for one
// repository never reaches its siblings or the scheduler.
type Fetcher struct {
	client  *http.Client
	baseURL string
	accept  string
	token   string
	store   storage.Store
	stats   *metrics.Store
	logger  *slog.Logger
}

type feedEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

func NewFetcher(cfg config.FeedConfig, store storage.Store, stats *metrics.Store, logger *slog.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		accept:  cfg.Accept,
		token:   cfg.Token,
		store:   store,
		stats:   stats,
		logger:  logger,
	}
}

func (f *Fetcher) FetchRepo(ctx context.Context, repo string) {
	url := fmt.Sprintf("%s/%s/events", f.baseURL, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.fail(repo, "bad feed url", err)
		return
	}
	if f.accept != "" {
		req.Header.Set("Accept", f.accept)
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		var netErr net.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
			f.fail(repo, "feed request timed out", err)
		case errors.Is(err, context.Canceled):
			f.fail(repo, "feed request canceled", err)
		default:
			f.fail(repo, "feed connection failed", err)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		f.fail(repo, "feed returned non-success status", fmt.Errorf("status %d", resp.StatusCode))
		return
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		f.fail(repo, "malformed feed response", err)
		return
	}

	inserted := 0
	dropped := 0
	for _, item := range raw {
		ev, err := decodeEvent(item, repo)
		if err != nil {
			dropped++
			if f.logger != nil {
				f.logger.Warn("skipping feed event", "repo", repo, "err", err)
			}
			continue
		}
		if err := f.store.InsertEvent(ctx, ev); err != nil {
			dropped++
			if f.logger != nil {
				f.logger.Error("insert failed, event dropped", "repo", repo, "event_id", ev.ID, "err", err)
			}
			continue
		}
		inserted++
	}
	if f.logger != nil {
		f.logger.Info("fetched events", "repo", repo, "events", len(raw), "inserted", inserted, "dropped", dropped)
	}
	if f.stats != nil {
		f.stats.Update(repo, model.FetchStats{Fetched: len(raw), Inserted: inserted, Dropped: dropped})
	}
}

func decodeEvent(raw json.RawMessage, repo string) (model.Event, error) {
	var fe feedEvent
	if err := json.Unmarshal(raw, &fe); err != nil {
		return model.Event{}, err
	}
	if fe.ID == "" {
		return model.Event{}, errors.New("event has no id")
	}
	ts, err := time.Parse(time.RFC3339, fe.CreatedAt)
	if err != nil {
		return model.Event{}, fmt.Errorf("event %s: bad created_at: %w", fe.ID, err)
	}
	return model.Event{
		ID:        fe.ID,
		Repo:      repo,
		Type:      fe.Type,
		CreatedAt: ts.UTC(),
		Raw:       string(raw),
	}, nil
}

func (f *Fetcher) fail(repo, msg string, err error) {
	if f.logger != nil {
		f.logger.Error(msg, "repo", repo, "err", err)
	}
	if f.stats != nil {
		f.stats.Update(repo, model.FetchStats{LastError: fmt.Sprintf("%s: %v", msg, err)})
	}
}
