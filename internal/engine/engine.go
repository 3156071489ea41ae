package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Swordfish189/github-events-tracker/internal/config"
	"github.com/Swordfish189/github-events-tracker/internal/storage"
)

// Engine computes the rolling mean inter-event interval per repository and
// event type over a window bounded by age and size.
type Engine struct {
	store     storage.Store
	logger    *slog.Logger
	maxEvents int
	maxAge    time.Duration
	now       func() time.Time
}

func NewEngine(cfg config.WindowConfig, store storage.Store, logger *slog.Logger) *Engine {
	return &Engine{
		store:     store,
		logger:    logger,
		maxEvents: cfg.MaxEvents,
		maxAge:    time.Duration(cfg.MaxDays) * 24 * time.Hour,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (e *Engine) cutoff() time.Time {
	return e.now().Add(-e.maxAge)
}

// Window returns the timestamps for one pair, ascending, restricted to the
// last maxAge and truncated to the most recent maxEvents entries.
func (e *Engine) Window(ctx context.Context, repo, eventType string) ([]time.Time, error) {
	times, err := e.store.EventTimes(ctx, repo, eventType, e.cutoff())
	if err != nil {
		return nil, fmt.Errorf("query events for %s/%s: %w", repo, eventType, err)
	}
	if len(times) > e.maxEvents {
		times = times[len(times)-e.maxEvents:]
	}
	return times, nil
}

// AverageInterval is the total span of the window divided by the number of
// gaps, in seconds. This is not the mean of pairwise deltas; the two only
// coincide for evenly spaced timestamps, and span/gaps stays well defined when
// timestamps collide. The second return is false when the window has fewer
// than two entries and no interval exists.
func AverageInterval(times []time.Time) (float64, bool) {
	if len(times) < 2 {
		return 0, false
	}
	span := times[len(times)-1].Sub(times[0]).Seconds()
	return span / float64(len(times)-1), true
}

// Stats builds the full result map. Pairs without a defined interval are
// absent from the result rather than reported as zero. A store read failure
// fails the whole computation; a partial map would misreport data.
func (e *Engine) Stats(ctx context.Context) (map[string]map[string]float64, error) {
	pairs, err := e.store.ActivePairs(ctx, e.cutoff())
	if err != nil {
		return nil, fmt.Errorf("list active pairs: %w", err)
	}
	results := make(map[string]map[string]float64)
	for _, p := range pairs {
		window, err := e.Window(ctx, p.Repo, p.Type)
		if err != nil {
			return nil, err
		}
		avg, ok := AverageInterval(window)
		if !ok {
			continue
		}
		if _, exists := results[p.Repo]; !exists {
			results[p.Repo] = make(map[string]float64)
		}
		results[p.Repo][p.Type] = avg
	}
	if e.logger != nil {
		e.logger.Debug("stats computed", "pairs", len(pairs))
	}
	return results, nil
}
