package poll

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// RepoFetcher fetches and stores the events of one repository.
type RepoFetcher interface {
	FetchRepo(ctx context.Context, repo string)
}

// Scheduler drives ingestion. It is either idle or polling; a tick that lands
// while a cycle is still running is skipped, never queued, so a slow feed can
// not pile up concurrent cycles.
type Scheduler struct {
	repos    []string
	fetcher  RepoFetcher
	logger   *slog.Logger
	interval time.Duration
	onCycle  func()
	polling  atomic.Bool
}

func NewScheduler(repos []string, interval time.Duration, fetcher RepoFetcher, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		repos:    repos,
		fetcher:  fetcher,
		logger:   logger,
		interval: interval,
	}
}

// OnCycleDone registers a callback invoked after every completed cycle.
func (s *Scheduler) OnCycleDone(fn func()) {
	s.onCycle = fn
}

// Start runs one immediate cycle, then a cycle per tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		s.RunCycle(ctx)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunCycle(ctx)
			}
		}
	}()
}

// RunCycle attempts every configured repository once, in order. Per-repo
// failures are contained by the fetcher; completion does not depend on them.
// Returns false when a cycle was already in flight and this one was skipped.
func (s *Scheduler) RunCycle(ctx context.Context) bool {
	if !s.polling.CompareAndSwap(false, true) {
		if s.logger != nil {
			s.logger.Warn("poll cycle still running, skipping tick")
		}
		return false
	}
	defer s.polling.Store(false)

	if s.logger != nil {
		s.logger.Info("poll cycle started", "repos", len(s.repos))
	}
	start := time.Now()
	for _, repo := range s.repos {
		s.fetcher.FetchRepo(ctx, repo)
	}
	if s.logger != nil {
		s.logger.Info("poll cycle finished", "elapsed", time.Since(start).Truncate(time.Millisecond).String())
	}
	if s.onCycle != nil {
		s.onCycle()
	}
	return true
}
