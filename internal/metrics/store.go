package metrics

import (
	"sync"
	"time"

	"github.com/Swordfish189/github-events-tracker/internal/model"
)

// Store keeps the latest fetch outcome per repository for the status API.
type Store struct {
	mu        sync.RWMutex
	byRepo    map[string]model.FetchStats
	cycles    int
	lastCycle time.Time
}

func NewStore() *Store {
	return &Store{byRepo: make(map[string]model.FetchStats)}
}

func (s *Store) Update(repo string, st model.FetchStats) {
	if repo == "" {
		return
	}
	st.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	s.byRepo[repo] = st
	s.mu.Unlock()
}

func (s *Store) Get(repo string) (model.FetchStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byRepo[repo]
	return st, ok
}

func (s *Store) GetAll() map[string]model.FetchStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]model.FetchStats, len(s.byRepo))
	for repo, st := range s.byRepo {
		out[repo] = st
	}
	return out
}

func (s *Store) CycleDone() {
	s.mu.Lock()
	s.cycles++
	s.lastCycle = time.Now().UTC()
	s.mu.Unlock()
}

func (s *Store) Cycles() (int, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycles, s.lastCycle
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.byRepo = make(map[string]model.FetchStats)
	s.cycles = 0
	s.lastCycle = time.Time{}
	s.mu.Unlock()
}
