package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/replaystats/pkg/logger"
	"github.com/okian/replaystats/pkg/metrics"
)

// MemoryStore keeps matches in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]Match
	book    *careerBook
	log     logger.Logger
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	o := buildOptions(opts)
	return &MemoryStore{
		matches: make(map[string]Match),
		book:    newCareerBook(),
		log:     o.log,
	}
}

func (s *MemoryStore) Save(ctx context.Context, m Match) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositorySaveLatency(float64(time.Since(start).Milliseconds()))
	}()

	if m.GameID == "" {
		metrics.RecordErrorByComponent("repository", "invalid_match")
		return ErrInvalidMatch
	}
	if m.Processed.IsZero() {
		m.Processed = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.matches[m.GameID]; ok {
		s.book.apply(old.Players, -1)
		s.log.Debug(ctx, "match replaced", logger.String("game_id", m.GameID))
	}
	s.matches[m.GameID] = m
	s.book.apply(m.Players, 1)
	metrics.UpdateMatchesStored(len(s.matches))
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, gameID string) (Match, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[gameID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Match{}, ErrNotFound
	}
	return m, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Match, error) {
	if limit < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	s.mu.RLock()
	all := make([]Match, 0, len(s.matches))
	for _, m := range s.matches {
		all = append(all, m)
	}
	s.mu.RUnlock()
	return newestFirst(all, limit), nil
}

func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

func (s *MemoryStore) TopPlayers(ctx context.Context, n int) ([]Career, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	return s.book.top(n), nil
}

func (s *MemoryStore) Player(ctx context.Context, username string) (Career, error) {
	c, ok := s.book.get(username)
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Career{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) Close() error { return nil }

// newestFirst orders by processing time desc, then game id asc, and trims
// to limit.
func newestFirst(all []Match, limit int) []Match {
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Processed.Equal(all[j].Processed) {
			return all[i].Processed.After(all[j].Processed)
		}
		return all[i].GameID < all[j].GameID
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}
