package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/okian/replaystats/pkg/logger"
	"github.com/okian/replaystats/pkg/metrics"
)

const matchKeyPrefix = "match:"

// BadgerStore persists matches in a badger database. The career leaderboard
// is rebuilt from stored matches on open.
type BadgerStore struct {
	// mu serializes writers so the career book follows commit order.
	mu   sync.Mutex
	db   *badger.DB
	book *careerBook
	log  logger.Logger
}

// OpenBadgerStore opens or creates a store at path.
func OpenBadgerStore(ctx context.Context, path string, opts ...Option) (*BadgerStore, error) {
	o := buildOptions(opts)
	bopts := badger.DefaultOptions(path).WithLogger(nil)
	if o.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	s := &BadgerStore{db: db, book: newCareerBook(), log: o.log}
	matches, err := s.scan()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, m := range matches {
		s.book.apply(m.Players, 1)
	}
	metrics.UpdateMatchesStored(len(matches))
	s.log.Info(ctx, "match store opened",
		logger.String("path", path),
		logger.Int("matches", len(matches)),
		logger.Int("players", s.book.players()),
	)
	return s, nil
}

func (s *BadgerStore) Save(ctx context.Context, m Match) error {
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
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		old      Match
		replaced bool
	)
	err = s.db.Update(func(txn *badger.Txn) error {
		key := []byte(matchKeyPrefix + m.GameID)
		item, err := txn.Get(key)
		switch {
		case err == nil:
			replaced = true
			if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &old) }); err != nil {
				return fmt.Errorf("read previous match: %w", err)
			}
		case !errors.Is(err, badger.ErrKeyNotFound):
			return fmt.Errorf("get match: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set match: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.RecordErrorByComponent("repository", "save")
		return err
	}

	if replaced {
		s.book.apply(old.Players, -1)
	} else {
		metrics.UpdateMatchesStored(s.Count(ctx))
	}
	s.book.apply(m.Players, 1)
	return nil
}

func (s *BadgerStore) Get(ctx context.Context, gameID string) (Match, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	var m Match
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(matchKeyPrefix + gameID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get match: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.RecordErrorByComponent("repository", "not_found")
		}
		return Match{}, err
	}
	return m, nil
}

func (s *BadgerStore) List(ctx context.Context, limit int) ([]Match, error) {
	if limit < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	all, err := s.scan()
	if err != nil {
		return nil, err
	}
	return newestFirst(all, limit), nil
}

func (s *BadgerStore) Count(ctx context.Context) int {
	count := 0
	_ = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(matchKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count
}

func (s *BadgerStore) TopPlayers(ctx context.Context, n int) ([]Career, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}
	return s.book.top(n), nil
}

func (s *BadgerStore) Player(ctx context.Context, username string) (Career, error) {
	c, ok := s.book.get(username)
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Career{}, ErrNotFound
	}
	return c, nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) scan() ([]Match, error) {
	var out []Match
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(matchKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var m Match
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &m)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan matches: %w", err)
	}
	return out, nil
}
