package store

import (
	"context"
	"sort"
	"sync"

	"github.com/matzehuels/unshred/pkg/errors"
)

// MemoryStore keeps records in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Save(ctx context.Context, rec *Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.records[rec.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateRunID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Summary())
	}
	return newestFirst(out, limit), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)

// newestFirst sorts by creation time descending, then id, and truncates.
func newestFirst(sums []Summary, limit int) []Summary {
	sort.Slice(sums, func(i, j int) bool {
		if !sums[i].CreatedAt.Equal(sums[j].CreatedAt) {
			return sums[i].CreatedAt.After(sums[j].CreatedAt)
		}
		return sums[i].ID < sums[j].ID
	})
	if limit > 0 && len(sums) > limit {
		sums = sums[:limit]
	}
	return sums
}
