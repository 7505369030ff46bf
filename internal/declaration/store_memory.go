package declaration

import (
	"context"
	"sort"
	"sync"

	"frontera/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu           sync.RWMutex
	declarations map[string]Declaration
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{declarations: make(map[string]Declaration)}
}

func (s *InMemoryStore) Save(_ context.Context, d Declaration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declarations[d.ID] = d
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.declarations[id]; ok {
		return d, nil
	}
	return Declaration{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Declaration, 0, len(s.declarations))
	for _, d := range s.declarations {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
