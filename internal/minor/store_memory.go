package minor

import (
	"context"
	"sort"
	"sync"

	"frontera/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	minors map[string]Minor
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{minors: make(map[string]Minor)}
}

func (s *InMemoryStore) Save(_ context.Context, m Minor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minors[m.ID] = m
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Minor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.minors[id]; ok {
		return m, nil
	}
	return Minor{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]Minor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Minor, 0, len(s.minors))
	for _, m := range s.minors {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type InMemoryTouristStore struct {
	mu     sync.RWMutex
	minors map[string]TouristMinor
}

func NewInMemoryTouristStore() *InMemoryTouristStore {
	return &InMemoryTouristStore{minors: make(map[string]TouristMinor)}
}

func (s *InMemoryTouristStore) Save(_ context.Context, m TouristMinor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minors[m.ID] = m
	return nil
}

func (s *InMemoryTouristStore) FindByID(_ context.Context, id string) (TouristMinor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.minors[id]; ok {
		return m, nil
	}
	return TouristMinor{}, sentinel.ErrNotFound
}

func (s *InMemoryTouristStore) List(_ context.Context) ([]TouristMinor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TouristMinor, 0, len(s.minors))
	for _, m := range s.minors {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
