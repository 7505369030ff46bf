package vehicle

import (
	"context"
	"sort"
	"sync"

	"frontera/pkg/platform/sentinel"
)

// In-memory stores keep the initial implementation lightweight and testable.
// They intentionally favor clarity over performance.
type InMemoryStore struct {
	mu       sync.RWMutex
	vehicles map[string]Vehicle
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{vehicles: make(map[string]Vehicle)}
}

func (s *InMemoryStore) Save(_ context.Context, v Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vehicles[id]; ok {
		return v, nil
	}
	return Vehicle{}, sentinel.ErrNotFound
}

func (s *InMemoryStore) List(_ context.Context) ([]Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type InMemoryTouristStore struct {
	mu       sync.RWMutex
	vehicles map[string]TouristVehicle
}

func NewInMemoryTouristStore() *InMemoryTouristStore {
	return &InMemoryTouristStore{vehicles: make(map[string]TouristVehicle)}
}

func (s *InMemoryTouristStore) Save(_ context.Context, v TouristVehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vehicles[v.ID] = v
	return nil
}

func (s *InMemoryTouristStore) FindByID(_ context.Context, id string) (TouristVehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.vehicles[id]; ok {
		return v, nil
	}
	return TouristVehicle{}, sentinel.ErrNotFound
}

func (s *InMemoryTouristStore) List(_ context.Context) ([]TouristVehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TouristVehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
