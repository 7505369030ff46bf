package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"frontera/pkg/platform/sentinel"
)

// In-memory stores keep the initial implementation lightweight and testable.
// They intentionally favor clarity over performance.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	byID     map[string]Account
	idByMail map[string]string
}

func NewInMemoryAccountStore() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		byID:     make(map[string]Account),
		idByMail: make(map[string]string),
	}
}

func (s *InMemoryAccountStore) Save(_ context.Context, account Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(account.Email)
	if existingID, ok := s.idByMail[email]; ok && existingID != account.User.ID {
		return sentinel.ErrConflict
	}
	s.byID[account.User.ID] = account
	s.idByMail[email] = account.User.ID
	return nil
}

func (s *InMemoryAccountStore) FindByEmail(_ context.Context, email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.idByMail[strings.ToLower(email)]; ok {
		return s.byID[id], nil
	}
	return Account{}, sentinel.ErrNotFound
}

func (s *InMemoryAccountStore) FindByID(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.byID[id]; ok {
		return account, nil
	}
	return Account{}, sentinel.ErrNotFound
}

// InMemoryRevocationStore holds revoked token IDs with expiry timestamps.
type InMemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewInMemoryRevocationStore() *InMemoryRevocationStore {
	return &InMemoryRevocationStore{revoked: make(map[string]time.Time)}
}

func (s *InMemoryRevocationStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (s *InMemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expiry, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	return time.Now().Before(expiry), nil
}
