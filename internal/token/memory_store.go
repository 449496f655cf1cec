package token

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu     sync.RWMutex
	tokens map[string]UserToken
	now    func() time.Time
}

// NewMemoryStore builds an in-memory token store for development and tests.
func NewMemoryStore() Store {
	return &memoryStore{tokens: make(map[string]UserToken), now: time.Now}
}

func (s *memoryStore) Find(_ context.Context, userID string) (UserToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[userID]
	if !ok || t.Expired(s.now()) {
		return UserToken{}, ErrNotFound
	}
	return t, nil
}

func (s *memoryStore) Save(_ context.Context, t UserToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[t.UserID] = t
	return nil
}

func (s *memoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}

func (s *memoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]UserToken)
	return nil
}
