package session

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryManager implements Manager using an in-process cache. Session
// state expires after the configured TTL.
type MemoryManager struct {
	cache *gocache.Cache
}

// NewMemoryManager creates a new in-memory session manager. A zero or
// negative TTL keeps session state until it is removed.
func NewMemoryManager(ttl time.Duration) *MemoryManager {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryManager{
		cache: gocache.New(ttl, time.Minute),
	}
}

func (m *MemoryManager) Session(sessionID string) Store {
	return &memoryStore{
		manager:   m,
		sessionID: sessionID,
	}
}

type memoryStore struct {
	manager   *MemoryManager
	sessionID string
}

func (s *memoryStore) ID() string {
	return s.sessionID
}

func (s *memoryStore) key(key string) string {
	return s.sessionID + ":" + key
}

func (s *memoryStore) Get(ctx context.Context, key string) (any, error) {
	value, ok := s.manager.cache.Get(s.key(key))
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value any) error {
	s.manager.cache.Set(s.key(key), value, gocache.DefaultExpiration)
	return nil
}

func (s *memoryStore) Remove(ctx context.Context, key string) error {
	s.manager.cache.Delete(s.key(key))
	return nil
}

func (s *memoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := s.manager.cache.Get(s.key(key))
	return ok, nil
}
