package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisManager implements Manager backed by Redis, for deployments
// where multiple instances serve the same sessions. Values are stored
// JSON-encoded under prefix:sessionID:key.
type RedisManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisManager creates a new Redis-backed session manager. A zero
// or negative TTL keeps session state until it is removed.
func NewRedisManager(client *redis.Client, prefix string, ttl time.Duration) *RedisManager {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisManager{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (m *RedisManager) Session(sessionID string) Store {
	return &redisStore{
		manager:   m,
		sessionID: sessionID,
	}
}

type redisStore struct {
	manager   *RedisManager
	sessionID string
}

func (s *redisStore) ID() string {
	return s.sessionID
}

func (s *redisStore) key(key string) string {
	if s.manager.prefix == "" {
		return s.sessionID + ":" + key
	}
	return s.manager.prefix + ":" + s.sessionID + ":" + key
}

func (s *redisStore) Get(ctx context.Context, key string) (any, error) {
	data, err := s.manager.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session value: %w", err)
	}

	var value any
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		return nil, fmt.Errorf("failed to decode session value: %w", err)
	}

	return value, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode session value: %w", err)
	}

	if err := s.manager.client.Set(ctx, s.key(key), data, s.manager.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session value: %w", err)
	}

	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.manager.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove session value: %w", err)
	}
	return nil
}

func (s *redisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.manager.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session value: %w", err)
	}
	return n > 0, nil
}
