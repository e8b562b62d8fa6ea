package logintoken

import (
	"context"
	"sync"
	"time"
)

// InMemRepository implements Repository using in-memory maps
type InMemRepository struct {
	tokens    map[int64]LoginToken
	bySession map[string]int64
	nextID    int64
	mutex     sync.RWMutex
}

// NewInMemRepository creates a new in-memory login token repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		tokens:    make(map[int64]LoginToken),
		bySession: make(map[string]int64),
		nextID:    1,
	}
}

func (r *InMemRepository) Create(ctx context.Context, token LoginToken) (*LoginToken, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	token.ID = r.nextID
	r.nextID++

	r.tokens[token.ID] = token
	r.bySession[token.SessionID] = token.ID

	created := token
	return &created, nil
}

func (r *InMemRepository) GetBySessionID(ctx context.Context, sessionID string) (*LoginToken, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, ok := r.bySession[sessionID]
	if !ok {
		return nil, ErrTokenNotFound
	}

	token := r.tokens[id]
	return &token, nil
}

func (r *InMemRepository) UpdateLastActivity(ctx context.Context, id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	token, ok := r.tokens[id]
	if !ok {
		return ErrTokenNotFound
	}

	token.LastActivity = time.Now().UTC()
	r.tokens[id] = token

	return nil
}

func (r *InMemRepository) Delete(ctx context.Context, id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	token, ok := r.tokens[id]
	if !ok {
		return ErrTokenNotFound
	}

	delete(r.tokens, id)
	delete(r.bySession, token.SessionID)

	return nil
}
