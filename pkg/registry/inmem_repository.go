package registry

import (
	"context"
	"sync"
	"time"
)

// InMemRepository implements Repository using an in-memory map
type InMemRepository struct {
	states map[string]map[string]ProviderState // keyed by user ID, then provider ID
	mutex  sync.RWMutex
}

// NewInMemRepository creates a new in-memory provider state repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		states: make(map[string]map[string]ProviderState),
	}
}

func (r *InMemRepository) GetProviderStates(ctx context.Context, userID string) (map[string]bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	states := make(map[string]bool, len(r.states[userID]))
	for providerID, state := range r.states[userID] {
		states[providerID] = state.Enabled
	}

	return states, nil
}

func (r *InMemRepository) EnableProviderFor(ctx context.Context, userID, providerID string) error {
	return r.setState(userID, providerID, true)
}

func (r *InMemRepository) DisableProviderFor(ctx context.Context, userID, providerID string) error {
	return r.setState(userID, providerID, false)
}

func (r *InMemRepository) setState(userID, providerID string, enabled bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now().UTC()
	state, exists := r.states[userID][providerID]
	if !exists {
		state = ProviderState{
			UserID:     userID,
			ProviderID: providerID,
			CreatedAt:  now,
		}
	}
	state.Enabled = enabled
	state.UpdatedAt = now

	if r.states[userID] == nil {
		r.states[userID] = make(map[string]ProviderState)
	}
	r.states[userID][providerID] = state

	return nil
}
