package prefs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemRepository implements Repository using in-memory maps
type InMemRepository struct {
	values map[string]map[string]map[string]Preference // keyed by user ID, namespace, key
	mutex  sync.RWMutex
}

// NewInMemRepository creates a new in-memory preference repository
func NewInMemRepository() *InMemRepository {
	return &InMemRepository{
		values: make(map[string]map[string]map[string]Preference),
	}
}

func (r *InMemRepository) GetUserValue(ctx context.Context, userID, namespace, key, defaultValue string) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if pref, ok := r.values[userID][namespace][key]; ok {
		return pref.Value, nil
	}
	return defaultValue, nil
}

func (r *InMemRepository) SetUserValue(ctx context.Context, userID, namespace, key, value string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.values[userID] == nil {
		r.values[userID] = make(map[string]map[string]Preference)
	}
	if r.values[userID][namespace] == nil {
		r.values[userID][namespace] = make(map[string]Preference)
	}
	r.values[userID][namespace][key] = Preference{
		UserID:    userID,
		Namespace: namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	return nil
}

func (r *InMemRepository) DeleteUserValue(ctx context.Context, userID, namespace, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.values[userID][namespace], key)
	return nil
}

func (r *InMemRepository) GetUserKeys(ctx context.Context, userID, namespace string) ([]string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	keys := make([]string, 0, len(r.values[userID][namespace]))
	for key := range r.values[userID][namespace] {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}
