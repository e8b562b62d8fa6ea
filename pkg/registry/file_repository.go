package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// FileRepository implements Repository using file-based storage
type FileRepository struct {
	dataDir string
	states  map[string]map[string]ProviderState // keyed by user ID, then provider ID
	mutex   sync.RWMutex
}

// NewFileRepository creates a new file-based provider state repository
func NewFileRepository(dataDir string) (*FileRepository, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRepository{
		dataDir: dataDir,
		states:  make(map[string]map[string]ProviderState),
	}

	// Load existing data
	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileRepository) GetProviderStates(ctx context.Context, userID string) (map[string]bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	states := make(map[string]bool, len(r.states[userID]))
	for providerID, state := range r.states[userID] {
		states[providerID] = state.Enabled
	}

	return states, nil
}

func (r *FileRepository) EnableProviderFor(ctx context.Context, userID, providerID string) error {
	return r.setState(userID, providerID, true)
}

func (r *FileRepository) DisableProviderFor(ctx context.Context, userID, providerID string) error {
	return r.setState(userID, providerID, false)
}

func (r *FileRepository) setState(userID, providerID string, enabled bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous, hadPrevious := r.states[userID][providerID]

	now := time.Now().UTC()
	state := previous
	if !hadPrevious {
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

	if err := r.save(); err != nil {
		// Rollback
		if hadPrevious {
			r.states[userID][providerID] = previous
		} else {
			delete(r.states[userID], providerID)
		}
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

// load reads provider states from file
func (r *FileRepository) load() error {
	filePath := filepath.Join(r.dataDir, "provider_states.json")

	// If file doesn't exist, start with empty map
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// If file is empty, start with empty map
	if len(data) == 0 {
		return nil
	}

	var states []ProviderState
	if err := json.Unmarshal(data, &states); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	// Convert to nested map
	r.states = make(map[string]map[string]ProviderState)
	for _, state := range states {
		if r.states[state.UserID] == nil {
			r.states[state.UserID] = make(map[string]ProviderState)
		}
		r.states[state.UserID][state.ProviderID] = state
	}

	slog.Debug("Loaded provider states from file", "count", len(states), "file", filePath)
	return nil
}

// save writes provider states to file atomically
func (r *FileRepository) save() error {
	// Convert nested map to slice
	states := make([]ProviderState, 0, len(r.states))
	for _, userStates := range r.states {
		for _, state := range userStates {
			states = append(states, state)
		}
	}

	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, "provider_states.json.tmp")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, "provider_states.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
