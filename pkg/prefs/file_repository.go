package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileRepository implements Repository using file-based storage
type FileRepository struct {
	dataDir string
	values  map[string]map[string]map[string]Preference // keyed by user ID, namespace, key
	mutex   sync.RWMutex
}

// NewFileRepository creates a new file-based preference repository
func NewFileRepository(dataDir string) (*FileRepository, error) {
	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	repo := &FileRepository{
		dataDir: dataDir,
		values:  make(map[string]map[string]map[string]Preference),
	}

	// Load existing data
	if err := repo.load(); err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	return repo, nil
}

func (r *FileRepository) GetUserValue(ctx context.Context, userID, namespace, key, defaultValue string) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if pref, ok := r.values[userID][namespace][key]; ok {
		return pref.Value, nil
	}
	return defaultValue, nil
}

func (r *FileRepository) SetUserValue(ctx context.Context, userID, namespace, key, value string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous, hadPrevious := r.values[userID][namespace][key]

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

	if err := r.save(); err != nil {
		// Rollback
		if hadPrevious {
			r.values[userID][namespace][key] = previous
		} else {
			delete(r.values[userID][namespace], key)
		}
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

func (r *FileRepository) DeleteUserValue(ctx context.Context, userID, namespace, key string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	previous, hadPrevious := r.values[userID][namespace][key]
	if !hadPrevious {
		return nil
	}

	delete(r.values[userID][namespace], key)

	if err := r.save(); err != nil {
		// Rollback
		r.values[userID][namespace][key] = previous
		return fmt.Errorf("failed to save: %w", err)
	}

	return nil
}

func (r *FileRepository) GetUserKeys(ctx context.Context, userID, namespace string) ([]string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	keys := make([]string, 0, len(r.values[userID][namespace]))
	for key := range r.values[userID][namespace] {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}

// load reads preferences from file
func (r *FileRepository) load() error {
	filePath := filepath.Join(r.dataDir, "preferences.json")

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

	var prefs []Preference
	if err := json.Unmarshal(data, &prefs); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	// Convert to nested map
	r.values = make(map[string]map[string]map[string]Preference)
	for _, pref := range prefs {
		if r.values[pref.UserID] == nil {
			r.values[pref.UserID] = make(map[string]map[string]Preference)
		}
		if r.values[pref.UserID][pref.Namespace] == nil {
			r.values[pref.UserID][pref.Namespace] = make(map[string]Preference)
		}
		r.values[pref.UserID][pref.Namespace][pref.Key] = pref
	}

	return nil
}

// save writes preferences to file atomically
func (r *FileRepository) save() error {
	// Convert nested map to slice
	var prefs []Preference
	for _, namespaces := range r.values {
		for _, userPrefs := range namespaces {
			for _, pref := range userPrefs {
				prefs = append(prefs, pref)
			}
		}
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	// Write to temp file first
	tempFile := filepath.Join(r.dataDir, "preferences.json.tmp")
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Atomic rename
	finalFile := filepath.Join(r.dataDir, "preferences.json")
	if err := os.Rename(tempFile, finalFile); err != nil {
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}
