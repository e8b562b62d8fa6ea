// Package prefs stores namespaced per-user key/value preferences.
package prefs

import (
	"context"
	"time"
)

// Preference is one stored user preference value
type Preference struct {
	UserID    string    `json:"user_id"`
	Namespace string    `json:"namespace"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository defines the interface for preference storage. Reads of a
// missing value return the caller's default, never an error; deleting
// a missing value is a no-op.
type Repository interface {
	GetUserValue(ctx context.Context, userID, namespace, key, defaultValue string) (string, error)
	SetUserValue(ctx context.Context, userID, namespace, key, value string) error
	DeleteUserValue(ctx context.Context, userID, namespace, key string) error
	GetUserKeys(ctx context.Context, userID, namespace string) ([]string, error)
}
