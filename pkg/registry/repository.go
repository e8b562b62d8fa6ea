// Package registry persists which two-factor providers are enabled
// for which user.
package registry

import (
	"context"
	"time"
)

// ProviderState is one user/provider registration
type ProviderState struct {
	UserID     string    `json:"user_id"`
	ProviderID string    `json:"provider_id"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Repository defines the interface for provider state storage.
// GetProviderStates returns an empty map, not an error, for a user
// without any recorded state.
type Repository interface {
	GetProviderStates(ctx context.Context, userID string) (map[string]bool, error)
	EnableProviderFor(ctx context.Context, userID, providerID string) error
	DisableProviderFor(ctx context.Context, userID, providerID string) error
}
