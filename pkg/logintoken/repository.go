// Package logintoken manages the login tokens that tie sessions to
// device logins.
package logintoken

import (
	"context"
)

// Repository defines the interface for login token storage
type Repository interface {
	// Create stores a new token and assigns its id
	Create(ctx context.Context, token LoginToken) (*LoginToken, error)
	// GetBySessionID returns the token backing a session, or
	// ErrTokenNotFound
	GetBySessionID(ctx context.Context, sessionID string) (*LoginToken, error)
	// UpdateLastActivity stamps the token as seen just now
	UpdateLastActivity(ctx context.Context, id int64) error
	// Delete removes a token by id
	Delete(ctx context.Context, id int64) error
}
