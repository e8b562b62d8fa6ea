package logintoken

import (
	"time"
)

// LoginToken represents one device login at the primary-auth layer.
// The second-factor state of a login is remembered per token, so a
// user stays verified across sessions on the same device.
type LoginToken struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	SessionID    string    `json:"session_id"`
	Name         string    `json:"name,omitempty"` // e.g. the browser's user agent
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"` // zero means the token never expires
}

// GetID returns the token's numeric id
func (t *LoginToken) GetID() int64 {
	return t.ID
}

// IsExpired checks if the login token has expired
func (t *LoginToken) IsExpired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().UTC().After(t.ExpiresAt)
}
