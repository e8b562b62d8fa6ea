package logintoken

import (
	"context"
	"fmt"
	"time"
)

// Service provides login token business logic
type Service struct {
	repo Repository
}

// NewService creates a new login token service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// CreateToken records a new login token for a session. A zero ttl
// creates a token without expiry.
func (s *Service) CreateToken(ctx context.Context, userID, sessionID, name string, ttl time.Duration) (*LoginToken, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	now := time.Now().UTC()
	token := LoginToken{
		UserID:       userID,
		SessionID:    sessionID,
		Name:         name,
		CreatedAt:    now,
		LastActivity: now,
	}
	if ttl > 0 {
		token.ExpiresAt = now.Add(ttl)
	}

	return s.repo.Create(ctx, token)
}

// GetToken returns the login token backing the given session. A
// session without a live token gets ErrTokenNotFound or
// ErrTokenExpired.
func (s *Service) GetToken(ctx context.Context, sessionID string) (*LoginToken, error) {
	if sessionID == "" {
		return nil, ErrTokenNotFound
	}

	token, err := s.repo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if token.IsExpired() {
		return nil, ErrTokenExpired
	}

	return token, nil
}

// TouchToken records activity on a login token
func (s *Service) TouchToken(ctx context.Context, id int64) error {
	return s.repo.UpdateLastActivity(ctx, id)
}

// InvalidateToken removes a login token. The device behind it loses
// its remembered second-factor state with the next login.
func (s *Service) InvalidateToken(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
