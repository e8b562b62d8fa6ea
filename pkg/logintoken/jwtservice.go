package logintoken

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTokenExpiry is how long a minted session token stays valid
const DefaultSessionTokenExpiry = 24 * time.Hour

// SessionClaims are the JWT claims carried by a session token
type SessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// SessionTokenGenerator mints and parses the signed session tokens
// the HTTP layer uses to tie requests back to a login session
type SessionTokenGenerator struct {
	Secret   string
	Issuer   string
	Audience string
}

// NewSessionTokenGenerator creates a new SessionTokenGenerator
func NewSessionTokenGenerator(secret, issuer, audience string) *SessionTokenGenerator {
	return &SessionTokenGenerator{
		Secret:   secret,
		Issuer:   issuer,
		Audience: audience,
	}
}

// GenerateToken creates a signed session token for the given user and session
func (g *SessionTokenGenerator) GenerateToken(userID, sessionID string, expiry time.Duration) (string, time.Time, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			NotBefore: jwt.NewNumericDate(time.Now().UTC().Add(-5 * time.Minute)),
			Issuer:    g.Issuer,
			Subject:   userID,
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{g.Audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		slog.Error("Failed to sign session token", "error", err)
		return "", time.Time{}, err
	}

	return ss, claims.ExpiresAt.Time, nil
}

// ParseToken parses and validates a session token string
func (g *SessionTokenGenerator) ParseToken(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(g.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return claims, nil
}
