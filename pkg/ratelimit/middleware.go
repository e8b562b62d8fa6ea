package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

// Config holds rate limiting configuration for the HTTP middleware
type Config struct {
	// Per-IP rate limiting
	PerIPCapacity   int
	PerIPRefillRate float64

	// Per-user rate limiting, keyed by the JWT sub claim
	PerUserCapacity   int
	PerUserRefillRate float64

	// BucketTTL is how long inactive buckets stay in memory
	BucketTTL time.Duration
}

// DefaultConfig returns limits sized for challenge verification
// endpoints: a small burst, then one attempt every few seconds.
func DefaultConfig() *Config {
	return &Config{
		PerIPCapacity:   30,
		PerIPRefillRate: 30.0 / 60.0,

		PerUserCapacity:   10,
		PerUserRefillRate: 10.0 / 60.0,

		BucketTTL: time.Hour,
	}
}

// Middleware rate limits requests per client IP and per authenticated
// user
type Middleware struct {
	config      *Config
	ipLimiter   *RateLimiter
	userLimiter *RateLimiter
}

// NewMiddleware creates a new rate limiting middleware
func NewMiddleware(config *Config) *Middleware {
	if config == nil {
		config = DefaultConfig()
	}

	return &Middleware{
		config:      config,
		ipLimiter:   NewRateLimiter(config.PerIPCapacity, config.PerIPRefillRate, config.BucketTTL),
		userLimiter: NewRateLimiter(config.PerUserCapacity, config.PerUserRefillRate, config.BucketTTL),
	}
}

// Handler returns the rate limiting middleware handler
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if ip != "" && !m.ipLimiter.Allow(ip) {
			m.rateLimitExceeded(w, r, "ip", ip)
			return
		}

		userID := userIDFromClaims(r)
		if userID != "" && !m.userLimiter.Allow(userID) {
			m.rateLimitExceeded(w, r, "user", userID)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) rateLimitExceeded(w http.ResponseWriter, r *http.Request, limitType, key string) {
	slog.Warn("Rate limit exceeded",
		"type", limitType,
		"key", key,
		"path", r.URL.Path,
		"method", r.Method,
	)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	w.Write([]byte(`{"error": "rate_limit_exceeded"}`))
}

// clientIP extracts the client address, preferring X-Forwarded-For
// set by a fronting proxy
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// userIDFromClaims returns the sub claim of an already verified JWT,
// or "" for anonymous requests
func userIDFromClaims(r *http.Request) string {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return ""
	}
	userID, _ := claims["sub"].(string)
	return userID
}
