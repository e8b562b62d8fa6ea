// Package emailcode is a second-factor provider sending short-lived
// numeric codes by email.
package emailcode

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/tendant/simple-twofa/pkg/notification"
	"github.com/tendant/simple-twofa/pkg/ratelimit"
	"github.com/tendant/simple-twofa/pkg/twofa"
)

const (
	PROVIDER_ID  = "email"
	DISPLAY_NAME = "Email code"

	PREF_APP_EMAIL   = "twofa_email"
	PREF_KEY_ENABLED = "enabled"

	CODE_LENGTH  = 6
	DEFAULT_TTL  = 10 * time.Minute
	SEND_BURST   = 3
	SEND_PER_SEC = 1.0 / 60.0 // one fresh code per minute once the burst is used
)

// ErrRateLimited is returned by SendCode when the user asked for too
// many codes in a row
var ErrRateLimited = fmt.Errorf("too many code requests, try again later")

// EmailResolver maps a user id to the address codes are sent to
type EmailResolver func(ctx context.Context, userID string) (string, error)

// Provider generates numeric codes, delivers them through the
// notification manager and verifies them single-use. Codes live in an
// in-process TTL cache; an unverified code simply expires.
type Provider struct {
	prefs        twofa.PreferenceStore
	notifier     *notification.NotificationManager
	resolveEmail EmailResolver
	codes        *gocache.Cache
	limiter      *ratelimit.RateLimiter
	ttl          time.Duration
}

// Option configures a Provider
type Option func(*Provider)

// WithCodeTTL sets how long a sent code stays valid
func WithCodeTTL(ttl time.Duration) Option {
	return func(p *Provider) {
		p.ttl = ttl
	}
}

// WithRateLimiter replaces the default per-user send limiter
func WithRateLimiter(limiter *ratelimit.RateLimiter) Option {
	return func(p *Provider) {
		p.limiter = limiter
	}
}

// NewProvider creates an email-code provider. The resolver supplies
// the recipient address per user; enablement is a per-user preference
// flag.
func NewProvider(prefs twofa.PreferenceStore, notifier *notification.NotificationManager, resolveEmail EmailResolver, opts ...Option) *Provider {
	p := &Provider{
		prefs:        prefs,
		notifier:     notifier,
		resolveEmail: resolveEmail,
		ttl:          DEFAULT_TTL,
		limiter:      ratelimit.NewRateLimiter(SEND_BURST, SEND_PER_SEC, time.Hour),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.codes = gocache.New(p.ttl, p.ttl)
	return p
}

func (p *Provider) ID() string {
	return PROVIDER_ID
}

func (p *Provider) DisplayName() string {
	return DISPLAY_NAME
}

// Enable turns the provider on for the user
func (p *Provider) Enable(ctx context.Context, userID string) error {
	return p.prefs.SetUserValue(ctx, userID, PREF_APP_EMAIL, PREF_KEY_ENABLED, "1")
}

// Disable turns the provider off for the user
func (p *Provider) Disable(ctx context.Context, userID string) error {
	return p.prefs.SetUserValue(ctx, userID, PREF_APP_EMAIL, PREF_KEY_ENABLED, "0")
}

func (p *Provider) IsTwoFactorAuthEnabledForUser(ctx context.Context, userID string) (bool, error) {
	enabled, err := p.prefs.GetUserValue(ctx, userID, PREF_APP_EMAIL, PREF_KEY_ENABLED, "0")
	if err != nil {
		return false, fmt.Errorf("failed to read email 2FA flag: %w", err)
	}
	return enabled == "1", nil
}

// SendCode generates a fresh code for the user and mails it. A
// previously sent, still valid code is replaced.
func (p *Provider) SendCode(ctx context.Context, userID string) error {
	if !p.limiter.Allow(userID) {
		slog.Warn("Email code request rate limited", "userId", userID)
		return ErrRateLimited
	}

	email, err := p.resolveEmail(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to resolve email for user %s: %w", userID, err)
	}

	code, err := generateCode(CODE_LENGTH)
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}
	p.codes.Set(userID, code, p.ttl)

	err = p.notifier.Send(notification.TwoFactorCodeNotice, notification.EmailSystem, notification.NotificationData{
		To: email,
		Data: map[string]string{
			"Code":             code,
			"ExpiresInMinutes": strconv.Itoa(int(p.ttl.Minutes())),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send code email: %w", err)
	}

	slog.Info("Sent 2FA code email", "userId", userID)
	return nil
}

// VerifyChallenge checks the submitted code against the last one sent
// to the user. A correct code is consumed and cannot be replayed.
func (p *Provider) VerifyChallenge(ctx context.Context, userID, challenge string) (bool, error) {
	stored, found := p.codes.Get(userID)
	if !found {
		return false, nil
	}
	code, ok := stored.(string)
	if !ok {
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(challenge)) != 1 {
		return false, nil
	}

	p.codes.Delete(userID)
	return true, nil
}

func generateCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
