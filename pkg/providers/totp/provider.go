// Package totp is a second-factor provider backed by time-based
// one-time passwords. The TOTP math itself lives in pquerna/otp; this
// package only manages per-user secrets and delegates validation.
package totp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/tendant/simple-twofa/pkg/twofa"
)

const (
	PROVIDER_ID  = "totp"
	DISPLAY_NAME = "Authenticator app"

	PREF_APP_TOTP   = "twofa_totp"
	PREF_KEY_SECRET = "secret"

	DEFAULT_ISSUER = "simple-twofa"
	DEFAULT_PERIOD = 30
	DEFAULT_SKEW   = 1
)

// Provider verifies TOTP passcodes against a per-user secret kept in
// the preference store. A user is enrolled iff a secret is stored.
type Provider struct {
	prefs  twofa.PreferenceStore
	issuer string
	period uint
	skew   uint
}

// Option configures a Provider
type Option func(*Provider)

// WithIssuer sets the issuer encoded into enrollment keys
func WithIssuer(issuer string) Option {
	return func(p *Provider) {
		p.issuer = issuer
	}
}

// WithPeriod sets the passcode validity period in seconds
func WithPeriod(period uint) Option {
	return func(p *Provider) {
		p.period = period
	}
}

// WithSkew sets how many adjacent periods are accepted
func WithSkew(skew uint) Option {
	return func(p *Provider) {
		p.skew = skew
	}
}

// NewProvider creates a TOTP provider storing secrets in the given
// preference store
func NewProvider(prefs twofa.PreferenceStore, opts ...Option) *Provider {
	p := &Provider{
		prefs:  prefs,
		issuer: DEFAULT_ISSUER,
		period: DEFAULT_PERIOD,
		skew:   DEFAULT_SKEW,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) ID() string {
	return PROVIDER_ID
}

func (p *Provider) DisplayName() string {
	return DISPLAY_NAME
}

// Enroll generates and stores a fresh secret for the user and returns
// the otpauth:// URL to present as a QR code. Re-enrolling replaces
// the previous secret.
func (p *Provider) Enroll(ctx context.Context, userID, accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      p.issuer,
		AccountName: accountName,
		Period:      p.period,
	})
	if err != nil {
		slog.Error("Failed to generate totp secret", "userId", userID, "issuer", p.issuer, "error", err)
		return "", fmt.Errorf("failed to generate totp secret: %w", err)
	}

	if err := p.prefs.SetUserValue(ctx, userID, PREF_APP_TOTP, PREF_KEY_SECRET, key.Secret()); err != nil {
		return "", fmt.Errorf("failed to store totp secret: %w", err)
	}

	slog.Info("Generated new totp secret", "userId", userID)
	return key.URL(), nil
}

// Unenroll removes the user's secret. The provider reports disabled
// afterwards.
func (p *Provider) Unenroll(ctx context.Context, userID string) error {
	return p.prefs.DeleteUserValue(ctx, userID, PREF_APP_TOTP, PREF_KEY_SECRET)
}

func (p *Provider) IsTwoFactorAuthEnabledForUser(ctx context.Context, userID string) (bool, error) {
	secret, err := p.prefs.GetUserValue(ctx, userID, PREF_APP_TOTP, PREF_KEY_SECRET, "")
	if err != nil {
		return false, fmt.Errorf("failed to read totp secret: %w", err)
	}
	return secret != "", nil
}

func (p *Provider) VerifyChallenge(ctx context.Context, userID, challenge string) (bool, error) {
	secret, err := p.prefs.GetUserValue(ctx, userID, PREF_APP_TOTP, PREF_KEY_SECRET, "")
	if err != nil {
		return false, fmt.Errorf("failed to read totp secret: %w", err)
	}
	if secret == "" {
		return false, nil
	}

	valid, err := totp.ValidateCustom(challenge, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    p.period,
		Skew:      p.skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to validate totp passcode", "userId", userID, "error", err)
		return false, fmt.Errorf("failed to validate totp passcode: %w", err)
	}
	return valid, nil
}
