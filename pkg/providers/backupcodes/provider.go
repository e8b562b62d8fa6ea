// Package backupcodes is a second-factor provider of single-use
// recovery codes. Codes are handed to the user once and stored only
// as bcrypt hashes.
package backupcodes

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/tendant/simple-twofa/pkg/twofa"
	"golang.org/x/crypto/bcrypt"
)

const (
	PROVIDER_ID  = "backup_codes"
	DISPLAY_NAME = "Backup codes"

	PREF_APP_BACKUP = "twofa_backupcodes"

	DEFAULT_CODE_COUNT = 10
	CODE_LENGTH        = 10
	codeAlphabet       = "abcdefghijkmnpqrstuvwxyz23456789"
)

// Provider verifies bcrypt-hashed single-use codes kept as per-user
// preference entries. Each code occupies one key; verification
// consumes the matching entry.
type Provider struct {
	prefs      twofa.PreferenceStore
	bcryptCost int
}

// Option configures a Provider
type Option func(*Provider)

// WithBcryptCost overrides the hashing cost, mainly to speed up tests
func WithBcryptCost(cost int) Option {
	return func(p *Provider) {
		p.bcryptCost = cost
	}
}

// NewProvider creates a backup-codes provider storing hashes in the
// given preference store
func NewProvider(prefs twofa.PreferenceStore, opts ...Option) *Provider {
	p := &Provider{
		prefs:      prefs,
		bcryptCost: bcrypt.DefaultCost,
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

// GenerateCodes creates a fresh set of codes for the user, replacing
// any unused ones, and returns the plaintext codes. This is the only
// time the plaintext exists.
func (p *Provider) GenerateCodes(ctx context.Context, userID string, count int) ([]string, error) {
	if count <= 0 {
		count = DEFAULT_CODE_COUNT
	}

	if err := p.clearCodes(ctx, userID); err != nil {
		return nil, err
	}

	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code, err := generateCode(CODE_LENGTH)
		if err != nil {
			return nil, fmt.Errorf("failed to generate backup code: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(code), p.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash backup code: %w", err)
		}

		key := fmt.Sprintf("code_%d", i)
		if err := p.prefs.SetUserValue(ctx, userID, PREF_APP_BACKUP, key, string(hash)); err != nil {
			return nil, fmt.Errorf("failed to store backup code: %w", err)
		}
		codes = append(codes, code)
	}

	slog.Info("Generated backup codes", "userId", userID, "count", count)
	return codes, nil
}

// CountRemaining reports how many unused codes the user still has
func (p *Provider) CountRemaining(ctx context.Context, userID string) (int, error) {
	keys, err := p.prefs.GetUserKeys(ctx, userID, PREF_APP_BACKUP)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup code keys: %w", err)
	}
	return len(keys), nil
}

func (p *Provider) IsTwoFactorAuthEnabledForUser(ctx context.Context, userID string) (bool, error) {
	remaining, err := p.CountRemaining(ctx, userID)
	if err != nil {
		return false, err
	}
	return remaining > 0, nil
}

// VerifyChallenge compares the submitted code against every stored
// hash. A match deletes the matched entry, so each code works exactly
// once.
func (p *Provider) VerifyChallenge(ctx context.Context, userID, challenge string) (bool, error) {
	keys, err := p.prefs.GetUserKeys(ctx, userID, PREF_APP_BACKUP)
	if err != nil {
		return false, fmt.Errorf("failed to read backup code keys: %w", err)
	}

	for _, key := range keys {
		hash, err := p.prefs.GetUserValue(ctx, userID, PREF_APP_BACKUP, key, "")
		if err != nil {
			return false, fmt.Errorf("failed to read backup code: %w", err)
		}
		if hash == "" {
			continue
		}

		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(challenge)) == nil {
			if err := p.prefs.DeleteUserValue(ctx, userID, PREF_APP_BACKUP, key); err != nil {
				return false, fmt.Errorf("failed to consume backup code: %w", err)
			}
			return true, nil
		}
	}

	return false, nil
}

func (p *Provider) clearCodes(ctx context.Context, userID string) error {
	keys, err := p.prefs.GetUserKeys(ctx, userID, PREF_APP_BACKUP)
	if err != nil {
		return fmt.Errorf("failed to read backup code keys: %w", err)
	}
	for _, key := range keys {
		if err := p.prefs.DeleteUserValue(ctx, userID, PREF_APP_BACKUP, key); err != nil {
			return fmt.Errorf("failed to clear backup code: %w", err)
		}
	}
	return nil
}

func generateCode(length int) (string, error) {
	chars := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range chars {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		chars[i] = codeAlphabet[n.Int64()]
	}
	return string(chars), nil
}
