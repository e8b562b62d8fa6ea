package twofa

import (
	"context"

	"github.com/tendant/simple-twofa/pkg/audit"
)

// Well-known session and preference keys. These names are shared with
// the enclosing login pipeline and must not change between releases.
const (
	SESSION_KEY_UID          = "two_factor_auth_uid"
	SESSION_KEY_UID_DONE     = "two_factor_auth_passed"
	SESSION_KEY_REMEMBER     = "two_factor_remember_login"
	SESSION_KEY_APP_PASSWORD = "app_password"

	PREF_APP_CORE         = "core"
	PREF_KEY_2FA_DISABLED = "two_factor_auth_disabled"
	PREF_APP_LOGIN_TOKEN  = "login_token_2fa"

	AUDIT_APP           = "core"
	AUDIT_TYPE_SECURITY = "security"
	SUBJECT_2FA_SUCCESS = "twofactor_success"
	SUBJECT_2FA_FAILED  = "twofactor_failed"
)

// TwoFactorService coordinates second-factor state across the
// provider registry, the login session and the persisted per-token
// markers. It owns no provider and no store; everything is injected.
type TwoFactorService interface {
	// IsTwoFactorAuthenticated reports whether at least one provider
	// is enabled for the user after reconciling registry and loader
	IsTwoFactorAuthenticated(ctx context.Context, userID string) (bool, error)
	// GetProviderSet returns the reconciled per-request provider view
	GetProviderSet(ctx context.Context, userID string) (*ProviderSet, error)
	// GetProvider looks up one enabled provider, nil when absent
	GetProvider(ctx context.Context, userID, providerID string) (Provider, error)
	// PrepareTwoFactorLogin records that the session has passed
	// primary auth and now awaits a second factor
	PrepareTwoFactorLogin(ctx context.Context, sess SessionStore, userID string, rememberLogin bool) error
	// NeedsSecondFactor answers whether the current request still has
	// a second factor outstanding
	NeedsSecondFactor(ctx context.Context, sess SessionStore, userID string) (bool, error)
	// VerifyChallenge delegates a challenge to a provider and records
	// the outcome
	VerifyChallenge(ctx context.Context, sess SessionStore, providerID, userID, challenge string) (bool, error)
}

type TwoFaService struct {
	registry RegistryAdapter
	loader   LoaderAdapter
	tokens   TokenManager
	prefs    PreferenceStore
	audit    audit.Sink
}

// NewTwoFaService wires the coordinator with its collaborators. A nil
// audit sink falls back to structured-log publishing.
func NewTwoFaService(registry RegistryAdapter, loader LoaderAdapter, tokens TokenManager, prefs PreferenceStore, auditSink audit.Sink) *TwoFaService {
	if auditSink == nil {
		auditSink = audit.NewSlogSink(nil)
	}
	return &TwoFaService{
		registry: registry,
		loader:   loader,
		tokens:   tokens,
		prefs:    prefs,
		audit:    auditSink,
	}
}
