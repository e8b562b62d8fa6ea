package twofa

import (
	"context"
)

// RegistryAdapter is the durable per-user provider enablement store.
// Absence of an entry means "never evaluated", which is distinct from
// an explicit false.
type RegistryAdapter interface {
	GetProviderStates(ctx context.Context, userID string) (map[string]bool, error)
	EnableProviderFor(ctx context.Context, userID, providerID string) error
	DisableProviderFor(ctx context.Context, userID, providerID string) error
}

// LoaderAdapter resolves the providers that can currently be
// instantiated for a user. A provider may be registered but not
// loadable, e.g. its backing app was uninstalled.
type LoaderAdapter interface {
	GetProviders(ctx context.Context, userID string) ([]Provider, error)
}

// LoaderFunc adapts a plain function to a LoaderAdapter
type LoaderFunc func(ctx context.Context, userID string) ([]Provider, error)

func (f LoaderFunc) GetProviders(ctx context.Context, userID string) ([]Provider, error) {
	return f(ctx, userID)
}

// StaticLoader serves a fixed provider list for every user. This is
// the loader used when all providers are compiled into the binary.
type StaticLoader struct {
	providers []Provider
}

// NewStaticLoader creates a loader over a fixed set of providers
func NewStaticLoader(providers ...Provider) *StaticLoader {
	return &StaticLoader{
		providers: providers,
	}
}

func (l *StaticLoader) GetProviders(ctx context.Context, userID string) ([]Provider, error) {
	out := make([]Provider, len(l.providers))
	copy(out, l.providers)
	return out, nil
}

// SessionStore is the volatile key-value state of one login session.
// Get returns nil for absent keys; errors are reserved for backend
// failures.
type SessionStore interface {
	// ID returns the session identifier
	ID() string
	Get(ctx context.Context, key string) (any, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Token is a long-lived login token as seen by the coordinator. Only
// the numeric id is ever interpreted here; token semantics stay with
// the lifecycle manager.
type Token interface {
	GetID() int64
}

// TokenManager resolves the login token behind a session id. Any error
// means the token is invalid or revoked.
type TokenManager interface {
	GetToken(ctx context.Context, sessionID string) (Token, error)
}

// TokenManagerFunc adapts a plain function to a TokenManager
type TokenManagerFunc func(ctx context.Context, sessionID string) (Token, error)

func (f TokenManagerFunc) GetToken(ctx context.Context, sessionID string) (Token, error) {
	return f(ctx, sessionID)
}

// PreferenceStore is the durable per-user configuration store. Values
// are namespaced strings; GetUserValue returns the supplied default
// when no value is stored.
type PreferenceStore interface {
	GetUserValue(ctx context.Context, userID, namespace, key, defaultValue string) (string, error)
	SetUserValue(ctx context.Context, userID, namespace, key, value string) error
	DeleteUserValue(ctx context.Context, userID, namespace, key string) error
	GetUserKeys(ctx context.Context, userID, namespace string) ([]string, error)
}
