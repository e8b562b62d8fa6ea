package twofa

import (
	"context"
	"sort"
)

// Provider is a pluggable second-factor capability. Implementations
// live outside this package; the coordinator only ever talks to this
// interface and never manages provider lifecycle.
type Provider interface {
	// ID returns the stable unique identifier of the provider
	ID() string
	// DisplayName returns the human readable label of the provider
	DisplayName() string
	// IsTwoFactorAuthEnabledForUser reports whether the provider is
	// turned on for the given user, queried only while the registry
	// has no decision recorded yet
	IsTwoFactorAuthEnabledForUser(ctx context.Context, userID string) (bool, error)
	// VerifyChallenge checks a submitted challenge for the user
	VerifyChallenge(ctx context.Context, userID, challenge string) (bool, error)
}

// ProviderSet is the reconciled per-request view of the providers a
// user can actually present right now. It is computed fresh on every
// query and must not be cached across requests.
type ProviderSet struct {
	providers         map[string]Provider
	isProviderMissing bool
}

// NewProviderSet builds a set from loaded providers. isProviderMissing
// records that at least one registry-enabled provider could not be
// loaded.
func NewProviderSet(providers []Provider, isProviderMissing bool) *ProviderSet {
	byID := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byID[p.ID()] = p
	}
	return &ProviderSet{
		providers:         byID,
		isProviderMissing: isProviderMissing,
	}
}

// Provider returns the provider with the given id, or nil when the id
// is unknown or the provider is not enabled for the user
func (s *ProviderSet) Provider(providerID string) Provider {
	if p, ok := s.providers[providerID]; ok {
		return p
	}
	return nil
}

// Providers returns the providers sorted by id
func (s *ProviderSet) Providers() []Provider {
	ids := make([]string, 0, len(s.providers))
	for id := range s.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]Provider, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.providers[id])
	}
	return out
}

// IsProviderMissing reports whether an enabled provider was not
// returned by the loader, e.g. the backing app was removed while still
// flagged enabled
func (s *ProviderSet) IsProviderMissing() bool {
	return s.isProviderMissing
}

// IsEmpty reports whether no provider is available at all
func (s *ProviderSet) IsEmpty() bool {
	return len(s.providers) == 0
}
