package twofa

import (
	"context"
	"fmt"
	"log/slog"
)

// IsTwoFactorAuthenticated reports whether the user has to pass a
// second factor at all. The per-user opt-out preference wins over
// every provider; otherwise registry state is merged with the loader
// output, back-filling registry entries that were never evaluated. A
// provider that is enabled in the registry but cannot be loaded still
// counts, so a broken provider enforces 2FA instead of silently
// disabling it.
func (s TwoFaService) IsTwoFactorAuthenticated(ctx context.Context, userID string) (bool, error) {
	disabled, err := s.prefs.GetUserValue(ctx, userID, PREF_APP_CORE, PREF_KEY_2FA_DISABLED, "0")
	if err != nil {
		return false, fmt.Errorf("failed to read 2FA opt-out preference: %w", err)
	}
	if disabled == "1" {
		return false, nil
	}

	states, _, err := s.reconcileProviderStates(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, enabled := range states {
		if enabled {
			return true, nil
		}
	}
	return false, nil
}

// GetProviderSet returns the providers the user can present right
// now, keyed by id. The set is rebuilt on every call.
func (s TwoFaService) GetProviderSet(ctx context.Context, userID string) (*ProviderSet, error) {
	states, loaded, err := s.reconcileProviderStates(ctx, userID)
	if err != nil {
		return nil, err
	}

	var providers []Provider
	isProviderMissing := false
	for providerID, enabled := range states {
		if !enabled {
			continue
		}
		p, ok := loaded[providerID]
		if !ok {
			isProviderMissing = true
			continue
		}
		providers = append(providers, p)
	}

	return NewProviderSet(providers, isProviderMissing), nil
}

// GetProvider looks up a single enabled provider by id. An unknown or
// disabled id resolves to nil without error.
func (s TwoFaService) GetProvider(ctx context.Context, userID, providerID string) (Provider, error) {
	set, err := s.GetProviderSet(ctx, userID)
	if err != nil {
		return nil, err
	}
	return set.Provider(providerID), nil
}

// reconcileProviderStates merges the registry with the loader output.
// Loadable providers without a registry entry are asked directly and
// the answer is written back, so the registry heals itself on the
// first login after an install or upgrade. The registry stays
// authoritative for providers it already knows.
func (s TwoFaService) reconcileProviderStates(ctx context.Context, userID string) (map[string]bool, map[string]Provider, error) {
	states, err := s.registry.GetProviderStates(ctx, userID)
	if err != nil {
		slog.Error("Failed to read provider states", "userId", userID, "error", err)
		return nil, nil, fmt.Errorf("failed to read provider states: %w", err)
	}
	if states == nil {
		states = map[string]bool{}
	}

	providers, err := s.loader.GetProviders(ctx, userID)
	if err != nil {
		slog.Error("Failed to load providers", "userId", userID, "error", err)
		return nil, nil, fmt.Errorf("failed to load providers: %w", err)
	}

	loaded := make(map[string]Provider, len(providers))
	for _, p := range providers {
		loaded[p.ID()] = p

		if _, ok := states[p.ID()]; ok {
			continue
		}

		enabled, err := p.IsTwoFactorAuthEnabledForUser(ctx, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("provider %s failed to report enablement for user %s: %w", p.ID(), userID, err)
		}

		if enabled {
			err = s.registry.EnableProviderFor(ctx, userID, p.ID())
		} else {
			err = s.registry.DisableProviderFor(ctx, userID, p.ID())
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to persist provider state for %s: %w", p.ID(), err)
		}
		states[p.ID()] = enabled
	}

	return states, loaded, nil
}
