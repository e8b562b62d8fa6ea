package twofa

import (
	"context"
	"fmt"
)

// NoOpTwoFactorService is a no-op implementation of TwoFactorService.
// This allows login pipelines that depend on TwoFactorService to work
// without actual 2FA functionality when 2FA is not needed/configured.
//
// Read operations report that no second factor exists; operations that
// would record 2FA state return errors.
type NoOpTwoFactorService struct{}

// NewNoOpTwoFactorService creates a new no-op two-factor service.
// Use this when you don't need 2FA functionality.
func NewNoOpTwoFactorService() TwoFactorService {
	return &NoOpTwoFactorService{}
}

func (n *NoOpTwoFactorService) IsTwoFactorAuthenticated(ctx context.Context, userID string) (bool, error) {
	return false, nil
}

func (n *NoOpTwoFactorService) GetProviderSet(ctx context.Context, userID string) (*ProviderSet, error) {
	return NewProviderSet(nil, false), nil // Empty set, not an error
}

func (n *NoOpTwoFactorService) GetProvider(ctx context.Context, userID, providerID string) (Provider, error) {
	return nil, nil
}

func (n *NoOpTwoFactorService) PrepareTwoFactorLogin(ctx context.Context, sess SessionStore, userID string, rememberLogin bool) error {
	return fmt.Errorf("two-factor authentication not configured")
}

func (n *NoOpTwoFactorService) NeedsSecondFactor(ctx context.Context, sess SessionStore, userID string) (bool, error) {
	return false, nil
}

func (n *NoOpTwoFactorService) VerifyChallenge(ctx context.Context, sess SessionStore, providerID, userID, challenge string) (bool, error) {
	return false, fmt.Errorf("two-factor authentication not configured")
}
