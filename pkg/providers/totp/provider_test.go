package totp

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-twofa/pkg/prefs"
)

func newTestProvider(t *testing.T, opts ...Option) (*Provider, *prefs.InMemRepository) {
	t.Helper()
	store := prefs.NewInMemRepository()
	return NewProvider(store, opts...), store
}

func currentPasscode(t *testing.T, secret string, period, skew uint) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    period,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)
	return code
}

func TestEnrollAndVerify(t *testing.T) {
	provider, store := newTestProvider(t)
	ctx := context.Background()

	url, err := provider.Enroll(ctx, "jos", "jos@example.com")
	require.NoError(t, err)
	assert.Contains(t, url, "otpauth://totp/")

	secret, err := store.GetUserValue(ctx, "jos", PREF_APP_TOTP, PREF_KEY_SECRET, "")
	require.NoError(t, err)
	require.NotEmpty(t, secret)

	passed, err := provider.VerifyChallenge(ctx, "jos", currentPasscode(t, secret, DEFAULT_PERIOD, DEFAULT_SKEW))
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestVerifyWrongPasscode(t *testing.T) {
	provider, store := newTestProvider(t)
	ctx := context.Background()

	_, err := provider.Enroll(ctx, "jos", "jos@example.com")
	require.NoError(t, err)

	// A passcode computed from a different secret never matches
	other, err := totp.Generate(totp.GenerateOpts{Issuer: "other", AccountName: "jos"})
	require.NoError(t, err)

	secret, err := store.GetUserValue(ctx, "jos", PREF_APP_TOTP, PREF_KEY_SECRET, "")
	require.NoError(t, err)
	wrong := currentPasscode(t, other.Secret(), DEFAULT_PERIOD, DEFAULT_SKEW)
	if wrong == currentPasscode(t, secret, DEFAULT_PERIOD, DEFAULT_SKEW) {
		t.Skip("colliding passcodes, cannot distinguish")
	}

	passed, err := provider.VerifyChallenge(ctx, "jos", wrong)
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestVerifyWithoutEnrollment(t *testing.T) {
	provider, _ := newTestProvider(t)

	passed, err := provider.VerifyChallenge(context.Background(), "jos", "123456")
	require.NoError(t, err)
	assert.False(t, passed)
}

func TestEnablementFollowsEnrollment(t *testing.T) {
	provider, _ := newTestProvider(t)
	ctx := context.Background()

	enabled, err := provider.IsTwoFactorAuthEnabledForUser(ctx, "jos")
	require.NoError(t, err)
	assert.False(t, enabled)

	_, err = provider.Enroll(ctx, "jos", "jos@example.com")
	require.NoError(t, err)

	enabled, err = provider.IsTwoFactorAuthEnabledForUser(ctx, "jos")
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, provider.Unenroll(ctx, "jos"))

	enabled, err = provider.IsTwoFactorAuthEnabledForUser(ctx, "jos")
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestConfigurablePeriodAndSkew(t *testing.T) {
	provider, store := newTestProvider(t, WithPeriod(300), WithSkew(0))
	ctx := context.Background()

	_, err := provider.Enroll(ctx, "jos", "jos@example.com")
	require.NoError(t, err)

	secret, err := store.GetUserValue(ctx, "jos", PREF_APP_TOTP, PREF_KEY_SECRET, "")
	require.NoError(t, err)

	passed, err := provider.VerifyChallenge(ctx, "jos", currentPasscode(t, secret, 300, 0))
	require.NoError(t, err)
	assert.True(t, passed)
}

func TestProviderIdentity(t *testing.T) {
	provider, _ := newTestProvider(t)
	assert.Equal(t, PROVIDER_ID, provider.ID())
	assert.Equal(t, DISPLAY_NAME, provider.DisplayName())
}
